package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Rag      RagConfig
	Session  SessionConfig
	Events   EventsConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	StreamLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	UploadDir          string
	UploadMountPath    string
	MaxUploadSizeMB    int
	JWTSecret          string
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
	LogSQL     bool
}

type AIConfig struct {
	EmbeddingProvider string // "ollama", "gemini" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	GeminiAPIKey      string
	JinaAPIKey        string
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string
	LLMBaseURL        string
	LLMAPIKey         string
	Temperature       float64
	NumThread         int
	TopK              int
	AssistantName     string
	AssistantArea     string
}

type RagConfig struct {
	ChunkSize          int
	ChunkOverlap       int
	VectorLimit        int
	EmbedRetries       int
	EmbedRetryDelay    time.Duration
	EmbeddingCacheTTL  time.Duration
	CollectionCacheTTL time.Duration
	UsageSampleWindow  time.Duration
}

type SessionConfig struct {
	MaxSessions     int
	MaxInteractions int
	InactivityLimit time.Duration
	SweepInterval   time.Duration
}

type EventsConfig struct {
	IndexDocumentTopic string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			StreamLogFilePath:  getEnv("STREAM_LOG_FILE_PATH", "logs/stream.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8501"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
			UploadMountPath:    getEnv("UPLOAD_MOUNT_PATH", "/uploads"),
			MaxUploadSizeMB:    getEnvAsInt("MAX_UPLOAD_SIZE_MB", 50),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			LogSQL:     getEnv("DB_LOG_SQL", "false") == "true",
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			JinaAPIKey:        getEnv("JINA_API_KEY", ""),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3.1"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMAPIKey:         getEnv("LLM_API_KEY", ""),
			Temperature:       getEnvAsFloat("LLM_TEMPERATURE", 0.8),
			NumThread:         getEnvAsInt("LLM_NUM_THREAD", 2),
			TopK:              getEnvAsInt("LLM_TOP_K", 85),
			AssistantName:     getEnv("NOMBRE_ASISTENTE", "Sistete"),
			AssistantArea:     getEnv("AREA_ASISTENCIA", "No defined"),
		},
		Rag: RagConfig{
			ChunkSize:          getEnvAsInt("CHUNK_SIZE", 512),
			ChunkOverlap:       getEnvAsInt("CHUNK_OVERLAP", 40),
			VectorLimit:        getEnvAsInt("VECTOR_SEARCH_LIMIT", 50),
			EmbedRetries:       getEnvAsInt("EMBED_RETRIES", 3),
			EmbedRetryDelay:    getEnvAsDuration("EMBED_RETRY_DELAY", 2*time.Second),
			EmbeddingCacheTTL:  getEnvAsDuration("EMBEDDING_CACHE_TTL", 24*time.Hour),
			CollectionCacheTTL: getEnvAsDuration("COLLECTION_CACHE_TTL", 5*time.Minute),
			UsageSampleWindow:  getEnvAsDuration("USAGE_SAMPLE_WINDOW", time.Second),
		},
		Session: SessionConfig{
			MaxSessions:     getEnvAsInt("SESSION_LIMIT", 15),
			MaxInteractions: getEnvAsInt("INTERACTION_LIMIT", 5),
			InactivityLimit: time.Duration(getEnvAsInt("INACTIVITY_LIMIT", 2)) * time.Minute,
			SweepInterval:   getEnvAsDuration("SESSION_SWEEP_INTERVAL", 30*time.Second),
		},
		Events: EventsConfig{
			IndexDocumentTopic: getEnv("INDEX_DOCUMENT_TOPIC_NAME", "INDEX_DOCUMENT"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
