package main

import (
	"log"
	"os"

	"resolution-rag-be/internal/model"
	"resolution-rag-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. Pre-Migration: Extensions
	log.Println("Step 1: Setting up Extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		log.Fatalf("Error: pgvector extension is required: %v", err)
	}

	// 4. AutoMigrate All Models
	models := model.AllModels()
	log.Printf("Step 2: Running AutoMigrate for %d Tables...", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: indexes GORM tags cannot express
	log.Println("Step 3: Creating Indexes...")
	postMigrationSQL := []string{
		// Chunk identity inside the metadata must agree with the column.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_embeddings_document_meta_chunk
		 ON embeddings (document_id, ((embed_metadata->>'chunk_index')::int));`,
		`CREATE INDEX IF NOT EXISTS idx_embeddings_meta_collection
		 ON embeddings ((embed_metadata->>'collection_name'));`,
		`CREATE INDEX IF NOT EXISTS idx_embeddings_meta_number
		 ON embeddings ((embed_metadata->>'number_resolution'));`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
