package session

import (
	"errors"
	"log"
	"sync"
	"time"

	"resolution-rag-be/internal/repository/memory"
	"resolution-rag-be/pkg/store"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrInteractionNotFound = errors.New("interaction not found")
)

// Config bounds the registry.
type Config struct {
	MaxSessions     int
	MaxInteractions int
	InactivityLimit time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxSessions:     15,
		MaxInteractions: 5,
		InactivityLimit: 2 * time.Minute,
	}
}

// Manager is the registry of active conversation sessions. Every operation
// runs under a single mutex and only copies leave the registry, so HTTP
// handlers and generation streams can share it.
type Manager struct {
	mu   sync.Mutex
	repo *memory.SessionRepository
	cfg  Config
	now  func() time.Time
}

// NewManager creates a new session manager
func NewManager(repo *memory.SessionRepository, cfg Config) *Manager {
	def := DefaultConfig()
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = def.MaxSessions
	}
	if cfg.MaxInteractions <= 0 {
		cfg.MaxInteractions = def.MaxInteractions
	}
	if cfg.InactivityLimit <= 0 {
		cfg.InactivityLimit = def.InactivityLimit
	}
	return &Manager{repo: repo, cfg: cfg, now: time.Now}
}

// SetClock replaces the time source.
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// TouchOrCreate refreshes the session timestamp, creating the session when
// absent, then runs the eviction sweep. It reports whether it created one.
func (m *Manager) TouchOrCreate(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := m.touch(sessionID)
	m.sweep(sessionID)
	return created
}

// Open is TouchOrCreate followed by AppendInteraction as one atomic step.
func (m *Manager) Open(sessionID string, in store.Interaction) store.Interaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.touch(sessionID)
	m.sweep(sessionID)

	s, _ := m.repo.Get(sessionID)
	return m.append(s, in)
}

// AppendInteraction pushes an interaction, dropping the oldest ones beyond
// MaxInteractions. A missing id is generated.
func (m *Manager) AppendInteraction(sessionID string, in store.Interaction) (store.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.repo.Get(sessionID)
	if !ok {
		return store.Interaction{}, ErrSessionNotFound
	}
	return m.append(s, in), nil
}

// Get returns a copy of the session.
func (m *Manager) Get(sessionID string) (store.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.repo.Get(sessionID)
	if !ok {
		return store.Session{}, false
	}
	return s.Clone(), true
}

// LastInteraction returns a copy of the most recently appended interaction.
func (m *Manager) LastInteraction(sessionID string) (store.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.repo.Get(sessionID)
	if !ok {
		return store.Interaction{}, ErrSessionNotFound
	}
	if len(s.Interactions) == 0 {
		return store.Interaction{}, ErrInteractionNotFound
	}
	return s.Interactions[len(s.Interactions)-1].Clone(), nil
}

// Interaction returns a copy of one interaction.
func (m *Manager) Interaction(sessionID, interactionID string) (store.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.repo.Get(sessionID)
	if !ok {
		return store.Interaction{}, ErrSessionNotFound
	}
	i := indexOf(s, interactionID)
	if i < 0 {
		return store.Interaction{}, ErrInteractionNotFound
	}
	return s.Interactions[i].Clone(), nil
}

// History returns copies of all interactions, oldest first.
func (m *Manager) History(sessionID string) []store.Interaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.repo.Get(sessionID)
	if !ok {
		return nil
	}
	out := make([]store.Interaction, len(s.Interactions))
	for i, in := range s.Interactions {
		out[i] = in.Clone()
	}
	return out
}

// UpdateLastResponse stores the generated answer on an interaction. A
// session or interaction evicted during generation makes this a logged no-op.
func (m *Manager) UpdateLastResponse(sessionID, interactionID, fullResponse string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.repo.Get(sessionID)
	if !ok {
		log.Printf("[WARN] UpdateLastResponse: session %s not found", sessionID)
		return false
	}
	i := indexOf(s, interactionID)
	if i < 0 {
		log.Printf("[WARN] UpdateLastResponse: interaction %s not found in session %s", interactionID, sessionID)
		return false
	}
	s.Interactions[i].FullResponse = fullResponse
	return true
}

// RecordFeedback attaches the outcome to the interaction. Negative feedback
// retracts the interaction from the session instead; removed reports that.
func (m *Manager) RecordFeedback(sessionID, interactionID, score string) (removed bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.repo.Get(sessionID)
	if !ok {
		return false, ErrSessionNotFound
	}
	i := indexOf(s, interactionID)
	if i < 0 {
		return false, ErrInteractionNotFound
	}

	sentiment := store.ParseSentiment(score)
	if sentiment == store.SentimentNegative {
		s.Interactions = append(s.Interactions[:i], s.Interactions[i+1:]...)
		return true, nil
	}
	s.Interactions[i].Feedback = &store.FeedbackOutcome{
		Sentiment:  sentiment,
		Score:      score,
		RecordedAt: m.now(),
	}
	return false, nil
}

// EvictIfInactive removes the session when its inactivity window has
// already elapsed. Used when a client connection drops.
func (m *Manager) EvictIfInactive(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.repo.Get(sessionID)
	if !ok {
		return false
	}
	if m.now().Sub(s.LastInteractionAt) > m.cfg.InactivityLimit {
		m.repo.Delete(sessionID)
		log.Printf("[INFO] Session %s evicted on disconnect", sessionID)
		return true
	}
	return false
}

// Sweep runs the inactivity and capacity eviction pass.
func (m *Manager) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep("")
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repo.Count()
}

func (m *Manager) touch(sessionID string) bool {
	if s, ok := m.repo.Get(sessionID); ok {
		s.LastInteractionAt = m.now()
		return false
	}
	m.repo.Save(&store.Session{ID: sessionID, LastInteractionAt: m.now()})
	return true
}

// sweep drops every session idle past the limit, then at most one session,
// the least recently active other than keep, when the registry is still
// over capacity.
func (m *Manager) sweep(keep string) {
	now := m.now()
	sessions := m.repo.All()

	var oldest *store.Session
	alive := 0
	for _, s := range sessions {
		if now.Sub(s.LastInteractionAt) > m.cfg.InactivityLimit {
			m.repo.Delete(s.ID)
			log.Printf("[INFO] Session %s evicted after inactivity", s.ID)
			continue
		}
		alive++
		if s.ID == keep {
			continue
		}
		if oldest == nil || s.LastInteractionAt.Before(oldest.LastInteractionAt) {
			oldest = s
		}
	}

	if alive > m.cfg.MaxSessions && oldest != nil {
		m.repo.Delete(oldest.ID)
		log.Printf("[INFO] Session %s evicted to stay within %d sessions", oldest.ID, m.cfg.MaxSessions)
	}
}

func (m *Manager) append(s *store.Session, in store.Interaction) store.Interaction {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = m.now()
	}
	s.Interactions = append(s.Interactions, in.Clone())
	if over := len(s.Interactions) - m.cfg.MaxInteractions; over > 0 {
		s.Interactions = append([]store.Interaction(nil), s.Interactions[over:]...)
	}
	return in.Clone()
}

func indexOf(s *store.Session, interactionID string) int {
	for i, in := range s.Interactions {
		if in.ID == interactionID {
			return i
		}
	}
	return -1
}
