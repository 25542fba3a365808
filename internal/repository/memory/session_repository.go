package memory

import (
	"resolution-rag-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps live sessions in process memory. Entries never
// expire on their own; inactivity and capacity eviction belong to the
// session manager, which serializes all access.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.NoExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) All() []*store.Session {
	items := r.cache.Items()
	sessions := make([]*store.Session, 0, len(items))
	for _, item := range items {
		sessions = append(sessions, item.Object.(*store.Session))
	}
	return sessions
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
