package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/noah-isme/course-enrollment-portal/internal/models"
	appErrors "github.com/noah-isme/course-enrollment-portal/pkg/errors"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemorySessionRepository keeps sessions in process memory. Entries are
// stored encoded so callers never share mutable state with the store.
type MemorySessionRepository struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemorySessionRepository constructs an empty in-memory store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{entries: map[string]memoryEntry{}, now: time.Now}
}

// Get loads session id. Missing or expired entries yield appErrors.ErrCacheMiss.
func (r *MemorySessionRepository) Get(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok && !entry.expiresAt.IsZero() && !r.now().Before(entry.expiresAt) {
		delete(r.entries, id)
		ok = false
	}
	r.mu.Unlock()

	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	var session models.Session
	if err := json.Unmarshal(entry.payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Save stores the session; a non-positive ttl never expires.
func (r *MemorySessionRepository) Save(_ context.Context, session *models.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	entry := memoryEntry{payload: payload}
	if ttl > 0 {
		entry.expiresAt = r.now().Add(ttl)
	}

	r.mu.Lock()
	r.entries[session.ID] = entry
	r.mu.Unlock()
	return nil
}
