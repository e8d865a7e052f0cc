package history

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore constructs an in-memory history store for local development
// and tests.
func NewMemoryStore() *memoryStore {
	return &memoryStore{}
}

func (s *memoryStore) Record(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	return s.list(ctx, "", limit)
}

func (s *memoryStore) ListByQueueID(ctx context.Context, queueID string, limit int) ([]Entry, error) {
	return s.list(ctx, queueID, limit)
}

// list returns entries newest first, optionally filtered by queue id.
func (s *memoryStore) list(ctx context.Context, queueID string, limit int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = clampLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := s.entries[i]
		if queueID != "" && e.QueueID != queueID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
