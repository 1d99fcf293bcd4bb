// Package memory provides reference implementations of core.MemoryStore.
// Persistence and vector-similarity recall are out of scope for this
// module; InMemoryStore exists for tests and local wiring, RedisStore
// exists so a caller with a Redis deployment can get simple recency-based
// recall without writing their own store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/nimbus-ai/reasoncore/core"
)

// InMemoryStore keeps, per user, the most recent entries up to a cap.
// Recall returns the most recent entries first.
type InMemoryStore struct {
	mu      sync.Mutex
	perUser map[string][]core.MemoryEntry
	maxSize int
}

// NewInMemoryStore builds a store retaining at most maxSize entries per
// user; the oldest entry is evicted once the cap is exceeded.
func NewInMemoryStore(maxSize int) *InMemoryStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &InMemoryStore{
		perUser: make(map[string][]core.MemoryEntry),
		maxSize: maxSize,
	}
}

func (s *InMemoryStore) Store(ctx context.Context, entry core.MemoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.perUser[entry.UserID], entry)
	if len(entries) > s.maxSize {
		entries = entries[len(entries)-s.maxSize:]
	}
	s.perUser[entry.UserID] = entries
	return nil
}

func (s *InMemoryStore) Recall(ctx context.Context, userID string, limit int) ([]core.MemoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.perUser[userID]
	out := make([]core.MemoryEntry, len(entries))
	copy(out, entries)

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ core.MemoryStore = (*InMemoryStore)(nil)
