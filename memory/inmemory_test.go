package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-ai/reasoncore/core"
)

func TestInMemoryStoreRecallsNewestFirst(t *testing.T) {
	s := NewInMemoryStore(10)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Store(ctx, core.MemoryEntry{UserID: "u1", Prompt: "p1", CreatedAt: now}))
	require.NoError(t, s.Store(ctx, core.MemoryEntry{UserID: "u1", Prompt: "p2", CreatedAt: now.Add(time.Second)}))
	require.NoError(t, s.Store(ctx, core.MemoryEntry{UserID: "u1", Prompt: "p3", CreatedAt: now.Add(2 * time.Second)}))

	entries, err := s.Recall(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "p3", entries[0].Prompt)
	assert.Equal(t, "p2", entries[1].Prompt)
	assert.Equal(t, "p1", entries[2].Prompt)
}

func TestInMemoryStoreRecallRespectsLimit(t *testing.T) {
	s := NewInMemoryStore(10)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Store(ctx, core.MemoryEntry{UserID: "u1", Prompt: "p", CreatedAt: time.Now().Add(time.Duration(i) * time.Second)}))
	}

	entries, err := s.Recall(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestInMemoryStoreEvictsOldestPastCap(t *testing.T) {
	s := NewInMemoryStore(2)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.Store(ctx, core.MemoryEntry{UserID: "u1", Prompt: "first", CreatedAt: now}))
	require.NoError(t, s.Store(ctx, core.MemoryEntry{UserID: "u1", Prompt: "second", CreatedAt: now.Add(time.Second)}))
	require.NoError(t, s.Store(ctx, core.MemoryEntry{UserID: "u1", Prompt: "third", CreatedAt: now.Add(2 * time.Second)}))

	entries, err := s.Recall(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.NotEqual(t, "first", e.Prompt)
	}
}

func TestInMemoryStoreScopesByUser(t *testing.T) {
	s := NewInMemoryStore(10)
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, core.MemoryEntry{UserID: "u1", Prompt: "a", CreatedAt: time.Now()}))
	require.NoError(t, s.Store(ctx, core.MemoryEntry{UserID: "u2", Prompt: "b", CreatedAt: time.Now()}))

	entries, err := s.Recall(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Prompt)
}

func TestInMemoryStoreDefaultsMaxSizeWhenNonPositive(t *testing.T) {
	s := NewInMemoryStore(0)
	assert.Equal(t, 1000, s.maxSize)
}
