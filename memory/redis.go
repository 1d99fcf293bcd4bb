package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/nimbus-ai/reasoncore/core"
)

// RedisStore is a recency-based MemoryStore backed by a Redis list per
// user, for callers who already run Redis for other state and would
// rather not add an in-process store that doesn't survive a restart. It
// is still just a list of recent turns — no embeddings, no similarity
// search; that remains out of scope.
type RedisStore struct {
	client  *redis.Client
	maxSize int64
	ttl     time.Duration
}

// NewRedisStore wraps an existing *redis.Client. maxSize bounds the list
// length per user (oldest entries trimmed); ttl, if positive, refreshes
// the key's expiry on every Store call.
func NewRedisStore(client *redis.Client, maxSize int64, ttl time.Duration) *RedisStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &RedisStore{client: client, maxSize: maxSize, ttl: ttl}
}

func key(userID string) string {
	return fmt.Sprintf("nimbus:memory:%s", userID)
}

func (s *RedisStore) Store(ctx context.Context, entry core.MemoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return core.New("memory.RedisStore.Store", core.KindValidation, entry.UserID, err)
	}

	k := key(entry.UserID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, k, data)
	pipe.LTrim(ctx, k, 0, s.maxSize-1)
	if s.ttl > 0 {
		pipe.Expire(ctx, k, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return core.New("memory.RedisStore.Store", core.KindBackend, entry.UserID, err)
	}
	return nil
}

func (s *RedisStore) Recall(ctx context.Context, userID string, limit int) ([]core.MemoryEntry, error) {
	if limit <= 0 {
		limit = int(s.maxSize)
	}
	raw, err := s.client.LRange(ctx, key(userID), 0, int64(limit-1)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, core.New("memory.RedisStore.Recall", core.KindBackend, userID, err)
	}

	entries := make([]core.MemoryEntry, 0, len(raw))
	for _, item := range raw {
		var entry core.MemoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

var _ core.MemoryStore = (*RedisStore)(nil)
