package feedback

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisEntriesKey = "feedback:entries"
	// MaxStoredEntries bounds the Redis list; older entries are trimmed.
	MaxStoredEntries = 500
)

// RedisRepository keeps the newest entries in a capped Redis list.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository constructs a RedisRepository.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// Create prepends entry and trims the list.
func (r *RedisRepository) Create(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("feedback: encode entry: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, redisEntriesKey, data)
		pipe.LTrim(ctx, redisEntriesKey, 0, MaxStoredEntries-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("feedback: store entry: %w", err)
	}
	return nil
}

// Get looks up an entry among the retained ones.
func (r *RedisRepository) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	entries, err := r.load(ctx, MaxStoredEntries)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Recent returns up to limit entries, newest first.
func (r *RedisRepository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	return r.load(ctx, limit)
}

func (r *RedisRepository) load(ctx context.Context, limit int) ([]Entry, error) {
	raw, err := r.client.LRange(ctx, redisEntriesKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("feedback: list entries: %w", err)
	}
	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("feedback: decode entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
