package combatlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/CrwnG/DndProyect-sub001/internal/domain/combat"
	dnderr "github.com/CrwnG/DndProyect-sub001/internal/errors"
	"github.com/redis/go-redis/v9"
)

// redisRepo implements Repository using a Redis list per combat
type redisRepo struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient

	// TTL bounds how long a combat's log survives after its last append.
	// Zero means entries never expire.
	TTL time.Duration
}

// NewRedisRepository creates a Redis-backed combat log repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil || cfg.Client == nil {
		panic("redis client is required")
	}

	return &redisRepo{
		client: cfg.Client,
		ttl:    cfg.TTL,
	}
}

func logKey(combatID string) string {
	return fmt.Sprintf("combatlog:%s", combatID)
}

// Append stores a new log entry
func (r *redisRepo) Append(ctx context.Context, entry combat.LogEntry) error {
	if entry.CombatID == "" {
		return dnderr.InvalidArgument("log entry has no combat id")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return dnderr.Wrap(err, "failed to marshal log entry")
	}

	key := logKey(entry.CombatID)
	pipe := r.client.Pipeline()
	pipe.RPush(ctx, key, data)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return dnderr.Wrap(err, "failed to append log entry to Redis")
	}

	return nil
}

// List retrieves all entries for a combat, oldest first
func (r *redisRepo) List(ctx context.Context, combatID string) ([]combat.LogEntry, error) {
	if combatID == "" {
		return nil, dnderr.InvalidArgument("combat id is required")
	}

	raw, err := r.client.LRange(ctx, logKey(combatID), 0, -1).Result()
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to read combat log from Redis")
	}

	entries := make([]combat.LogEntry, 0, len(raw))
	for _, item := range raw {
		var entry combat.LogEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, dnderr.Wrap(err, "failed to unmarshal log entry")
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Clear removes all entries for a combat
func (r *redisRepo) Clear(ctx context.Context, combatID string) error {
	if combatID == "" {
		return dnderr.InvalidArgument("combat id is required")
	}

	if err := r.client.Del(ctx, logKey(combatID)).Err(); err != nil {
		return dnderr.Wrap(err, "failed to clear combat log in Redis")
	}
	return nil
}
