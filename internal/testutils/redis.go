package testutils

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// TestRedisConfig holds configuration for test Redis instances
type TestRedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DefaultTestRedisConfig returns the default test Redis configuration.
// TEST_REDIS_ADDR overrides the address.
func DefaultTestRedisConfig() *TestRedisConfig {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	return &TestRedisConfig{
		Addr: addr,
		DB:   15, // Use DB 15 for tests to avoid conflicts
	}
}

// CreateTestRedisClient creates a Redis client for testing, skipping the
// test when no Redis is reachable
func CreateTestRedisClient(t *testing.T, cfg *TestRedisConfig) redis.UniversalClient {
	t.Helper()

	if cfg == nil {
		cfg = DefaultTestRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	err := client.FlushDB(ctx).Err()
	require.NoError(t, err, "Failed to flush test Redis database")

	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})

	return client
}
