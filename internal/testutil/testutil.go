// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// StartRedis runs an in-process Redis server for the duration of the test
// and returns it together with a redis:// URL pointing at it.
func StartRedis(t testing.TB) (*miniredis.Miniredis, string) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, "redis://" + mr.Addr()
}

// SeedHash writes counter fields into a hash bucket.
func SeedHash(t testing.TB, mr *miniredis.Miniredis, key string, counts map[string]int64) {
	t.Helper()
	for field, n := range counts {
		mr.HSet(key, field, strconv.FormatInt(n, 10))
	}
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
