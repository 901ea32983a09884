package cache

import (
	"context"
	"fmt"
	"strconv"
)

// Increment atomically adds one to field in the hash bucketKey and returns
// the new value. Missing hashes and fields start at zero.
func (c *Cache) Increment(ctx context.Context, bucketKey, field string) (int64, error) {
	n, err := c.hash.HIncrBy(ctx, bucketKey, field, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("redis hincrby failed: %w", err)
	}
	return n, nil
}

// ScanAll reads every field of the hash bucketKey.
//
// HSCAN is not a snapshot: under concurrent writes a field can appear on
// more than one page, in which case the last value seen wins. Values that
// are not integers are reported as zero.
func (c *Cache) ScanAll(ctx context.Context, bucketKey string) (map[string]int64, error) {
	result := make(map[string]int64)
	var cursor uint64

	for {
		var pairs []string
		var err error

		pairs, cursor, err = c.hash.HScan(ctx, bucketKey, cursor, "", c.scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan %q: %w", bucketKey, err)
		}

		for i := 0; i+1 < len(pairs); i += 2 {
			result[pairs[i]] = parseCount(pairs[i+1])
		}

		if cursor == 0 {
			break
		}
	}

	return result, nil
}

// parseCount parses a stored counter, treating corrupt values as zero.
func parseCount(raw string) int64 {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
