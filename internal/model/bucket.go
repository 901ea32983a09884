package model

import (
	"fmt"
	"time"
)

// agentKeyPrefix namespaces the per-agent counter hashes.
const agentKeyPrefix = "agents/"

// Bucket is a UTC time bucket under which counters are grouped.
// A zero Day selects the coarser monthly bucket.
type Bucket struct {
	Year  int
	Month int
	Day   int
}

// DayBucket returns the daily bucket containing t (in UTC).
func DayBucket(t time.Time) Bucket {
	t = t.UTC()
	return Bucket{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// MonthBucket returns the monthly bucket containing t (in UTC).
func MonthBucket(t time.Time) Bucket {
	t = t.UTC()
	return Bucket{Year: t.Year(), Month: int(t.Month())}
}

// IsMonthly reports whether the bucket spans a whole month.
func (b Bucket) IsMonthly() bool {
	return b.Day == 0
}

// Key returns the hash name holding package counters, e.g. "2024/3/5" or "2024/3".
// Components are not zero padded; existing data depends on this format.
func (b Bucket) Key() string {
	if b.IsMonthly() {
		return fmt.Sprintf("%d/%d", b.Year, b.Month)
	}
	return fmt.Sprintf("%d/%d/%d", b.Year, b.Month, b.Day)
}

// AgentKey returns the hash name holding agent counters, e.g. "agents/2024/3/5".
func (b Bucket) AgentKey() string {
	return agentKeyPrefix + b.Key()
}

// String implements fmt.Stringer.
func (b Bucket) String() string {
	return b.Key()
}
