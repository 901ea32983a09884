package model

import (
	"testing"
	"time"
)

func TestBucket_Key(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bucket   Bucket
		key      string
		agentKey string
	}{
		{"daily", Bucket{Year: 2024, Month: 3, Day: 5}, "2024/3/5", "agents/2024/3/5"},
		{"daily two digits", Bucket{Year: 2023, Month: 12, Day: 31}, "2023/12/31", "agents/2023/12/31"},
		{"monthly", Bucket{Year: 2024, Month: 3}, "2024/3", "agents/2024/3"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.bucket.Key(); got != tt.key {
				t.Errorf("Key() = %q, want %q", got, tt.key)
			}
			if got := tt.bucket.AgentKey(); got != tt.agentKey {
				t.Errorf("AgentKey() = %q, want %q", got, tt.agentKey)
			}
		})
	}
}

func TestDayBucket_UsesUTC(t *testing.T) {
	t.Parallel()

	// 23:30 on March 4th in UTC-5 is already March 5th in UTC.
	loc := time.FixedZone("UTC-5", -5*60*60)
	ts := time.Date(2024, 3, 4, 23, 30, 0, 0, loc)

	got := DayBucket(ts)
	want := Bucket{Year: 2024, Month: 3, Day: 5}
	if got != want {
		t.Errorf("DayBucket(%v) = %+v, want %+v", ts, got, want)
	}
}

func TestMonthBucket(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	got := MonthBucket(ts)

	if !got.IsMonthly() {
		t.Fatal("expected monthly bucket")
	}
	if got.Key() != "2024/3" {
		t.Errorf("Key() = %q, want %q", got.Key(), "2024/3")
	}
}

func TestInstallEvent_Field(t *testing.T) {
	t.Parallel()

	event := InstallEvent{
		Package:      "ripgrep",
		Version:      "13.0.0",
		Architecture: "x86_64-unknown-linux-gnu",
	}

	if got := event.Field(); got != "ripgrep/13.0.0/x86_64-unknown-linux-gnu" {
		t.Errorf("Field() = %q", got)
	}
	if got := event.AgentOrDefault(); got != DefaultAgent {
		t.Errorf("AgentOrDefault() = %q, want %q", got, DefaultAgent)
	}

	event.Agent = "curl/7.81"
	if got := event.AgentOrDefault(); got != "curl/7.81" {
		t.Errorf("AgentOrDefault() = %q, want %q", got, "curl/7.81")
	}
}
