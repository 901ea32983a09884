package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quickinstall/installstats/internal/model"
)

func TestSelector_Defaults(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 5, 23, 59, 0, 0, time.UTC)

	tests := []struct {
		name    string
		sel     Selector
		day     model.Bucket
		monthly string
	}{
		{"all defaulted", Selector{}, model.Bucket{Year: 2024, Month: 3, Day: 5}, "2024/3"},
		{"explicit year", Selector{Year: 2023}, model.Bucket{Year: 2023, Month: 3, Day: 5}, "2023/3"},
		{"explicit month", Selector{Month: 11}, model.Bucket{Year: 2024, Month: 11, Day: 5}, "2024/11"},
		{"explicit all", Selector{Year: 2022, Month: 1, Day: 9}, model.Bucket{Year: 2022, Month: 1, Day: 9}, "2022/1"},
		{"negative values", Selector{Year: -1, Month: -5, Day: -2}, model.Bucket{Year: 2024, Month: 3, Day: 5}, "2024/3"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.sel.DayBucket(now); got != tt.day {
				t.Errorf("DayBucket() = %+v, want %+v", got, tt.day)
			}
			if got := tt.sel.MonthBucket(now).Key(); got != tt.monthly {
				t.Errorf("MonthBucket().Key() = %q, want %q", got, tt.monthly)
			}
		})
	}
}

func TestStatsService_ReadsBuckets(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.data["2024/3/5"] = map[string]int64{"ripgrep/13.0.0/x86_64-unknown-linux-gnu": 3}
	store.data["2024/3"] = map[string]int64{"legacy/1.0.0/x86_64-apple-darwin": 9}
	store.data["agents/2024/3/5"] = map[string]int64{"curl/7.81": 2, "null": 1}
	store.data["2024/2/1"] = map[string]int64{"old/0.1.0/x86_64-apple-darwin": 1}

	svc := NewStatsService(store, discardLogger(), nil, WithClock(fixedClock))
	ctx := context.Background()

	daily, err := svc.PackageCounts(ctx, Selector{})
	if err != nil {
		t.Fatalf("PackageCounts() error = %v", err)
	}
	if len(daily) != 1 || daily["ripgrep/13.0.0/x86_64-unknown-linux-gnu"] != 3 {
		t.Errorf("PackageCounts() = %v", daily)
	}

	monthly, err := svc.MonthlyCounts(ctx, Selector{})
	if err != nil {
		t.Fatalf("MonthlyCounts() error = %v", err)
	}
	if len(monthly) != 1 || monthly["legacy/1.0.0/x86_64-apple-darwin"] != 9 {
		t.Errorf("MonthlyCounts() = %v", monthly)
	}

	agents, err := svc.AgentCounts(ctx, Selector{})
	if err != nil {
		t.Fatalf("AgentCounts() error = %v", err)
	}
	if len(agents) != 2 || agents["curl/7.81"] != 2 || agents["null"] != 1 {
		t.Errorf("AgentCounts() = %v", agents)
	}

	older, err := svc.PackageCounts(ctx, Selector{Month: 2, Day: 1})
	if err != nil {
		t.Fatalf("PackageCounts() error = %v", err)
	}
	if older["old/0.1.0/x86_64-apple-darwin"] != 1 {
		t.Errorf("PackageCounts(2024/2/1) = %v", older)
	}
}

func TestStatsService_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.scanErr = errors.New("connection refused")
	svc := NewStatsService(store, discardLogger(), nil, WithClock(fixedClock))

	_, err := svc.PackageCounts(context.Background(), Selector{})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("PackageCounts() error = %v, want ErrStoreUnavailable", err)
	}
}
