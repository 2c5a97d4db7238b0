package core

import (
	"context"
	"testing"
	"time"
)

func TestEvictIdleSessions(t *testing.T) {
	svc := NewService(newFakeFetcher(), nil, testConfig())

	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	stale, _ := svc.Session("")
	busy, _ := svc.Session("")
	done, err := busy.beginFetch()
	if err != nil {
		t.Fatalf("beginFetch() error = %v", err)
	}
	defer done()

	clock = clock.Add(90 * time.Minute)
	fresh, _ := svc.Session("")

	if n := svc.EvictIdleSessions(time.Hour); n != 1 {
		t.Errorf("EvictIdleSessions() = %d, want 1", n)
	}
	if _, err := svc.Lookup(stale.ID()); err == nil {
		t.Error("stale session should be evicted")
	}
	if _, err := svc.Lookup(busy.ID()); err != nil {
		t.Error("session with a fetch in flight should be kept")
	}
	if _, err := svc.Lookup(fresh.ID()); err != nil {
		t.Error("recently used session should be kept")
	}
}

func TestRunMaintenance_PurgesHistory(t *testing.T) {
	history := newMemoryHistory()
	svc := NewService(newFakeFetcher(), history, testConfig())

	now := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	_ = history.Save(ctx, Snapshot{ID: "old", FetchedAt: now.AddDate(0, 0, -45)})
	_ = history.Save(ctx, Snapshot{ID: "recent", FetchedAt: now.AddDate(0, 0, -3)})

	svc.runMaintenance(ctx, MaintenanceConfig{HistoryRetentionDays: 30}.withDefaults())

	if _, err := history.Get(ctx, "old"); err == nil {
		t.Error("snapshot older than retention should be purged")
	}
	if _, err := history.Get(ctx, "recent"); err != nil {
		t.Error("snapshot inside retention should be kept")
	}
}

func TestMaintenanceConfig_Defaults(t *testing.T) {
	cfg := MaintenanceConfig{}.withDefaults()

	if cfg.SessionIdleTimeout != 2*time.Hour {
		t.Errorf("SessionIdleTimeout = %v, want 2h", cfg.SessionIdleTimeout)
	}
	if cfg.HistoryRetentionDays != 30 {
		t.Errorf("HistoryRetentionDays = %d, want 30", cfg.HistoryRetentionDays)
	}
	if cfg.CheckInterval != 10*time.Minute {
		t.Errorf("CheckInterval = %v, want 10m", cfg.CheckInterval)
	}
}

func TestStartMaintenance_StopsOnCancel(t *testing.T) {
	svc := NewService(newFakeFetcher(), nil, testConfig())
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		svc.StartMaintenance(ctx, MaintenanceConfig{CheckInterval: 10 * time.Millisecond})
		close(stopped)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("StartMaintenance did not return after cancellation")
	}
}
