package core

// maintenance.go runs periodic cleanup:
//  1. Evict browser sessions idle longer than the session timeout
//  2. Purge fetch history older than the retention window
//
// The scheduler is long-running and stops when its context is cancelled.
// Failures are logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// MaintenanceConfig holds configuration for the maintenance scheduler.
type MaintenanceConfig struct {
	SessionIdleTimeout   time.Duration // Evict sessions idle this long (default: 2h)
	HistoryRetentionDays int           // Days to keep snapshots (default: 30)
	CheckInterval        time.Duration // How often to run (default: 10m)
}

func (c MaintenanceConfig) withDefaults() MaintenanceConfig {
	if c.SessionIdleTimeout <= 0 {
		c.SessionIdleTimeout = 2 * time.Hour
	}
	if c.HistoryRetentionDays <= 0 {
		c.HistoryRetentionDays = 30
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 10 * time.Minute
	}
	return c
}

// StartMaintenance runs one maintenance pass immediately, then every
// CheckInterval until ctx is cancelled.
func (s *Service) StartMaintenance(ctx context.Context, cfg MaintenanceConfig) {
	cfg = cfg.withDefaults()

	slog.Info("maintenance scheduler started",
		"session_idle_timeout", cfg.SessionIdleTimeout.String(),
		"history_retention_days", cfg.HistoryRetentionDays,
		"interval", cfg.CheckInterval.String(),
	)

	s.runMaintenance(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("maintenance scheduler stopped")
			return
		case <-ticker.C:
			s.runMaintenance(ctx, cfg)
		}
	}
}

// runMaintenance performs one eviction + purge cycle.
func (s *Service) runMaintenance(ctx context.Context, cfg MaintenanceConfig) {
	start := time.Now()

	evicted := s.EvictIdleSessions(cfg.SessionIdleTimeout)
	if evicted > 0 {
		slog.Info("evicted idle sessions", "sessions_evicted", evicted, "sessions_remaining", s.SessionCount())
	}

	if s.history != nil {
		cutoff := s.now().AddDate(0, 0, -cfg.HistoryRetentionDays)
		purged, err := s.history.Purge(ctx, cutoff)
		if err != nil {
			slog.Error("history purge failed", "error", err)
		} else if purged > 0 {
			slog.Info("purged fetch history", "snapshots_purged", purged, "cutoff", cutoff)
		}
	}

	slog.Debug("maintenance completed", "duration_ms", time.Since(start).Milliseconds())
}
