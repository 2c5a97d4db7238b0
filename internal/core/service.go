package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/trackexport/internal/config"
	"github.com/JonMunkholm/trackexport/internal/fetch"
	"github.com/JonMunkholm/trackexport/internal/logging"
	"github.com/JonMunkholm/trackexport/internal/table"
)

// HistorySaveTimeout bounds recording a snapshot after a successful fetch.
var HistorySaveTimeout = 5 * time.Second

// Fetcher retrieves raw table text for an identifier.
// Satisfied by *fetch.Client.
type Fetcher interface {
	Fetch(ctx context.Context, identifier string) (fetch.Result, error)
}

// Service owns the browser sessions and orchestrates fetches, history and
// maintenance around them.
type Service struct {
	fetcher         Fetcher
	history         HistoryStore
	fetches         *fetchSlots
	pageSize        int
	defaultBaseName string
	now             func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a Service. history may be nil, which disables fetch history.
func NewService(fetcher Fetcher, history HistoryStore, cfg *config.Config) *Service {
	return &Service{
		fetcher:         fetcher,
		history:         history,
		fetches:         newFetchSlots(cfg.Fetch.MaxConcurrent, cfg.Fetch.MaxWaitTime),
		pageSize:        cfg.Table.PageSize,
		defaultBaseName: cfg.Table.DefaultBaseName,
		now:             time.Now,
		sessions:        make(map[string]*Session),
	}
}

// HistoryEnabled reports whether fetch snapshots are recorded.
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}

// Session returns the session for id, creating a new one when id is empty
// or unknown. The boolean reports whether a new session was created.
func (s *Service) Session(id string) (*Session, bool) {
	now := s.now()

	if id != "" {
		s.mu.RLock()
		sess, ok := s.sessions[id]
		s.mu.RUnlock()
		if ok {
			sess.touch(now)
			return sess, false
		}
	}

	sess := newSession(uuid.NewString(), s.pageSize, s.defaultBaseName, now)

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	return sess, true
}

// Lookup returns an existing session without creating one.
func (s *Service) Lookup(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdleSessions drops sessions not used within maxIdle. Sessions with a
// fetch in flight are kept.
func (s *Service) EvictIdleSessions(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.Fetching() || !sess.LastSeen().Before(cutoff) {
			continue
		}
		delete(s.sessions, id)
		evicted++
	}
	return evicted
}

// Fetch retrieves the table for identifier and installs it in the session.
// The session keeps its previous table when the fetch or parse fails.
func (s *Service) Fetch(ctx context.Context, sess *Session, identifier string) (*FetchResult, error) {
	done, err := sess.beginFetch()
	if err != nil {
		return nil, err
	}
	defer done()

	fields := append([]any{"identifier", identifier}, RequesterFromContext(ctx).logFields()...)
	logger := logging.WithFields(ctx, fields...)

	release, err := s.fetches.acquire(ctx, identifier)
	if err != nil {
		logger.Warn("fetch rejected", "error", err)
		return nil, err
	}
	defer release()

	start := s.now()
	logger.Info("fetch started")

	res, err := s.fetcher.Fetch(ctx, identifier)
	if err != nil {
		logger.Error("fetch failed", "error", err)
		return nil, err
	}

	t, err := table.Parse(res.Content)
	if err != nil {
		logger.Warn("fetched table rejected", "error", err)
		return nil, fmt.Errorf("parse fetched table: %w", err)
	}

	sess.install(res.Identifier, res.Label, t)
	sess.touch(s.now())

	result := &FetchResult{
		Identifier: res.Identifier,
		Label:      res.Label,
		Rows:       t.NumRows(),
		Columns:    t.NumColumns(),
	}

	if s.history != nil {
		result.SnapshotID = s.recordSnapshot(ctx, res, t.NumRows())
	}

	result.DurationMs = s.now().Sub(start).Milliseconds()
	logger.Info("fetch completed",
		"label", res.Label,
		"rows", result.Rows,
		"columns", result.Columns,
		"duration_ms", result.DurationMs,
	)

	return result, nil
}

// recordSnapshot stores a fetch in history. Failures are logged, not returned:
// the session already holds the table.
func (s *Service) recordSnapshot(ctx context.Context, res fetch.Result, rows int) string {
	snap := Snapshot{
		ID:          uuid.NewString(),
		Identifier:  res.Identifier,
		SourceLabel: res.Label,
		RawContent:  res.Content,
		RowCount:    rows,
		RequestedBy: RequesterFromContext(ctx).IP,
		FetchedAt:   s.now(),
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), HistorySaveTimeout)
	defer cancel()

	if err := s.history.Save(saveCtx, snap); err != nil {
		logging.FromContext(ctx).Error("failed to record snapshot", "error", err)
		return ""
	}
	return snap.ID
}

// History lists recent snapshots, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]Snapshot, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.List(ctx, limit)
}

// LoadSnapshot re-parses a recorded snapshot into the session.
func (s *Service) LoadSnapshot(ctx context.Context, sess *Session, id string) (*FetchResult, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}

	snap, err := s.history.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	t, err := table.Parse(snap.RawContent)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", id, err)
	}

	sess.install(snap.Identifier, snap.SourceLabel, t)
	sess.touch(s.now())

	logging.FromContext(ctx).Info("snapshot loaded", "snapshot_id", id, "rows", t.NumRows())

	return &FetchResult{
		Identifier: snap.Identifier,
		Label:      snap.SourceLabel,
		Rows:       t.NumRows(),
		Columns:    t.NumColumns(),
		SnapshotID: id,
	}, nil
}

// Status returns a health summary.
func (s *Service) Status() Status {
	return Status{
		Sessions:       s.SessionCount(),
		HistoryEnabled: s.HistoryEnabled(),
		Fetches:        s.fetches.status(),
	}
}

// WaitForFetches blocks until in-flight fetches complete or ctx is done.
func (s *Service) WaitForFetches(ctx context.Context) error {
	return s.fetches.drain(ctx)
}
