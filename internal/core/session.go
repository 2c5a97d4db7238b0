package core

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/trackexport/internal/table"
)

// ErrFetchInProgress is returned when a session already has a fetch running.
var ErrFetchInProgress = errors.New("fetch already in progress for this session")

// ErrSessionNotFound is returned when a session ID is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// Session is one browser's view of the engine. All engine access goes
// through mu; a fetch parses outside the lock and swaps the result in.
type Session struct {
	id              string
	defaultBaseName string

	mu         sync.Mutex
	engine     *table.Engine
	identifier string

	fetching atomic.Bool
	lastSeen atomic.Int64
}

func newSession(id string, pageSize int, defaultBaseName string, now time.Time) *Session {
	s := &Session{
		id:              id,
		defaultBaseName: defaultBaseName,
		engine:          table.NewEngine(pageSize),
	}
	s.lastSeen.Store(now.UnixNano())
	return s
}

// ID returns the session identifier stored in the browser cookie.
func (s *Session) ID() string {
	return s.id
}

// Fetching reports whether a fetch is running for this session.
func (s *Session) Fetching() bool {
	return s.fetching.Load()
}

// LastSeen returns the time of the last operation on this session.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// beginFetch marks the session as fetching. The returned func clears the mark.
func (s *Session) beginFetch() (func(), error) {
	if !s.fetching.CompareAndSwap(false, true) {
		return nil, ErrFetchInProgress
	}
	return func() { s.fetching.Store(false) }, nil
}

// install swaps a freshly parsed table into the engine.
func (s *Session) install(identifier, label string, t *table.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Replace(label, t)
	s.identifier = identifier
}

// SortBy toggles the sort on col and returns the refreshed view.
func (s *Session) SortBy(col int) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.SortBy(col); err != nil {
		return View{}, err
	}
	return s.viewLocked(func() (table.Page, error) { return s.engine.View() })
}

// View returns the current page.
func (s *Session) View() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(func() (table.Page, error) { return s.engine.View() })
}

// Page moves to page n and returns it. Out-of-range values, zero and
// negatives included, are clamped to the first or last page.
func (s *Session) Page(n int) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(func() (table.Page, error) { return s.engine.SetPage(n) })
}

// viewLocked builds a View; page is only consulted when a table is loaded.
func (s *Session) viewLocked(page func() (table.Page, error)) (View, error) {
	v := View{
		SessionID:  s.id,
		Fetching:   s.fetching.Load(),
		Identifier: s.identifier,
		Label:      s.engine.Label(),
		Sort:       s.engine.Sort(),
	}
	if !s.engine.Loaded() {
		return v, nil
	}

	p, err := page()
	if err != nil {
		return View{}, err
	}

	v.Loaded = true
	v.Header = s.engine.Table().Header()
	v.Page = p
	return v, nil
}

// Export serializes the full current table. A blank name falls back to the
// source label and then to the configured default base name.
func (s *Session) Export(f table.Format, name string) (table.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fallback := table.ResolveBaseName(s.engine.Label(), s.defaultBaseName)
	return s.engine.Export(f, table.ResolveBaseName(name, fallback))
}
