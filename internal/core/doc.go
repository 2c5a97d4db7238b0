// Package core provides the application layer around the table engine.
//
// It is independent of any transport: the web handlers and tests drive it
// through [Service].
//
// # Sessions
//
// Each browser gets a [Session] keyed by a random UUID stored in a cookie.
// A session owns exactly one table.Engine (current table, sort state, page)
// and serializes every engine call through its own mutex. Idle sessions are
// evicted by [Service.StartMaintenance].
//
// # Fetching
//
// [Service.Fetch] runs at most one fetch per session and at most
// Fetch.MaxConcurrent fetches per process (see [ErrTooManyFetches]). The fetched
// text is parsed before the session lock is taken and the parsed table is
// swapped in wholesale, so a failed fetch leaves the previous table visible.
//
// # History
//
// When a database is configured, every successful fetch is stored as a
// [Snapshot] through a [HistoryStore] ([PgHistoryStore] in production).
// Snapshots can be listed, reloaded into a session and are purged after the
// retention window.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]:
//
//   - PARSE001, SORT001, EXP001-EXP002, TBL001: table engine errors
//   - FETCH001-FETCH006: upstream fetch errors
//   - HIST001-HIST002: history errors
//   - REQ001-REQ003: cancelled, timed out or unreadable requests
package core
