package core

// history.go records successful fetches so a session can reload an earlier
// table without calling the upstream service again. Snapshots keep the raw
// text and are re-parsed on load.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrHistoryDisabled is returned by history operations when no database is configured.
	ErrHistoryDisabled = errors.New("history disabled: no database configured")

	// ErrSnapshotNotFound is returned when a snapshot ID is unknown.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// DefaultHistoryLimit caps how many snapshots List returns.
const DefaultHistoryLimit = 50

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// HistoryStore persists fetch snapshots.
type HistoryStore interface {
	Save(ctx context.Context, snap Snapshot) error
	List(ctx context.Context, limit int) ([]Snapshot, error)
	Get(ctx context.Context, id string) (Snapshot, error)
	Purge(ctx context.Context, before time.Time) (int64, error)
}

const historySchema = `
CREATE TABLE IF NOT EXISTS table_snapshots (
	id           UUID PRIMARY KEY,
	identifier   TEXT NOT NULL,
	source_label TEXT NOT NULL,
	raw_content  TEXT NOT NULL,
	row_count    INTEGER NOT NULL,
	requested_by TEXT,
	fetched_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS table_snapshots_fetched_at_idx ON table_snapshots (fetched_at DESC);
`

// PgHistoryStore is a HistoryStore backed by PostgreSQL.
type PgHistoryStore struct {
	db DBTX
}

// NewPgHistoryStore wraps a pool or transaction.
func NewPgHistoryStore(db DBTX) *PgHistoryStore {
	return &PgHistoryStore{db: db}
}

// EnsureSchema creates the snapshots table if it does not exist.
func (h *PgHistoryStore) EnsureSchema(ctx context.Context) error {
	if _, err := h.db.Exec(ctx, historySchema); err != nil {
		return fmt.Errorf("ensure history schema: %w", err)
	}
	return nil
}

// Save inserts a snapshot. ID must be a UUID.
func (h *PgHistoryStore) Save(ctx context.Context, snap Snapshot) error {
	row, err := newSnapshotRow(snap)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	_, err = h.db.Exec(ctx, `
		INSERT INTO table_snapshots (id, identifier, source_label, raw_content, row_count, requested_by, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))`,
		row.args()...,
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// List returns the most recent snapshots, newest first, without raw content.
func (h *PgHistoryStore) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}

	rows, err := h.db.Query(ctx, `
		SELECT id, identifier, source_label, row_count, requested_by, fetched_at
		FROM table_snapshots
		ORDER BY fetched_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var row snapshotRow
		if err := rows.Scan(&row.ID, &row.Identifier, &row.SourceLabel, &row.RowCount, &row.RequestedBy, &row.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, row.snapshot())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	return snaps, nil
}

// Get returns one snapshot including its raw content.
func (h *PgHistoryStore) Get(ctx context.Context, id string) (Snapshot, error) {
	pgID, ok := parseSnapshotID(id)
	if !ok {
		return Snapshot{}, ErrSnapshotNotFound
	}

	row := snapshotRow{ID: pgID}
	err := h.db.QueryRow(ctx, `
		SELECT identifier, source_label, raw_content, row_count, requested_by, fetched_at
		FROM table_snapshots
		WHERE id = $1`, pgID,
	).Scan(&row.Identifier, &row.SourceLabel, &row.RawContent, &row.RowCount, &row.RequestedBy, &row.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}

	return row.snapshot(), nil
}

// Purge deletes snapshots fetched before the cutoff.
func (h *PgHistoryStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	tag, err := h.db.Exec(ctx, `DELETE FROM table_snapshots WHERE fetched_at < $1`, timestamptz(before))
	if err != nil {
		return 0, fmt.Errorf("purge snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
