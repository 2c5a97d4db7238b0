package core

// convert.go maps Snapshot to and from its table_snapshots row. requested_by
// is the only nullable column.

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// snapshotRow is a Snapshot in column form.
type snapshotRow struct {
	ID          pgtype.UUID
	Identifier  string
	SourceLabel string
	RawContent  string
	RowCount    pgtype.Int4
	RequestedBy pgtype.Text
	FetchedAt   pgtype.Timestamptz
}

// newSnapshotRow converts a snapshot for insertion. The ID must be a UUID.
func newSnapshotRow(s Snapshot) (snapshotRow, error) {
	id, ok := parseSnapshotID(s.ID)
	if !ok {
		return snapshotRow{}, fmt.Errorf("invalid snapshot id %q", s.ID)
	}

	rowCount := s.RowCount
	if rowCount < 0 {
		rowCount = 0
	}

	return snapshotRow{
		ID:          id,
		Identifier:  s.Identifier,
		SourceLabel: s.SourceLabel,
		RawContent:  s.RawContent,
		RowCount:    pgtype.Int4{Int32: int32(rowCount), Valid: true},
		RequestedBy: nullableText(s.RequestedBy),
		FetchedAt:   timestamptz(s.FetchedAt),
	}, nil
}

// args returns the insert parameters in column order.
func (r snapshotRow) args() []any {
	return []any{r.ID, r.Identifier, r.SourceLabel, r.RawContent, r.RowCount, r.RequestedBy, r.FetchedAt}
}

func (r snapshotRow) snapshot() Snapshot {
	s := Snapshot{
		Identifier:  r.Identifier,
		SourceLabel: r.SourceLabel,
		RawContent:  r.RawContent,
		RowCount:    int(r.RowCount.Int32),
		RequestedBy: r.RequestedBy.String,
		FetchedAt:   r.FetchedAt.Time,
	}
	if r.ID.Valid {
		s.ID = uuid.UUID(r.ID.Bytes).String()
	}
	return s
}

func parseSnapshotID(id string) (pgtype.UUID, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, false
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, true
}

// nullableText maps blank strings to NULL.
func nullableText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// timestamptz maps the zero time to NULL so the column default applies.
func timestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}
