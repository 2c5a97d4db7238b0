package core

import (
	"time"

	"github.com/JonMunkholm/trackexport/internal/table"
)

// View is the renderable state of one session: the current page of the
// current table together with its sort state and source.
type View struct {
	SessionID  string          `json:"session_id"`
	Loaded     bool            `json:"loaded"`
	Fetching   bool            `json:"fetching"`
	Identifier string          `json:"identifier,omitempty"`
	Label      string          `json:"label,omitempty"`
	Header     []string        `json:"header,omitempty"`
	Sort       table.SortState `json:"sort"`
	Page       table.Page      `json:"page"`
}

// FetchResult summarizes a completed fetch.
type FetchResult struct {
	Identifier string `json:"identifier"`
	Label      string `json:"label"`
	Rows       int    `json:"rows"`
	Columns    int    `json:"columns"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Snapshot is one recorded fetch. RawContent is only populated by Get.
type Snapshot struct {
	ID          string    `json:"id"`
	Identifier  string    `json:"identifier"`
	SourceLabel string    `json:"source_label"`
	RawContent  string    `json:"-"`
	RowCount    int       `json:"row_count"`
	RequestedBy string    `json:"-"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Status is the service health summary served at /api/status.
type Status struct {
	Sessions       int         `json:"sessions"`
	HistoryEnabled bool        `json:"history_enabled"`
	Fetches        FetchStatus `json:"fetches"`
}
