package web

// handlers_common.go holds helpers shared by the page and API handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/trackexport/internal/core"
	"github.com/JonMunkholm/trackexport/internal/table"
	"github.com/JonMunkholm/trackexport/internal/web/templates"
)

// maxJSONBody caps API request bodies.
const maxJSONBody = 64 * 1024

var errInvalidRequest = errors.New("invalid request")

var formatLabels = map[table.Format]string{
	table.FormatText:    "Text",
	table.FormatCSV:     "CSV",
	table.FormatXLSX:    "Excel",
	table.FormatParquet: "Parquet",
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parsePageParam reads ?page=N. ok is false when the parameter is absent or
// not an integer; any integer, zero and negatives included, is returned as is.
func parsePageParam(r *http.Request) (page int, ok bool) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// sessionView returns the page named by ?page=N, or the current page.
func sessionView(r *http.Request) (core.View, error) {
	sess := sessionFrom(r)
	if n, ok := parsePageParam(r); ok {
		return sess.Page(n)
	}
	return sess.View()
}

// parseColumn reads the {col} route parameter.
func parseColumn(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "col")
	col, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", table.ErrIndexOutOfRange, raw)
	}
	return col, nil
}

// decodeJSON reads a size-limited JSON request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("%w: decode body: %v", errInvalidRequest, err)
	}
	return nil
}

// tracksParams converts a session view into template parameters.
func (s *Server) tracksParams(v core.View) templates.TracksParams {
	p := templates.TracksParams{
		Identifier:  v.Identifier,
		Label:       v.Label,
		Fetching:    v.Fetching,
		Loaded:      v.Loaded,
		Rows:        v.Page.Rows,
		Page:        v.Page.Number,
		TotalPages:  v.Page.TotalPages,
		TotalRows:   v.Page.TotalRows,
		FirstRow:    v.Page.FirstRow,
		LastRow:     v.Page.LastRow,
		HasPrevious: v.Page.HasPrevious,
		HasNext:     v.Page.HasNext,
		ExportName:  v.Label,
	}

	p.Columns = make([]templates.Column, len(v.Header))
	for i, name := range v.Header {
		p.Columns[i] = templates.Column{Index: i, Name: name, Indicator: v.Sort.Indicator(i)}
	}

	for _, f := range table.Formats {
		p.Formats = append(p.Formats, templates.ExportFormat{Name: string(f), Label: formatLabels[f]})
	}

	return p
}

// contentDisposition builds an attachment header for filename. A filename
// with no base name, or one the header cannot carry, is replaced by
// DefaultBaseName with the same extension.
func contentDisposition(filename string) string {
	ext := path.Ext(filename)
	if strings.TrimSpace(strings.TrimSuffix(filename, ext)) != "" {
		if d := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); d != "" {
			return d
		}
	}
	return mime.FormatMediaType("attachment", map[string]string{"filename": table.DefaultBaseName + ext})
}

// writeArtifact sends an export as a file download.
func writeArtifact(w http.ResponseWriter, art table.Artifact) {
	disposition := contentDisposition(art.Filename)

	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(art.Data); err != nil {
		slog.Warn("export write failed", "filename", art.Filename, "error", err)
	}
}

// historyItems converts snapshots for the history template.
func historyItems(snaps []core.Snapshot) []templates.HistoryItem {
	items := make([]templates.HistoryItem, len(snaps))
	for i, s := range snaps {
		items[i] = templates.HistoryItem{
			ID:          s.ID,
			Identifier:  s.Identifier,
			SourceLabel: s.SourceLabel,
			RowCount:    s.RowCount,
			FetchedAt:   s.FetchedAt,
		}
	}
	return items
}
