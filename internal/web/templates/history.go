package templates

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"
)

// HistoryItem is one recorded fetch.
type HistoryItem struct {
	ID          string
	Identifier  string
	SourceLabel string
	RowCount    int
	FetchedAt   time.Time
}

// HistoryPage lists recent fetches with a button to reload each one.
func HistoryPage(items []HistoryItem) templ.Component {
	return Layout("Fetch history", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}

		hw.raw(`<h1>Fetch history</h1>`)
		if len(items) == 0 {
			hw.raw(`<p class="muted">Nothing fetched yet.</p>`)
			return hw.err
		}

		hw.raw(`<table><thead><tr><th>Artist</th><th>Link</th><th>Rows</th><th>Fetched</th><th></th></tr></thead><tbody>`)
		for _, it := range items {
			hw.printf(`<tr><td>%s</td><td class="muted">%s</td><td>%d</td><td>%s</td>`,
				templ.EscapeString(it.SourceLabel),
				templ.EscapeString(it.Identifier),
				it.RowCount,
				it.FetchedAt.UTC().Format("2006-01-02 15:04 UTC"),
			)
			hw.printf(`<td><form method="post" action="/history/%s/load" class="inline"><button type="submit">Load</button></form></td></tr>`,
				templ.EscapeString(it.ID))
		}
		hw.raw(`</tbody></table>`)

		return hw.err
	}))
}
