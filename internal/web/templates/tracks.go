package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Column is one header cell with its sort indicator.
type Column struct {
	Index     int
	Name      string
	Indicator string
}

// ExportFormat is one download button.
type ExportFormat struct {
	Name  string
	Label string
}

// TracksParams is everything the main page shows.
type TracksParams struct {
	Alert       *Alert
	Identifier  string
	Label       string
	Fetching    bool
	Loaded      bool
	Columns     []Column
	Rows        [][]string
	Page        int
	TotalPages  int
	TotalRows   int
	FirstRow    int
	LastRow     int
	HasPrevious bool
	HasNext     bool
	Formats     []ExportFormat
	ExportName  string
}

// TracksPage is the main view: fetch form, export controls, sortable table
// and pager.
func TracksPage(p TracksParams) templ.Component {
	title := "Track Export"
	if p.Label != "" {
		title = p.Label + " | Track Export"
	}
	return Layout(title, tracksBody(p))
}

func tracksBody(p TracksParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}

		hw.raw(`<h1>Track Export</h1>`)
		if p.Alert != nil {
			if err := ErrorAlert(*p.Alert).Render(ctx, w); err != nil {
				return err
			}
		}

		hw.raw(`<div class="card"><form method="post" action="/fetch" class="row">`)
		hw.printf(`<input type="url" name="artistUrl" placeholder="https://open.spotify.com/artist/..." value="%s" required>`,
			templ.EscapeString(p.Identifier))
		if p.Fetching {
			hw.raw(`<button type="submit" disabled>Fetching...</button>`)
		} else {
			hw.raw(`<button type="submit">Fetch tracks</button>`)
		}
		hw.raw(`</form></div>`)

		if !p.Loaded {
			hw.raw(`<p class="muted">No table loaded. Paste an artist link to fetch tracks.</p>`)
			return hw.err
		}

		writeExportForm(hw, p)
		writeTable(hw, p)
		writePager(hw, p)

		return hw.err
	})
}

func writeExportForm(hw *htmlWriter, p TracksParams) {
	if len(p.Formats) == 0 {
		return
	}
	hw.printf(`<div class="card"><form method="get" action="/export/%s" class="row">`,
		templ.EscapeString(p.Formats[0].Name))
	hw.printf(`<label>File name <input type="text" name="name" value="%s" placeholder="spotify_tracks"></label>`,
		templ.EscapeString(p.ExportName))
	for _, f := range p.Formats {
		hw.printf(`<button type="submit" formaction="/export/%s">%s</button>`,
			templ.EscapeString(f.Name), templ.EscapeString(f.Label))
	}
	hw.raw(`</form></div>`)
}

func writeTable(hw *htmlWriter, p TracksParams) {
	hw.raw(`<table><thead><tr>`)
	for _, c := range p.Columns {
		hw.printf(`<th><form method="post" action="/sort/%d" class="inline"><button type="submit" class="link" title="Sort by %s">%s %s</button></form></th>`,
			c.Index, templ.EscapeString(c.Name), templ.EscapeString(c.Name), templ.EscapeString(c.Indicator))
	}
	hw.raw(`</tr></thead><tbody>`)
	for _, row := range p.Rows {
		hw.raw(`<tr>`)
		for _, cell := range row {
			hw.printf(`<td>%s</td>`, templ.EscapeString(cell))
		}
		hw.raw(`</tr>`)
	}
	hw.raw(`</tbody></table>`)
}

func writePager(hw *htmlWriter, p TracksParams) {
	hw.raw(`<div class="row" style="margin-top:12px">`)
	if p.HasPrevious {
		hw.printf(`<a href="/?page=%d">Previous</a>`, p.Page-1)
	} else {
		hw.raw(`<button type="button" disabled>Previous</button>`)
	}
	hw.printf(`<span>Page %d of %d</span>`, p.Page, p.TotalPages)
	if p.HasNext {
		hw.printf(`<a href="/?page=%d">Next</a>`, p.Page+1)
	} else {
		hw.raw(`<button type="button" disabled>Next</button>`)
	}
	if p.TotalRows > 0 {
		hw.printf(`<span class="muted">Rows %d-%d of %d</span>`, p.FirstRow, p.LastRow, p.TotalRows)
	} else {
		hw.raw(`<span class="muted">No data rows</span>`)
	}
	hw.raw(`</div>`)
}
