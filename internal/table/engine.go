package table

// Engine owns one current table plus its sort and pagination state. Every
// transform replaces the table wholesale; a failed transform leaves the last
// good state untouched.
//
// An Engine is not safe for concurrent use. Callers that share one across
// goroutines must serialize access.
type Engine struct {
	pageSize int
	label    string
	current  *Table
	sort     SortState
	page     int
}

// NewEngine returns an empty engine that shows pageSize rows per page.
// A non-positive pageSize falls back to DefaultPageSize.
func NewEngine(pageSize int) *Engine {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Engine{pageSize: pageSize, page: 1}
}

// Load parses raw and, on success, replaces the current table, clears the
// sort state and returns to page 1. label is the source name used as the
// default export filename.
func (e *Engine) Load(label, raw string) error {
	t, err := Parse(raw)
	if err != nil {
		return err
	}
	e.Replace(label, t)
	return nil
}

// Replace installs an already parsed table, resetting sort and page.
func (e *Engine) Replace(label string, t *Table) {
	e.label = label
	e.current = t
	e.sort = SortState{}
	e.page = 1
}

// Loaded reports whether a table is present.
func (e *Engine) Loaded() bool {
	return e.current != nil
}

// Table returns the current table, or nil before the first load.
func (e *Engine) Table() *Table {
	return e.current
}

// Label returns the source label of the current table.
func (e *Engine) Label() string {
	return e.label
}

// Sort returns the current sort state.
func (e *Engine) Sort() SortState {
	return e.sort
}

// PageSize returns the fixed number of rows per page.
func (e *Engine) PageSize() int {
	return e.pageSize
}

// SortBy sorts the current table by col, toggling direction when col is
// already the active sort column. The current page is kept and re-clamped.
func (e *Engine) SortBy(col int) error {
	if e.current == nil {
		return ErrNoTable
	}
	next := e.sort.Next(col)
	sorted, err := Sort(e.current, next.Column, next.Ascending)
	if err != nil {
		return err
	}
	e.current = sorted
	e.sort = next
	return nil
}

// SetPage moves to page n, clamped to the valid range, and returns the view.
func (e *Engine) SetPage(n int) (Page, error) {
	if e.current == nil {
		return Page{}, ErrNoTable
	}
	e.page = ClampPage(n, TotalPages(e.current.NumRows(), e.pageSize))
	return e.View()
}

// NextPage advances one page, stopping at the last.
func (e *Engine) NextPage() (Page, error) {
	return e.SetPage(e.page + 1)
}

// PreviousPage goes back one page, stopping at the first.
func (e *Engine) PreviousPage() (Page, error) {
	return e.SetPage(e.page - 1)
}

// View returns the current page of the current (sorted) table.
func (e *Engine) View() (Page, error) {
	if e.current == nil {
		return Page{}, ErrNoTable
	}
	p, err := Paginate(e.current, e.pageSize, e.page)
	if err != nil {
		return Page{}, err
	}
	e.page = p.Number
	return p, nil
}

// Export serializes the full current table. A blank name falls back to the
// source label, then to DefaultBaseName.
func (e *Engine) Export(f Format, name string) (Artifact, error) {
	if e.current == nil {
		return Artifact{}, ErrNoTable
	}
	return Export(e.current, f, ResolveBaseName(name, e.label))
}
