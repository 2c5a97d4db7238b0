package table

// DefaultPageSize is the number of data rows shown per page.
const DefaultPageSize = 10

// Page is one window of data rows together with its position metadata.
type Page struct {
	Number      int        `json:"page"`
	Size        int        `json:"page_size"`
	TotalPages  int        `json:"total_pages"`
	TotalRows   int        `json:"total_rows"`
	FirstRow    int        `json:"first_row"`
	LastRow     int        `json:"last_row"`
	HasPrevious bool       `json:"has_previous"`
	HasNext     bool       `json:"has_next"`
	Rows        [][]string `json:"rows"`
}

// TotalPages returns ceil(rows/pageSize), or 1 when there are no rows.
func TotalPages(rows, pageSize int) int {
	if rows <= 0 || pageSize <= 0 {
		return 1
	}
	pages := rows / pageSize
	if rows%pageSize > 0 {
		pages++
	}
	return pages
}

// ClampPage limits page to [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Paginate returns the data rows of the requested page. Out-of-range page
// numbers are clamped rather than rejected. The header is never included.
func Paginate(t *Table, pageSize, page int) (Page, error) {
	if pageSize <= 0 {
		return Page{}, ErrInvalidPageSize
	}

	total := t.NumRows()
	totalPages := TotalPages(total, pageSize)
	page = ClampPage(page, totalPages)

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	p := Page{
		Number:      page,
		Size:        pageSize,
		TotalPages:  totalPages,
		TotalRows:   total,
		HasPrevious: page > 1,
		HasNext:     page < totalPages,
		Rows:        [][]string{},
	}
	if start < end {
		p.Rows = cloneRows(t.rows[start:end])
		p.FirstRow = start + 1
		p.LastRow = end
	}
	return p, nil
}
