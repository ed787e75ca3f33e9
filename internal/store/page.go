package store

// Sort orders accepted by list operations.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// PageParams describes the slice of a result set a list operation returns.
// Page is 1-based; Limit is the maximum number of items per page.
type PageParams struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip for this page.
func (p PageParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Page bundles one page of results with the total number of matching rows.
type Page[T any] struct {
	Items []T
	Total int
}
