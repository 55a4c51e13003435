package models

// Page of listed items
type Page[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int
}

// Pages returns the number of pages needed to show Total items
func (p Page[T]) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	// Deeper pages are never served, so the offset always fits int
	MaxPage = 100_000
)

// Paginate applies listing defaults: page is in 1..MaxPage, limit is DefaultPageLimit and at most MaxPageLimit
func Paginate(page int, limit int) (int, int) {
	page = min(max(page, 1), MaxPage)
	switch {
	case limit < 1:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return page, limit
}

// Offset of the first item of the page
func Offset(page int, limit int) int {
	return (page - 1) * limit
}
