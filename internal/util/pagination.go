package util

import "strconv"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Calculate turns a 1-based page and a size into an offset and limit.
// Out of range values fall back to page 1 and DefaultPageSize.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	from = (page - 1) * size
	return from, size
}

type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

func NewPage[T any](items []T, total int64, from, limit int) Page[T] {
	return Page[T]{Items: items, Total: total, Page: from/limit + 1, Size: limit}
}

func ParseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Meta is the pagination block rendered next to a page of items.
func (p Page[T]) Meta() map[string]any {
	totalPages := int64(0)
	if p.Size > 0 {
		totalPages = (p.Total + int64(p.Size) - 1) / int64(p.Size)
	}
	return map[string]any{
		"page":        p.Page,
		"size":        p.Size,
		"total":       p.Total,
		"total_pages": totalPages,
		"has_prev":    p.Page > 1,
		"has_next":    int64(p.Page*p.Size) < p.Total,
	}
}
