package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page, size, from, limit int
	}{
		{page: 1, size: 10, from: 0, limit: 10},
		{page: 3, size: 20, from: 40, limit: 20},
		{page: 0, size: 0, from: 0, limit: DefaultPageSize},
		{page: 2, size: 500, from: DefaultPageSize, limit: DefaultPageSize},
	}
	for _, tc := range tests {
		from, limit := Calculate(tc.page, tc.size)
		assert.Equal(t, tc.from, from)
		assert.Equal(t, tc.limit, limit)
	}
}

func TestNewPage(t *testing.T) {
	t.Parallel()

	p := NewPage([]int{1, 2}, 12, 10, 10)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 10, p.Size)
	assert.EqualValues(t, 12, p.Total)
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, ParseIntDefault("3", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))
	assert.Equal(t, 1, ParseIntDefault("x", 1))
}

func TestPageMeta(t *testing.T) {
	t.Parallel()

	m := NewPage([]int{1}, 21, 10, 10).Meta()
	assert.EqualValues(t, 3, m["total_pages"])
	assert.Equal(t, true, m["has_prev"])
	assert.Equal(t, true, m["has_next"])
}
