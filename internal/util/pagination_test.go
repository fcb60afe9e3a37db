package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		page, size  int
		offset, lim int
	}{
		{name: "first page", page: 1, size: 8, offset: 0, lim: 8},
		{name: "third page", page: 3, size: 3, offset: 6, lim: 3},
		{name: "zero page", page: 0, size: 3, offset: 0, lim: 3},
		{name: "bad size", page: 2, size: 0, offset: 8, lim: ProductPageSize},
		{name: "too big", page: 1, size: 1000, offset: 0, lim: ProductPageSize},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			offset, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.lim, limit)
		})
	}
}

func TestNewMeta(t *testing.T) {
	t.Parallel()

	m := NewMeta(2, 8, 17)
	assert.Equal(t, int64(3), m.TotalPages)
	assert.True(t, m.HasPrev)
	assert.True(t, m.HasNext)

	m = NewMeta(3, 8, 17)
	assert.False(t, m.HasNext)
}

func TestParse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 4, ParseIntDefault("4", 1))
	assert.Equal(t, 1, ParseIntDefault("x", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))

	id, ok := ParseUint("12")
	assert.True(t, ok)
	assert.Equal(t, uint(12), id)
	_, ok = ParseUint("0")
	assert.False(t, ok)
	_, ok = ParseUint("-3")
	assert.False(t, ok)
}
