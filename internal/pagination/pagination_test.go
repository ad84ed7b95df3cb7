package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw      string
		expected int
	}{
		{"", 1},
		{"3", 3},
		{" 2 ", 2},
		{"abc", 1},
		{"1.5", 1},
		{"-4", -4},
		{"0", 0},
		{"99999999999999999999", math.MaxInt},
		{"+99999999999999999999", math.MaxInt},
		{"-99999999999999999999", 1},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseNumber(tt.raw))
		})
	}
}

func TestClamp_SaturatedNumber(t *testing.T) {
	assert.Equal(t, 3, Clamp(ParseNumber("99999999999999999999"), 25, PageSize))
}

func TestNumPages(t *testing.T) {
	assert.Equal(t, 1, NumPages(0, 10))
	assert.Equal(t, 1, NumPages(10, 10))
	assert.Equal(t, 2, NumPages(11, 10))
	assert.Equal(t, 3, NumPages(25, 10))
	assert.Equal(t, 3, NumPages(25, 0))
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		count     int64
		expected  int
	}{
		{"first page", 1, 25, 1},
		{"last page", 3, 25, 3},
		{"past the end goes to last", 99, 25, 3},
		{"zero goes to first", 0, 25, 1},
		{"negative goes to first", -5, 25, 1},
		{"empty listing", 4, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clamp(tt.requested, tt.count, PageSize))
		})
	}
}

func TestNew(t *testing.T) {
	items := []int{21, 22, 23, 24, 25}
	p := New(items, 3, 25, PageSize)

	assert.Equal(t, 3, p.Number)
	assert.Equal(t, 3, p.NumPages)
	assert.False(t, p.HasNext)
	assert.True(t, p.HasPrevious)
	assert.Equal(t, 2, p.PreviousPageNumber)
	assert.Zero(t, p.NextPageNumber)
	assert.Equal(t, 21, p.StartIndex)
	assert.Equal(t, 25, p.EndIndex)
	assert.Equal(t, items, p.Items)
}

func TestNew_EmptyHasOnePage(t *testing.T) {
	p := New[string](nil, 1, 0, PageSize)

	assert.Equal(t, 1, p.NumPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrevious)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.Zero(t, p.StartIndex)
}
