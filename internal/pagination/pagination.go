// Package pagination resolves page numbers for fixed-size listings.
// Bad input never fails: it degrades to the nearest valid page.
package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// PageSize is the number of posts on every listing page.
const PageSize = 10

// Page is one slice of an ordered result set.
type Page[T any] struct {
	Number             int   `json:"number"`
	NumPages           int   `json:"num_pages"`
	Count              int64 `json:"count"`
	HasNext            bool  `json:"has_next"`
	HasPrevious        bool  `json:"has_previous"`
	NextPageNumber     int   `json:"next_page_number,omitempty"`
	PreviousPageNumber int   `json:"previous_page_number,omitempty"`
	StartIndex         int   `json:"start_index"`
	EndIndex           int   `json:"end_index"`
	Items              []T   `json:"object_list"`
}

// ParseNumber reads the raw ?page= value. Missing or non-numeric input is
// page 1. Integers too large for an int saturate so Clamp picks the last page.
func ParseNumber(raw string) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
			return math.MaxInt
		}
		return 1
	}
	return n
}

// NumPages is never below 1; an empty listing still has one empty page.
func NumPages(count int64, size int) int {
	if size <= 0 {
		size = PageSize
	}
	if count <= 0 {
		return 1
	}
	return int((count + int64(size) - 1) / int64(size))
}

// Clamp moves requested into [1, NumPages(count, size)].
func Clamp(requested int, count int64, size int) int {
	last := NumPages(count, size)
	switch {
	case requested < 1:
		return 1
	case requested > last:
		return last
	}
	return requested
}

// Offset is the row offset of page number.
func Offset(number, size int) int {
	if number < 1 {
		return 0
	}
	return (number - 1) * size
}

// New assembles a page. number must already be clamped.
func New[T any](items []T, number int, count int64, size int) Page[T] {
	if items == nil {
		items = []T{}
	}
	last := NumPages(count, size)
	p := Page[T]{
		Number:      number,
		NumPages:    last,
		Count:       count,
		HasNext:     number < last,
		HasPrevious: number > 1,
		Items:       items,
	}
	if p.HasNext {
		p.NextPageNumber = number + 1
	}
	if p.HasPrevious {
		p.PreviousPageNumber = number - 1
	}
	if count > 0 {
		p.StartIndex = Offset(number, size) + 1
		p.EndIndex = Offset(number, size) + len(items)
	}
	return p
}
