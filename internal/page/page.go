// Package page slices ordered sequences into fixed-size pages.
package page

// Info describes one page of an ordered sequence. Start and End are slice
// bounds into the original sequence (items[Start:End]).
type Info struct {
	Index      int // clamped, zero-based
	TotalPages int
	Start      int
	End        int
	HasPrev    bool
	HasNext    bool
}

// Slice computes the page of a sequence of the given length. The requested
// index is clamped to [0, totalPages-1]. Returns false when the sequence is
// empty; callers render a "no items" reply instead of page math.
func Slice(length, size, requested int) (Info, bool) {
	if length <= 0 || size <= 0 {
		return Info{}, false
	}

	totalPages := (length + size - 1) / size
	index := requested
	if index < 0 {
		index = 0
	}
	if index > totalPages-1 {
		index = totalPages - 1
	}

	start := index * size
	end := start + size
	if end > length {
		end = length
	}

	return Info{
		Index:      index,
		TotalPages: totalPages,
		Start:      start,
		End:        end,
		HasPrev:    index > 0,
		HasNext:    index < totalPages-1,
	}, true
}
