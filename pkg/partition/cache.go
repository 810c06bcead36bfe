package partition

import (
	"slices"
	"sort"

	"github.com/yaklabco/nbcells/pkg/cell"
)

// DefaultSearchThreshold is the marker count above which cache lookups switch
// from a linear scan to binary search.
const DefaultSearchThreshold = 32

// markerCache is the ordered, index-addressable marker list of a buffer.
type markerCache struct {
	markers         []cell.Marker
	searchThreshold int
}

// search returns the first index whose marker satisfies pred, or len(markers).
// pred must be monotone over the cache.
func (c *markerCache) search(pred func(cell.Marker) bool) int {
	if len(c.markers) > c.searchThreshold {
		return sort.Search(len(c.markers), func(i int) bool {
			return pred(c.markers[i])
		})
	}
	for idx, marker := range c.markers {
		if pred(marker) {
			return idx
		}
	}
	return len(c.markers)
}

// firstAtOrAfter returns the index of the first marker with Offset >= offset.
func (c *markerCache) firstAtOrAfter(offset int) int {
	return c.search(func(m cell.Marker) bool { return m.Offset >= offset })
}

// firstAfter returns the index of the first marker with Offset > offset.
func (c *markerCache) firstAfter(offset int) int {
	return c.search(func(m cell.Marker) bool { return m.Offset > offset })
}

// splice replaces markers [from, to) with repl.
func (c *markerCache) splice(from, to int, repl []cell.Marker) {
	c.markers = slices.Replace(c.markers, from, to, repl...)
}

// shiftFrom moves every marker from index from onward by offsetDelta and
// renumbers it to its index.
func (c *markerCache) shiftFrom(from, offsetDelta int) {
	for idx := from; idx < len(c.markers); idx++ {
		c.markers[idx].Offset += offsetDelta
		c.markers[idx].Ordinal = idx
	}
}

// firstDifference returns the first index at which old and fresh differ,
// or -1 when they are identical.
func firstDifference(old, fresh []cell.Marker) int {
	n := min(len(old), len(fresh))
	for idx := range n {
		if old[idx] != fresh[idx] {
			return idx
		}
	}
	if len(old) != len(fresh) {
		return n
	}
	return -1
}
