package partition

import "github.com/yaklabco/nbcells/pkg/cell"

// syntheticOrdinal marks boundary markers that exist only to frame the
// first and last interval; they never enter the cache.
const syntheticOrdinal = -1

// needsStartMarker reports whether no real marker sits at offset 0,
// in which case the first interval is opened by a synthetic code marker.
func needsStartMarker(markers []cell.Marker) bool {
	return len(markers) == 0 || markers[0].Offset != 0
}

func startMarker() cell.Marker {
	return cell.Marker{Ordinal: syntheticOrdinal, Kind: cell.KindCode}
}

// endMarker sits one past the buffer end so the last interval reaches the last line.
func endMarker(docLen int) cell.Marker {
	return cell.Marker{Ordinal: syntheticOrdinal, Kind: cell.KindCode, Offset: docLen + 1}
}

// frame returns markers with the synthetic start and end markers added.
func frame(markers []cell.Marker, docLen int) []cell.Marker {
	adjusted := make([]cell.Marker, 0, len(markers)+2)
	if needsStartMarker(markers) {
		adjusted = append(adjusted, startMarker())
	}
	adjusted = append(adjusted, markers...)
	return append(adjusted, endMarker(docLen))
}

// adjustedAt returns element idx of frame(markers, docLen) without building it.
func adjustedAt(markers []cell.Marker, docLen, idx int) cell.Marker {
	if needsStartMarker(markers) {
		if idx == 0 {
			return startMarker()
		}
		idx--
	}
	if idx < len(markers) {
		return markers[idx]
	}
	return endMarker(docLen)
}

// buildIntervals pairs each adjusted marker with its successor. An interval
// takes the kind of its opening marker and spans from the opening marker's
// line to the line before the next marker.
func buildIntervals(doc Document, adjusted []cell.Marker, firstOrdinal int) []cell.Interval {
	if len(adjusted) < 2 {
		return nil
	}

	intervals := make([]cell.Interval, 0, len(adjusted)-1)
	for idx := 0; idx+1 < len(adjusted); idx++ {
		opening, closing := adjusted[idx], adjusted[idx+1]
		intervals = append(intervals, cell.Interval{
			Ordinal: firstOrdinal + idx,
			Kind:    opening.Kind,
			Lines: cell.LineRange{
				First: doc.LineOf(opening.Offset),
				Last:  doc.LineOf(max(0, closing.Offset-1)),
			},
		})
	}
	return intervals
}

// buildAll computes the complete interval list for markers.
func buildAll(doc Document, markers []cell.Marker) []cell.Interval {
	return buildIntervals(doc, frame(markers, doc.Len()), 0)
}
