package partition

import (
	"iter"

	"github.com/yaklabco/nbcells/pkg/cell"
)

// Source produces the marker stream of a text. Implementations live with the
// tokenizers; the engines only consume this contract.
type Source interface {
	// MarkerSequence yields the markers found in text in strictly increasing
	// offset order. Every yielded marker has offsetIncrement added to its offset
	// and ordinalIncrement added to its ordinal. Calling it twice with the same
	// arguments yields the same markers. Markers start at line starts.
	MarkerSequence(text string, ordinalIncrement, offsetIncrement int) iter.Seq2[cell.Marker, error]

	// ShouldParseWholeFile reports that the source cannot be run over a window
	// of the text, forcing a full re-lex on every edit.
	ShouldParseWholeFile() bool
}

// Document is the read view of the host buffer the engines need.
// *buffer.Buffer implements it.
type Document interface {
	Len() int
	LineCount() int
	LineOf(offset int) int
	LineStart(line int) int
	LineEnd(line int) int
	Slice(start, end int) string
}

// collectMarkers drains a marker sequence. Tokenizer errors are returned unchanged.
func collectMarkers(src Source, text string, ordinalIncrement, offsetIncrement int) ([]cell.Marker, error) {
	var markers []cell.Marker
	for marker, err := range src.MarkerSequence(text, ordinalIncrement, offsetIncrement) {
		if err != nil {
			return nil, err
		}
		markers = append(markers, marker)
	}
	return markers, nil
}
