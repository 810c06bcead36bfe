package cell

import "fmt"

// Marker is a typed boundary token at a specific buffer offset.
// Markers in a cache are sorted by Offset and never overlap.
type Marker struct {
	// Ordinal is the marker's index in its cache.
	Ordinal int

	// Kind is the kind of the cell this marker opens.
	Kind Kind

	// Offset is the byte index where the marker begins.
	Offset int

	// Length is the marker length in bytes. May be zero.
	Length int
}

// End returns the byte index just past the marker.
func (m Marker) End() int {
	return m.Offset + m.Length
}

// Shift returns a copy of the marker moved by the given ordinal and offset deltas.
func (m Marker) Shift(ordinalDelta, offsetDelta int) Marker {
	m.Ordinal += ordinalDelta
	m.Offset += offsetDelta
	return m
}

func (m Marker) String() string {
	return fmt.Sprintf("#%d %s [%d+%d]", m.Ordinal, m.Kind, m.Offset, m.Length)
}
