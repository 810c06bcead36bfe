package cell

import "fmt"

// LineRange is an inclusive range of zero-based line numbers.
type LineRange struct {
	First int `json:"first" yaml:"first"`
	Last  int `json:"last" yaml:"last"`
}

// Count returns the number of lines in the range.
func (r LineRange) Count() int {
	return r.Last - r.First + 1
}

// Contains reports whether line falls within the range.
func (r LineRange) Contains(line int) bool {
	return line >= r.First && line <= r.Last
}

// Intersects reports whether the two ranges share at least one line.
func (r LineRange) Intersects(other LineRange) bool {
	return r.First <= other.Last && other.First <= r.Last
}

// Shift returns the range moved by delta lines.
func (r LineRange) Shift(delta int) LineRange {
	return LineRange{First: r.First + delta, Last: r.Last + delta}
}

func (r LineRange) String() string {
	return fmt.Sprintf("%d..%d", r.First, r.Last)
}

// Interval is one cell: a contiguous, non-empty, typed run of lines.
type Interval struct {
	Ordinal int       `json:"ordinal" yaml:"ordinal"`
	Kind    Kind      `json:"kind" yaml:"kind"`
	Lines   LineRange `json:"lines" yaml:"lines"`
}

// Shift returns a copy of the interval renumbered by ordinalDelta and moved by lineDelta lines.
func (iv Interval) Shift(ordinalDelta, lineDelta int) Interval {
	iv.Ordinal += ordinalDelta
	iv.Lines = iv.Lines.Shift(lineDelta)
	return iv
}

// SameShape reports whether two intervals have the same kind and line count,
// regardless of where they sit in the buffer.
func (iv Interval) SameShape(other Interval) bool {
	return iv.Kind == other.Kind && iv.Lines.Count() == other.Lines.Count()
}

func (iv Interval) String() string {
	return fmt.Sprintf("#%d %s %s", iv.Ordinal, iv.Kind, iv.Lines)
}
