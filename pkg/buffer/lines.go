package buffer

import (
	"slices"
	"sort"
)

// buildLineStarts returns the start offset of every line in text.
// There is always at least one line; a trailing newline opens an empty last line.
func buildLineStarts(text string) []int {
	lines := []int{0}
	for idx := 0; idx < len(text); idx++ {
		if text[idx] == '\n' {
			lines = append(lines, idx+1)
		}
	}
	return lines
}

// spliceLineStarts updates the line index for an edit that touched lines
// [firstLine, lastLine] of the pre-edit text. Lines before firstLine are kept,
// line starts inside the inserted text are added, later lines are shifted.
func spliceLineStarts(lines []int, firstLine, lastLine int, e Event) []int {
	var inserted []int
	for idx := 0; idx < len(e.NewText); idx++ {
		if e.NewText[idx] == '\n' {
			inserted = append(inserted, e.Offset+idx+1)
		}
	}

	delta := e.Delta()
	tail := lines[lastLine+1:]
	for i := range tail {
		tail[i] += delta
	}

	return slices.Replace(lines, firstLine+1, lastLine+1, inserted...)
}

// LineCount returns the number of lines. It is never less than one.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// LineOf returns the zero-based line containing offset.
// Offsets past the end map to the last line.
func (b *Buffer) LineOf(offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset >= len(b.text) {
		return len(b.lines) - 1
	}

	idx := sort.Search(len(b.lines), func(i int) bool {
		return b.lines[i] > offset
	})
	return idx - 1
}

// LineStart returns the offset of the first byte of line.
func (b *Buffer) LineStart(line int) int {
	line = max(0, min(line, len(b.lines)-1))
	return b.lines[line]
}

// LineEnd returns the offset of the newline terminating line,
// or the buffer length for the last line.
func (b *Buffer) LineEnd(line int) int {
	line = max(0, line)
	if line+1 < len(b.lines) {
		return b.lines[line+1] - 1
	}
	return len(b.text)
}

// Line returns the content of line without its newline.
func (b *Buffer) Line(line int) string {
	if line < 0 || line >= len(b.lines) {
		return ""
	}
	return b.text[b.LineStart(line):b.LineEnd(line)]
}
