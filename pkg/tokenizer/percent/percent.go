// Package percent recognizes "percent format" cell markers: comment lines
// such as "# %%" or "# %% [markdown]" that open a new cell in a plain script.
package percent

import (
	"iter"
	"strings"

	"github.com/yaklabco/nbcells/pkg/cell"
)

// Prefixes that open a cell when they start a line.
var prefixes = []string{"# %%", "#%%"}

// Tokenizer yields one marker per cell-opening line. It is stateless and
// can lex any window of lines independently.
type Tokenizer struct{}

// New returns a percent-format tokenizer.
func New() *Tokenizer {
	return &Tokenizer{}
}

// ShouldParseWholeFile is false: markers depend only on their own line.
func (t *Tokenizer) ShouldParseWholeFile() bool {
	return false
}

// MarkerSequence yields the markers of text, shifted by the given increments.
// A marker spans its line without the line break.
func (t *Tokenizer) MarkerSequence(text string, ordinalIncrement, offsetIncrement int) iter.Seq2[cell.Marker, error] {
	return func(yield func(cell.Marker, error) bool) {
		ordinal := ordinalIncrement
		for start := 0; start < len(text); {
			end := strings.IndexByte(text[start:], '\n')
			next := start + end + 1
			if end < 0 {
				end = len(text) - start
				next = len(text)
			}
			line := strings.TrimSuffix(text[start:start+end], "\r")

			if kind, ok := ParseLine(line); ok {
				marker := cell.Marker{
					Ordinal: ordinal,
					Kind:    kind,
					Offset:  offsetIncrement + start,
					Length:  len(line),
				}
				if !yield(marker, nil) {
					return
				}
				ordinal++
			}
			start = next
		}
	}
}

// ParseLine reports whether line opens a cell and which kind it opens.
func ParseLine(line string) (cell.Kind, bool) {
	for _, prefix := range prefixes {
		rest, ok := strings.CutPrefix(line, prefix)
		if !ok {
			continue
		}
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			return 0, false
		}
		return kindOf(strings.TrimSpace(rest)), true
	}
	return 0, false
}

func kindOf(rest string) cell.Kind {
	tag, _, _ := strings.Cut(rest, " ")
	switch strings.ToLower(tag) {
	case "[markdown]", "[md]":
		return cell.KindMarkdown
	case "[raw]":
		return cell.KindRaw
	default:
		return cell.KindCode
	}
}
