// Package goldmark turns a Markdown document into cell markers: every
// top-level fenced code block is a code cell and the prose between fences is a
// markdown cell. Fences can span any number of lines, so the tokenizer always
// parses the whole file.
package goldmark

import (
	"iter"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/nbcells/pkg/cell"
)

// Flavor identifies the Markdown flavor used for parsing.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Tokenizer finds fenced code cells with goldmark.
type Tokenizer struct {
	flavor string
	md     goldmark.Markdown
}

// New creates a tokenizer for the given flavor. Unknown flavors fall back
// to CommonMark.
func New(flavor string) *Tokenizer {
	f := flavorOrDefault(flavor)
	return &Tokenizer{flavor: f, md: newGoldmarkInstance(f)}
}

// Flavor returns the configured Markdown flavor.
func (t *Tokenizer) Flavor() string {
	return t.flavor
}

// ShouldParseWholeFile is true: an edit can open or close a fence anywhere.
func (t *Tokenizer) ShouldParseWholeFile() bool {
	return true
}

// MarkerSequence parses text and yields its markers. Markdown markers have
// zero length; code markers span the opening fence line.
func (t *Tokenizer) MarkerSequence(text string, ordinalIncrement, offsetIncrement int) iter.Seq2[cell.Marker, error] {
	return func(yield func(cell.Marker, error) bool) {
		for idx, marker := range t.markers([]byte(text)) {
			marker.Ordinal = ordinalIncrement + idx
			marker.Offset += offsetIncrement
			if !yield(marker, nil) {
				return
			}
		}
	}
}

func (t *Tokenizer) markers(src []byte) []cell.Marker {
	reader := text.NewReader(src)
	doc := t.md.Parser().Parse(reader, parser.WithContext(parser.NewContext()))

	var out []cell.Marker
	prose, pending := 0, true
	searchFrom := 0

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		block, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			continue
		}
		open, ok := openingLine(src, block, searchFrom)
		if !ok {
			continue
		}

		if pending && prose < open {
			out = append(out, cell.Marker{Kind: cell.KindMarkdown, Offset: prose})
		}
		openEnd := lineEnd(src, open)
		out = append(out, cell.Marker{
			Kind:   cell.KindCode,
			Offset: open,
			Length: len(strings.TrimSuffix(string(src[open:openEnd]), "\r")),
		})

		closeEnd, closed := closingLine(src, block, open, openEnd)
		if !closed || closeEnd >= len(src) {
			pending = false
			searchFrom = len(src)
			continue
		}
		prose, pending = closeEnd+1, true
		searchFrom = prose
	}

	if pending {
		out = append(out, cell.Marker{Kind: cell.KindMarkdown, Offset: prose})
	}
	return out
}

// openingLine returns the offset of the fence line that opens block.
func openingLine(src []byte, block *ast.FencedCodeBlock, searchFrom int) (int, bool) {
	if block.Info != nil {
		return lineStart(src, block.Info.Segment.Start), true
	}
	if lines := block.Lines(); lines.Len() > 0 {
		first := lineStart(src, lines.At(0).Start)
		if first == 0 {
			return 0, false
		}
		return lineStart(src, first-1), true
	}

	// Empty block without an info string: the first fence line after the
	// previous cell is the opener.
	for pos := searchFrom; pos < len(src); {
		end := lineEnd(src, pos)
		if _, _, _, ok := parseFence(string(src[pos:end])); ok {
			return pos, true
		}
		pos = end + 1
	}
	return 0, false
}

// closingLine returns the end of the closing fence line of block, or false
// when the block runs to the end of the document.
func closingLine(src []byte, block *ast.FencedCodeBlock, open, openEnd int) (int, bool) {
	fenceChar, fenceLen, _, _ := parseFence(string(src[open:openEnd]))

	last := openEnd
	if lines := block.Lines(); lines.Len() > 0 {
		last = lineEnd(src, lines.At(lines.Len()-1).Start)
	}
	if last >= len(src) {
		return last, false
	}

	start := last + 1
	end := lineEnd(src, start)
	if !isClosingFence(string(src[start:end]), fenceChar, fenceLen) {
		return last, false
	}
	return end, true
}

func lineStart(src []byte, pos int) int {
	pos = min(pos, len(src))
	for pos > 0 && src[pos-1] != '\n' {
		pos--
	}
	return pos
}

// lineEnd returns the offset of the line break ending the line at pos, or len(src).
func lineEnd(src []byte, pos int) int {
	for pos < len(src) && src[pos] != '\n' {
		pos++
	}
	return pos
}

// flavorOrDefault returns the flavor if valid, otherwise CommonMark.
func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorCommonMark
	}
}

//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	var opts []goldmark.Option
	if flavor == FlavorGFM {
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	}
	return goldmark.New(opts...)
}
