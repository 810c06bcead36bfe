package notebook

import (
	"fmt"
	"strings"
	"sync"

	"github.com/yaklabco/nbcells/pkg/buffer"
	"github.com/yaklabco/nbcells/pkg/cell"
	"github.com/yaklabco/nbcells/pkg/langdetect"
	"github.com/yaklabco/nbcells/pkg/partition"
	"github.com/yaklabco/nbcells/pkg/pointer"
	"github.com/yaklabco/nbcells/pkg/tokenizer/goldmark"
	"github.com/yaklabco/nbcells/pkg/tokenizer/percent"
)

// Document is one open buffer with its partition and pointers.
type Document struct {
	ID       DocumentID
	Path     string
	Buffer   *buffer.Buffer
	Engine   partition.Engine
	Pointers *pointer.Registry

	mu       sync.RWMutex
	detector *langdetect.Detector
}

// Cell is an interval together with its content.
type Cell struct {
	cell.Interval `yaml:",inline"`

	// Language is the fence language, or the detected language of the body
	// for code cells; "markdown" for markdown cells.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// Text is the full text of the cell's lines.
	Text string `json:"text" yaml:"text"`

	// Body is Text without marker and fence lines.
	Body string `json:"body" yaml:"body"`
}

// Replace replaces [start, end) with text.
func (d *Document) Replace(start, end int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.Buffer.Replace(start, end, text); err != nil {
		return fmt.Errorf("replace [%d,%d) in %s: %w", start, end, d.ID, err)
	}
	return nil
}

// ApplyEdits applies a batch of non-overlapping edits.
func (d *Document) ApplyEdits(edits []buffer.TextEdit) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.Buffer.ApplyEdits(edits); err != nil {
		return fmt.Errorf("apply edits to %s: %w", d.ID, err)
	}
	return nil
}

// SetText replaces the whole content.
func (d *Document) SetText(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.Buffer.SetText(text); err != nil {
		return fmt.Errorf("set text of %s: %w", d.ID, err)
	}
	return nil
}

// Text returns the current content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.Buffer.Text()
}

// Cells returns every cell of the current partition with its text.
func (d *Document) Cells() []Cell {
	d.mu.RLock()
	defer d.mu.RUnlock()

	intervals := d.Engine.Intervals()
	cells := make([]Cell, 0, len(intervals))
	for _, iv := range intervals {
		cells = append(cells, d.cellOf(iv))
	}
	return cells
}

// CellAt returns the cell covering line.
func (d *Document) CellAt(line int) (Cell, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	iv, ok := d.Engine.IntervalAtLine(line)
	if !ok {
		return Cell{}, false
	}
	return d.cellOf(iv), true
}

func (d *Document) cellOf(iv cell.Interval) Cell {
	start := d.Buffer.LineStart(iv.Lines.First)
	end := d.Buffer.LineEnd(iv.Lines.Last)
	text := d.Buffer.Slice(start, end)

	lines := strings.Split(text, "\n")
	lang := ""

	if len(lines) > 0 {
		first := lines[0]
		if _, ok := percent.ParseLine(first); ok {
			lines = lines[1:]
		} else if goldmark.IsFence(first) {
			lang, _ = goldmark.Language(first)
			lines = lines[1:]
			if n := len(lines); n > 0 && goldmark.IsFence(lines[n-1]) {
				lines = lines[:n-1]
			}
		}
	}
	body := strings.Join(lines, "\n")

	switch iv.Kind {
	case cell.KindMarkdown:
		lang = "markdown"
	case cell.KindCode:
		if lang == "" && d.detector != nil {
			lang = d.detector.Detect([]byte(body))
		}
	case cell.KindRaw:
	}

	return Cell{Interval: iv, Language: lang, Text: text, Body: body}
}
