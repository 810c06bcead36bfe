package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/nbcells/pkg/cell"
)

// outputVersion is the schema version of structured output.
const outputVersion = "1.0.0"

// Output is the top-level structure of JSON and YAML output.
type Output struct {
	Version   string           `json:"version" yaml:"version"`
	Documents []DocumentOutput `json:"documents" yaml:"documents"`
}

// DocumentOutput represents a single document's partition.
type DocumentOutput struct {
	Path  string       `json:"path" yaml:"path"`
	Stamp uint64       `json:"stamp" yaml:"stamp"`
	Cells []CellOutput `json:"cells" yaml:"cells"`
}

// CellOutput represents a single cell.
type CellOutput struct {
	Ordinal  int    `json:"ordinal" yaml:"ordinal"`
	Kind     string `json:"kind" yaml:"kind"`
	First    int    `json:"firstLine" yaml:"first_line"`
	Last     int    `json:"lastLine" yaml:"last_line"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`
}

// JSONReporter formats partitions as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, docs []Document) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(buildOutput(docs, r.opts.IncludeText)); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	return nil
}

func buildOutput(docs []Document, includeText bool) *Output {
	output := &Output{
		Version:   outputVersion,
		Documents: make([]DocumentOutput, 0, len(docs)),
	}

	for _, doc := range docs {
		docOut := DocumentOutput{
			Path:  doc.Path,
			Stamp: doc.Stamp,
			Cells: make([]CellOutput, 0, len(doc.Cells)),
		}

		for _, c := range doc.Cells {
			cellOut := CellOutput{
				Ordinal:  c.Ordinal,
				Kind:     c.Kind.String(),
				First:    c.Lines.First,
				Last:     c.Lines.Last,
				Language: c.Language,
			}
			if includeText {
				cellOut.Text = c.Text
			}
			docOut.Cells = append(docOut.Cells, cellOut)
		}

		output.Documents = append(output.Documents, docOut)
	}

	return output
}

// Intervals converts output cells back to intervals.
func (d DocumentOutput) Intervals() ([]cell.Interval, error) {
	intervals := make([]cell.Interval, 0, len(d.Cells))
	for _, c := range d.Cells {
		kind, err := cell.ParseKind(c.Kind)
		if err != nil {
			return nil, err
		}
		intervals = append(intervals, cell.Interval{
			Ordinal: c.Ordinal,
			Kind:    kind,
			Lines:   cell.LineRange{First: c.First, Last: c.Last},
		})
	}
	return intervals, nil
}
