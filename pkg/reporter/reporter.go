// Package reporter writes the cell partition of documents in the
// supported output formats.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/nbcells/pkg/notebook"
)

// Document is the report for one partitioned file.
type Document struct {
	Path  string
	Stamp uint64
	Cells []notebook.Cell
}

// Reporter formats and writes partitions.
type Reporter interface {
	// Report writes formatted output for the given documents.
	Report(ctx context.Context, docs []Document) error
}

// FromDocument snapshots an open document for reporting.
func FromDocument(doc *notebook.Document) Document {
	return Document{
		Path:  doc.Path,
		Stamp: doc.Engine.ModificationStamp(),
		Cells: doc.Cells(),
	}
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = FormatTable
	}

	switch format {
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatYAML:
		return NewYAMLReporter(opts), nil
	case FormatTable:
		return NewTableReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
