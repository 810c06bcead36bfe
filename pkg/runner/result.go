package runner

import (
	"github.com/yaklabco/nbcells/pkg/notebook"
	"github.com/yaklabco/nbcells/pkg/partition"
)

// FileOutcome is the partition of one file.
type FileOutcome struct {
	// Path is relative to the working directory when possible.
	Path string

	Stamp      uint64
	Cells      []notebook.Cell
	Violations []partition.Violation

	// Error is set if the file could not be read or partitioned.
	Error error
}

// Stats aggregates a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int
	FilesErrored    int
	Cells           int
	CellsByKind     map[string]int
	Violations      int
}

// Result is the outcome of a run, ordered by path.
type Result struct {
	Files []FileOutcome
	Stats Stats
}

// HasErrors reports whether any file failed or broke an integrity check.
func (r *Result) HasErrors() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0 || r.Stats.Violations > 0
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}

	r.Stats.FilesProcessed++
	r.Stats.Cells += len(outcome.Cells)
	r.Stats.Violations += len(outcome.Violations)
	for _, c := range outcome.Cells {
		r.Stats.CellsByKind[c.Kind.String()]++
	}
}
