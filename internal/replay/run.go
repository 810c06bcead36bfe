package replay

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/nbcells/internal/logging"
	"github.com/yaklabco/nbcells/pkg/buffer"
	"github.com/yaklabco/nbcells/pkg/cell"
	"github.com/yaklabco/nbcells/pkg/config"
	"github.com/yaklabco/nbcells/pkg/notebook"
	"github.com/yaklabco/nbcells/pkg/partition"
)

// Options configures a replay run.
type Options struct {
	// Config selects tokenizer, engine and integrity settings. Nil uses defaults.
	Config *config.Config

	// Path picks the tokenizer when the configured tokenizer is auto.
	Path string

	// Text is the initial document content.
	Text string

	// Verify runs the other engine over the same edits and compares partitions.
	Verify bool

	Logger *log.Logger

	// OnStep is called after each step, in order.
	OnStep func(StepResult)
}

// StepResult records one applied step.
type StepResult struct {
	// Index is the 1-based step number.
	Index int

	Edits   []buffer.TextEdit
	Changes []partition.Change

	// Violations holds integrity failures found after the step.
	Violations []partition.Violation

	// Divergence is set in verify mode when the engines disagree.
	Divergence *Divergence
}

// Failed reports whether the step broke an invariant or diverged.
func (r StepResult) Failed() bool {
	return len(r.Violations) > 0 || r.Divergence != nil
}

// Divergence holds the interval dumps of both engines after a step.
type Divergence struct {
	Engine   config.EngineName
	Expected string
	Shadow   config.EngineName
	Actual   string
}

// Result summarizes a replay run.
type Result struct {
	Steps    []StepResult
	Changes  int
	Failures int
	Stamp    uint64
	Text     string
	Cells    []notebook.Cell
}

// Failed reports whether any step failed.
func (r *Result) Failed() bool {
	return r.Failures > 0
}

// Run opens a document with opts.Text and applies every step of script.
// An edit the buffer rejects stops the run; the partial result is returned
// with the error.
func Run(ctx context.Context, script *Script, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	logger := logging.OrDiscard(opts.Logger)

	doc, err := notebook.NewWorkspace(cfg, logger).Open(notebook.OpenOptions{Path: opts.Path, Text: opts.Text})
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	var shadow *notebook.Document
	shadowCfg := cfg.Clone()
	if opts.Verify {
		shadowCfg.Engine = otherEngine(cfg.Engine)
		shadow, err = notebook.NewWorkspace(shadowCfg, logger).Open(notebook.OpenOptions{Path: opts.Path, Text: opts.Text})
		if err != nil {
			return nil, fmt.Errorf("open %s shadow: %w", shadowCfg.Engine, err)
		}
	}

	var pending []partition.Change
	doc.Engine.AddListener(partition.ListenerFunc(func(change partition.Change) {
		change.Old = slices.Clone(change.Old)
		change.New = slices.Clone(change.New)
		change.Current = nil
		pending = append(pending, change)
	}))

	result := &Result{}
	defer func() {
		result.Stamp = doc.Engine.ModificationStamp()
		result.Text = doc.Text()
		result.Cells = doc.Cells()
	}()

	for i, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("replay cancelled: %w", err)
		}

		stepResult := StepResult{Index: i + 1, Edits: step.Edits(len(doc.Text()))}
		stepLogger := logger.With(logging.FieldStep, stepResult.Index)

		pending = nil
		if err := step.Apply(doc); err != nil {
			return result, fmt.Errorf("step %d: %w", stepResult.Index, err)
		}
		stepResult.Changes = pending

		stepResult.Violations = doc.Engine.Verify()

		if shadow != nil {
			if err := step.Apply(shadow); err != nil {
				return result, fmt.Errorf("step %d (%s): %w", stepResult.Index, shadowCfg.Engine, err)
			}
			stepResult.Divergence = compare(doc, shadow, engineName(cfg.Engine), shadowCfg.Engine)
		}

		result.Changes += len(stepResult.Changes)
		if stepResult.Failed() {
			result.Failures++
			stepLogger.Error("step failed",
				logging.FieldViolations, len(stepResult.Violations),
				"diverged", stepResult.Divergence != nil,
			)
		} else {
			stepLogger.Debug("step applied", "changes", len(stepResult.Changes))
		}

		result.Steps = append(result.Steps, stepResult)
		if opts.OnStep != nil {
			opts.OnStep(stepResult)
		}
	}

	return result, nil
}

func compare(doc, shadow *notebook.Document, name, shadowName config.EngineName) *Divergence {
	want := doc.Engine.Intervals()
	got := shadow.Engine.Intervals()
	if slices.Equal(want, got) {
		return nil
	}
	return &Divergence{
		Engine:   name,
		Expected: DumpIntervals(want),
		Shadow:   shadowName,
		Actual:   DumpIntervals(got),
	}
}

// DumpIntervals renders intervals one per line.
func DumpIntervals(intervals []cell.Interval) string {
	var builder strings.Builder
	for _, iv := range intervals {
		builder.WriteString(iv.String())
		builder.WriteString("\n")
	}
	return builder.String()
}

func engineName(name config.EngineName) config.EngineName {
	if name == "" {
		return config.EngineIncremental
	}
	return name
}

func otherEngine(name config.EngineName) config.EngineName {
	if engineName(name) == config.EngineIncremental {
		return config.EngineReference
	}
	return config.EngineIncremental
}
