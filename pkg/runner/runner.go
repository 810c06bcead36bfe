package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/nbcells/internal/logging"
	"github.com/yaklabco/nbcells/pkg/config"
	"github.com/yaklabco/nbcells/pkg/fsutil"
	"github.com/yaklabco/nbcells/pkg/notebook"
)

// Run discovers files under opts.Paths and partitions them with a pool of
// workers. Outcomes are returned in path order whatever order workers finish in.
func Run(ctx context.Context, opts Options) (*Result, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	opts.WorkingDir = workDir

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
		Stats: Stats{FilesDiscovered: len(files), CellsByKind: make(map[string]int)},
	}
	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	logger := logging.OrDiscard(opts.Logger)
	ws := notebook.NewWorkspace(cfg, logger)

	workCh := make(chan string)
	outCh := make(chan FileOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx, ws, workDir, workCh, outCh, logger)
		}()
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	outcomes := make(map[string]FileOutcome, len(files))
	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	for _, path := range files {
		if outcome, ok := outcomes[displayPath(path, workDir)]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}
	return result, nil
}

func worker(
	ctx context.Context,
	ws *notebook.Workspace,
	workDir string,
	workCh <-chan string,
	outCh chan<- FileOutcome,
	logger *log.Logger,
) {
	for path := range workCh {
		if ctx.Err() != nil {
			return
		}

		outcome := partitionFile(ctx, ws, path, displayPath(path, workDir))
		if outcome.Error != nil {
			logger.Debug("partition failed", logging.FieldPath, outcome.Path, logging.FieldError, outcome.Error)
		}

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}

func partitionFile(ctx context.Context, ws *notebook.Workspace, absPath, path string) FileOutcome {
	outcome := FileOutcome{Path: path}

	text, _, err := fsutil.Load(ctx, absPath)
	if err != nil {
		outcome.Error = err
		return outcome
	}

	doc, err := ws.Open(notebook.OpenOptions{Path: absPath, Text: text})
	if err != nil {
		outcome.Error = fmt.Errorf("partition %s: %w", path, err)
		return outcome
	}
	defer func() {
		_ = ws.Close(doc.ID)
	}()

	outcome.Stamp = doc.Engine.ModificationStamp()
	outcome.Cells = doc.Cells()
	outcome.Violations = doc.Engine.Verify()
	return outcome
}

// displayPath returns path relative to workDir, or path itself if it lies outside.
func displayPath(path, workDir string) string {
	rel, err := filepath.Rel(workDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
