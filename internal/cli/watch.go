package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/nbcells/internal/logging"
	"github.com/yaklabco/nbcells/internal/ui/pretty"
	"github.com/yaklabco/nbcells/internal/watcher"
	"github.com/yaklabco/nbcells/pkg/buffer"
	"github.com/yaklabco/nbcells/pkg/config"
	"github.com/yaklabco/nbcells/pkg/fsutil"
	"github.com/yaklabco/nbcells/pkg/notebook"
	"github.com/yaklabco/nbcells/pkg/partition"
)

type watchFlags struct {
	partitionFlags
	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	flags := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Follow a file and print cell changes as it is saved",
		Long: `Partition FILE, then watch it for changes. Each save is turned into the
smallest single edit that transforms the previous content into the new
content, and the resulting cell changes are printed. Stop with Ctrl-C.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], flags)
		},
	}

	addPartitionFlags(cmd, &flags.partitionFlags)
	cmd.Flags().DurationVar(&flags.debounce, "debounce", watcher.DefaultDebounce, "quiet period before a change is processed")

	return cmd
}

func runWatch(cmd *cobra.Command, path string, flags *watchFlags) error {
	cliCfg := &config.Config{}
	flags.apply(cmd, cliCfg)

	cfg, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	text, snap, err := readFile(cmd, absPath)
	if err != nil {
		return err
	}

	logger := logging.Default().With(logging.FieldPath, path)
	out := cmd.OutOrStdout()
	colorEnabled := pretty.IsColorEnabled(string(cfg.Color), out)
	styles := pretty.NewStyles(colorEnabled)

	ws := notebook.NewWorkspace(cfg, logger)
	doc, err := ws.Open(notebook.OpenOptions{Path: path, Text: text})
	if err != nil {
		return fmt.Errorf("partition %s: %w", path, err)
	}
	defer func() {
		_ = ws.Close(doc.ID)
	}()

	fmt.Fprint(out, pretty.NewTableFormatter(styles, colorEnabled, 0).FormatCells(path, doc.Cells()))

	doc.Engine.AddListener(partition.ListenerFunc(func(change partition.Change) {
		fmt.Fprint(out, styles.FormatChange(change))
	}))

	wcfg := watcher.DefaultConfig(absPath)
	wcfg.DebounceDur = flags.debounce
	wcfg.Logger = logger

	w, err := watcher.New(wcfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Stop(); err != nil {
			logger.Warn("stop watcher", logging.FieldError, err)
		}
	}()

	changes, err := w.Start()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("watching")
	return watchLoop(ctx, changes, snap, doc, out, styles, logger)
}

func watchLoop(
	ctx context.Context,
	changes <-chan struct{},
	snap *fsutil.Snapshot,
	doc *notebook.Document,
	out io.Writer,
	styles *pretty.Styles,
	logger *log.Logger,
) error {
	step := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			modified, err := snap.Changed(ctx)
			if err != nil || !modified {
				continue
			}

			text, fresh, err := fsutil.Load(ctx, snap.Path)
			if err != nil {
				logger.Warn("reload failed", logging.FieldError, err)
				continue
			}
			snap = fresh

			edit, changed := buffer.DiffEdit(doc.Text(), text)
			if !changed {
				continue
			}

			step++
			fmt.Fprint(out, styles.FormatEdit(step, edit.StartOffset, edit.EndOffset, edit.NewText))
			if err := doc.Replace(edit.StartOffset, edit.EndOffset, edit.NewText); err != nil {
				return fmt.Errorf("apply change: %w", err)
			}
		}
	}
}
