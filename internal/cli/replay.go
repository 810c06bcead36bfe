package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/nbcells/internal/logging"
	"github.com/yaklabco/nbcells/internal/replay"
	"github.com/yaklabco/nbcells/internal/ui/pretty"
	"github.com/yaklabco/nbcells/pkg/config"
	"github.com/yaklabco/nbcells/pkg/fsutil"
)

// ErrReplayFailed is returned when a replay broke an invariant or the engines diverged.
var ErrReplayFailed = errors.New("replay failed")

type replayFlags struct {
	partitionFlags
	verify   bool
	quiet    bool
	write    bool
	noBackup bool
	force    bool
}

func newReplayCommand() *cobra.Command {
	flags := &replayFlags{}

	cmd := &cobra.Command{
		Use:   "replay FILE SCRIPT",
		Short: "Apply an edit script to a file and print each cell change",
		Long: `Load FILE, apply the edits listed in the YAML SCRIPT one step at a time,
and print the cell changes each step produces. FILE itself is not modified.

A script is a list of steps, each with exactly one action:

  steps:
    - insert: {at: 10, text: "# %%\n"}
    - delete: {start: 0, end: 5}
    - replace: {start: 3, end: 4, text: "x"}
    - batch:
        - {start: 0, end: 1, text: "a"}
    - set_text: "# %%\n"

With --verify the other engine replays the same edits and the command
fails if the partitions diverge or an integrity check fails.

With --write the edited text is saved back to FILE once every step has
passed. The original is kept in FILE.nbcells.bak unless --no-backup is
given, and the save is refused if FILE changed while the script ran.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args[0], args[1], flags)
		},
	}

	addPartitionFlags(cmd, &flags.partitionFlags)
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "compare against the other engine after every step")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "print only failures and the summary")
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "save the edited text back to FILE")
	cmd.Flags().BoolVar(&flags.noBackup, "no-backup", false, "do not keep a backup of FILE when writing")
	cmd.Flags().BoolVar(&flags.force, "force", false, "write even if FILE changed during the replay")

	return cmd
}

func runReplay(cmd *cobra.Command, path, scriptPath string, flags *replayFlags) error {
	cliCfg := &config.Config{}
	flags.apply(cmd, cliCfg)

	cfg, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}

	text, snap, err := readFile(cmd, path)
	if err != nil {
		return err
	}

	script, err := replay.Load(scriptPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	out := cmd.OutOrStdout()
	styles := pretty.NewStyles(pretty.IsColorEnabled(string(cfg.Color), out))
	logger := logging.Default().With(logging.FieldPath, path, logging.FieldScript, scriptPath)

	result, err := replay.Run(cmd.Context(), script, replay.Options{
		Config: cfg,
		Path:   path,
		Text:   text,
		Verify: flags.verify,
		Logger: logger,
		OnStep: func(step replay.StepResult) {
			printStep(out, styles, step, flags.quiet)
		},
	})
	if err != nil {
		return fmt.Errorf("replay %s: %w", scriptPath, err)
	}

	fmt.Fprint(out, styles.FormatReplaySummary(len(result.Steps), result.Changes, result.Failures, result.Stamp))

	if result.Failed() {
		return fmt.Errorf("%w: %d of %d steps", ErrReplayFailed, result.Failures, len(result.Steps))
	}

	if flags.write && result.Text != text {
		if _, err := fsutil.Save(cmd.Context(), snap, result.Text, fsutil.SaveOptions{
			Backup: !flags.noBackup,
			Force:  flags.force,
		}); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		logger.Info("saved edited document")
	}
	return nil
}

func printStep(out io.Writer, styles *pretty.Styles, step replay.StepResult, quiet bool) {
	if quiet && !step.Failed() {
		return
	}

	for _, edit := range step.Edits {
		fmt.Fprint(out, styles.FormatEdit(step.Index, edit.StartOffset, edit.EndOffset, edit.NewText))
	}
	for _, change := range step.Changes {
		fmt.Fprint(out, styles.FormatChange(change))
	}

	if len(step.Violations) > 0 {
		fmt.Fprintln(out, styles.Failure.Render("integrity check failed"))
		fmt.Fprint(out, styles.FormatViolations(step.Violations))
	}
	if d := step.Divergence; d != nil {
		fmt.Fprintln(out, styles.Failure.Render("engines diverged"))
		fmt.Fprint(out, styles.FormatTextDiff(string(d.Engine), string(d.Shadow), d.Expected, d.Actual))
	}
}
