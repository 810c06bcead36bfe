// Package cli provides the Cobra command structure for nbcells.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/nbcells/internal/configloader"
	"github.com/yaklabco/nbcells/internal/logging"
	"github.com/yaklabco/nbcells/pkg/config"
	"github.com/yaklabco/nbcells/pkg/fsutil"
)

var (
	// ErrConfig marks errors raised while loading configuration.
	ErrConfig = errors.New("configuration error")

	// ErrUsage marks invalid arguments or flags.
	ErrUsage = errors.New("invalid usage")
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root nbcells command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "nbcells",
		Short: "Incremental cell partitioning for notebook-style source files",
		Long: `nbcells splits py:percent scripts and Markdown documents into notebook
cells and keeps the partition up to date as the text is edited.

Cells are delimited by "# %%" marker lines in scripts and by fenced code
blocks in Markdown. Each edit reparses only the window of text it touches
and reports which cells changed.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	})

	rootCmd.AddCommand(newCellsCommand())
	rootCmd.AddCommand(newReplayCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

// exactArgs is cobra.ExactArgs with errors marked as usage errors.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		return nil
	}
}

// partitionFlags are the flags shared by commands that partition a file.
type partitionFlags struct {
	engine    string
	tokenizer string
	flavor    string
}

func addPartitionFlags(cmd *cobra.Command, flags *partitionFlags) {
	cmd.Flags().StringVar(&flags.engine, "engine", "incremental", "partition engine: incremental, reference")
	cmd.Flags().StringVar(&flags.tokenizer, "tokenizer", "auto", "cell marker syntax: auto, percent, markdown")
	cmd.Flags().StringVar(&flags.flavor, "flavor", "commonmark", "Markdown flavor: commonmark, gfm")
}

// apply copies explicitly set flags into cfg.
func (f *partitionFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("engine") {
		cfg.Engine = config.EngineName(f.engine)
	}
	if cmd.Flags().Changed("tokenizer") {
		cfg.Tokenizer = config.TokenizerName(f.tokenizer)
	}
	if cmd.Flags().Changed("flavor") {
		cfg.Markdown.Flavor = config.Flavor(f.flavor)
	}
}

// loadConfig resolves the configuration with cliCfg on top. Only values
// set on cliCfg override lower layers.
func loadConfig(cmd *cobra.Command, cliCfg *config.Config) (*config.Config, error) {
	logger := logging.Default()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}
	if cmd.Flags().Changed("color") {
		color, err := cmd.Flags().GetString("color")
		if err != nil {
			return nil, fmt.Errorf("get color flag: %w", err)
		}
		cliCfg.Color = config.ColorMode(color)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(cmd.Context(), configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		Logger:       logger,
		CLIConfig:    cliCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}

	cfg := loadResult.Config
	if cfg.LogLevel != "" && !cmd.Flags().Changed("debug") {
		logging.SetLevel(cfg.LogLevel)
	}

	logger.Debug("configuration loaded",
		logging.FieldTokenizer, cfg.Tokenizer,
		logging.FieldEngine, cfg.Engine,
		logging.FieldFlavor, cfg.Markdown.Flavor,
	)

	return cfg, nil
}

// readFile reads a document and snapshots it for later modification checks.
func readFile(cmd *cobra.Command, path string) (string, *fsutil.Snapshot, error) {
	text, snap, err := fsutil.Load(cmd.Context(), path)
	if err != nil {
		return "", nil, fmt.Errorf("read document: %w", err)
	}
	return text, snap, nil
}
