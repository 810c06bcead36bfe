package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/nbcells/internal/logging"
	"github.com/yaklabco/nbcells/pkg/config"
	"github.com/yaklabco/nbcells/pkg/reporter"
	"github.com/yaklabco/nbcells/pkg/runner"
)

type cellsFlags struct {
	partitionFlags
	format  string
	text    bool
	compact bool
	jobs    int
	ignore  []string
}

func newCellsCommand() *cobra.Command {
	flags := &cellsFlags{}

	cmd := &cobra.Command{
		Use:   "cells [paths...]",
		Short: "Print the cell partition of files",
		Long: `Partition files into cells and print them.

Directories are searched for .py, .md and .markdown files; hidden files and
directories are skipped. Files named directly are always processed.

Examples:
  nbcells cells                          # Every notebook file under .
  nbcells cells analysis.py              # Table of cells
  nbcells cells README.md --format json  # JSON for tooling
  nbcells cells notes/ --ignore "drafts/**" --format yaml --text`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCells(cmd, args, flags)
		},
	}

	addPartitionFlags(cmd, &flags.partitionFlags)
	cmd.Flags().StringVar(&flags.format, "format", "table", "output format: table, json, yaml")
	cmd.Flags().BoolVar(&flags.text, "text", false, "include cell text in json and yaml output")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns to skip")

	return cmd
}

func runCells(cmd *cobra.Command, args []string, flags *cellsFlags) error {
	cliCfg := &config.Config{}
	flags.apply(cmd, cliCfg)
	if cmd.Flags().Changed("format") {
		cliCfg.Format = config.OutputFormat(flags.format)
	}

	cfg, err := loadConfig(cmd, cliCfg)
	if err != nil {
		return err
	}

	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	logger := logging.Default()
	logger.Debug("starting partition run", "paths", args, "jobs", flags.jobs)

	result, err := runner.Run(cmd.Context(), runner.Options{
		Paths:        args,
		WorkingDir:   workDir,
		ExcludeGlobs: flags.ignore,
		Jobs:         flags.jobs,
		Config:       cfg,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("partition run failed: %w", err)
	}

	var errs []error
	docs := make([]reporter.Document, 0, len(result.Files))
	for _, file := range result.Files {
		if file.Error != nil {
			errs = append(errs, file.Error)
			continue
		}
		for _, v := range file.Violations {
			logger.Error("integrity check failed", logging.FieldPath, file.Path, logging.FieldError, v)
		}
		docs = append(docs, reporter.Document{Path: file.Path, Stamp: file.Stamp, Cells: file.Cells})
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		Format:      format,
		Color:       string(cfg.Color),
		Compact:     flags.compact,
		IncludeText: flags.text,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if err := rep.Report(cmd.Context(), docs); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return fmt.Errorf("report cells: %w", err)
	}

	if result.Stats.Violations > 0 {
		errs = append(errs, fmt.Errorf("%d integrity violations", result.Stats.Violations))
	}
	return errors.Join(errs...)
}
