package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/nbcells/internal/configloader"
	"github.com/yaklabco/nbcells/internal/logging"
	"github.com/yaklabco/nbcells/pkg/config"
)

// defaultConfigFile is the project configuration file written by init.
const defaultConfigFile = ".nbcells.yml"

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	full   bool
	user   bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new nbcells configuration file",
		Long: `Create a new .nbcells.yml configuration file in the current directory
with sensible defaults.

Examples:
  nbcells init                       Create minimal .nbcells.yml
  nbcells init --full                Create full config with every option documented
  nbcells init --user                Write the user configuration file instead
  nbcells init --output custom.yml   Write to a custom file path`,
		Args: exactArgs(0),
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&flags.full, "full", false, "Generate full template with every option documented")
	cmd.Flags().BoolVar(&flags.user, "user", false, "Write the user configuration file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: .nbcells.yml)")

	return cmd
}

func runInit(flags *initFlags) error {
	logger := logging.NewInteractive()

	outputPath := flags.output
	switch {
	case outputPath != "" && flags.user:
		return fmt.Errorf("%w: --output and --user are mutually exclusive", ErrUsage)
	case flags.user:
		dir := configloader.UserConfigDir()
		if dir == "" {
			return fmt.Errorf("%w: cannot determine user config directory", ErrConfig)
		}
		outputPath = filepath.Join(dir, "config.yaml")
	case outputPath == "":
		outputPath = defaultConfigFile
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{Full: flags.full})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := configloader.WriteConfig(absPath, content, flags.force); err != nil {
		return err
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)
	if flags.full {
		logger.Info("full template documents every option with its default")
	}

	return nil
}
