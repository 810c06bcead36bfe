// Package runner partitions many documents concurrently.
package runner

import (
	"github.com/charmbracelet/log"

	"github.com/yaklabco/nbcells/pkg/config"
)

// Options controls a multi-file run.
type Options struct {
	// Paths are files or directories to process. Empty means the working directory.
	// Files named directly are processed whatever their extension.
	Paths []string

	// WorkingDir resolves relative Paths and is the base of reported paths.
	// Empty means the process working directory.
	WorkingDir string

	// Extensions selects files found by walking directories (lowercase, with
	// leading dot). Empty means DefaultExtensions().
	Extensions []string

	// ExcludeGlobs skip matching files and directories, relative to WorkingDir.
	// Supported forms: "*.md", "build/*", "vendor/**", "**/testdata".
	ExcludeGlobs []string

	// Jobs is the number of concurrent workers; 0 or negative means runtime.NumCPU().
	Jobs int

	// Config selects tokenizer, engine and integrity settings. Nil uses defaults.
	Config *config.Config

	Logger *log.Logger
}

// DefaultExtensions returns the extensions of files that carry cells.
func DefaultExtensions() []string {
	return []string{".py", ".md", ".markdown"}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions()
	}
	return o.Extensions
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
