package configloader

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/nbcells/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "markdown.flavor").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	if e.Field != "" {
		parts = append(parts, e.Field)
	}

	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

// knownTokenizers lists valid tokenizer values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownTokenizers = map[config.TokenizerName]bool{
	config.TokenizerAuto:     true,
	config.TokenizerPercent:  true,
	config.TokenizerMarkdown: true,
}

// knownEngines lists valid engine values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownEngines = map[config.EngineName]bool{
	config.EngineIncremental: true,
	config.EngineReference:   true,
}

// knownFlavors lists valid flavor values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownFlavors = map[config.Flavor]bool{
	config.FlavorCommonMark: true,
	config.FlavorGFM:        true,
}

// knownFormats lists valid output format values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownFormats = map[config.OutputFormat]bool{
	config.FormatTable: true,
	config.FormatJSON:  true,
	config.FormatYAML:  true,
}

// knownColors lists valid color mode values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownColors = map[config.ColorMode]bool{
	config.ColorAuto:   true,
	config.ColorAlways: true,
	config.ColorNever:  true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.Tokenizer != "" && !knownTokenizers[cfg.Tokenizer] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "tokenizer",
			Value:   cfg.Tokenizer,
			Message: fmt.Sprintf("invalid tokenizer %q; must be one of: auto, percent, markdown", cfg.Tokenizer),
		})
	}

	if cfg.Engine != "" && !knownEngines[cfg.Engine] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "engine",
			Value:   cfg.Engine,
			Message: fmt.Sprintf("invalid engine %q; must be one of: incremental, reference", cfg.Engine),
		})
	}

	if cfg.SearchThreshold < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "search_threshold",
			Value:   cfg.SearchThreshold,
			Message: "search_threshold must be >= 0 (0 means default)",
		})
	}

	if cfg.Markdown.Flavor != "" && !knownFlavors[cfg.Markdown.Flavor] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "markdown.flavor",
			Value:   cfg.Markdown.Flavor,
			Message: fmt.Sprintf("invalid flavor %q; must be one of: commonmark, gfm", cfg.Markdown.Flavor),
		})
	}

	if cfg.LogLevel != "" {
		if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "log_level",
				Value:   cfg.LogLevel,
				Message: fmt.Sprintf("invalid log level %q; must be one of: debug, info, warn, error", cfg.LogLevel),
			})
		}
	}

	if cfg.Format != "" && !knownFormats[cfg.Format] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "format",
			Value:   cfg.Format,
			Message: fmt.Sprintf("invalid format %q; must be one of: table, json, yaml", cfg.Format),
		})
	}

	if cfg.Color != "" && !knownColors[cfg.Color] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "color",
			Value:   cfg.Color,
			Message: fmt.Sprintf("invalid color mode %q; must be one of: auto, always, never", cfg.Color),
		})
	}

	if cfg.Tokenizer == config.TokenizerPercent && cfg.Markdown.Flavor == config.FlavorGFM {
		result.Warnings = append(result.Warnings, ValidationError{
			Field:   "markdown.flavor",
			Value:   cfg.Markdown.Flavor,
			Message: "markdown.flavor has no effect with the percent tokenizer",
		})
	}

	return result
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

// IsValidFlavor returns true if the flavor is valid.
func IsValidFlavor(f config.Flavor) bool {
	return knownFlavors[f]
}

// IsValidFormat returns true if the format is valid.
func IsValidFormat(f config.OutputFormat) bool {
	return knownFormats[f]
}
