// Package config defines core configuration types for nbcells.
// These types are pure data structures with no dependency on how they are loaded.
package config

// TokenizerName selects the marker source used to partition a document.
type TokenizerName string

const (
	// TokenizerAuto picks markdown for .md/.markdown files and percent otherwise.
	TokenizerAuto     TokenizerName = "auto"
	TokenizerPercent  TokenizerName = "percent"
	TokenizerMarkdown TokenizerName = "markdown"
)

// EngineName selects the partition engine.
type EngineName string

const (
	EngineIncremental EngineName = "incremental"
	EngineReference   EngineName = "reference"
)

// Flavor specifies the Markdown flavor used by the markdown tokenizer.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// OutputFormat specifies how the CLI renders cells.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ColorMode controls colored terminal output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// DefaultSearchThreshold mirrors the partition engine's default.
const DefaultSearchThreshold = 32

// IntegrityConfig controls the post-update integrity check.
type IntegrityConfig struct {
	// Enabled runs the check after every update. Nil means true.
	Enabled *bool `mapstructure:"enabled" yaml:"enabled,omitempty"`

	// Dump attaches marker and interval dumps to violation logs. Nil means true.
	Dump *bool `mapstructure:"dump" yaml:"dump,omitempty"`
}

// MarkdownConfig holds options for the markdown tokenizer.
type MarkdownConfig struct {
	Flavor Flavor `mapstructure:"flavor" yaml:"flavor"`
}

// Config is the root configuration structure for nbcells.
type Config struct {
	// Tokenizer selects the marker source ("auto", "percent" or "markdown").
	Tokenizer TokenizerName `mapstructure:"tokenizer" yaml:"tokenizer"`

	// Engine selects the partition engine ("incremental" or "reference").
	Engine EngineName `mapstructure:"engine" yaml:"engine"`

	// SearchThreshold is the marker count above which lookups use binary search.
	SearchThreshold int `mapstructure:"search_threshold" yaml:"search_threshold"`

	// Integrity configures the integrity check.
	Integrity IntegrityConfig `mapstructure:"integrity" yaml:"integrity"`

	// Markdown configures the markdown tokenizer.
	Markdown MarkdownConfig `mapstructure:"markdown" yaml:"markdown"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level" yaml:"log_level,omitempty"`

	// CLI-level options (not persisted to config files).

	// Format specifies the output format.
	Format OutputFormat `mapstructure:"-" yaml:"-"`

	// Color controls colored output.
	Color ColorMode `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Tokenizer:       TokenizerAuto,
		Engine:          EngineIncremental,
		SearchThreshold: DefaultSearchThreshold,
		Integrity: IntegrityConfig{
			Enabled: Bool(true),
			Dump:    Bool(true),
		},
		Markdown: MarkdownConfig{Flavor: FlavorCommonMark},
		LogLevel: "warn",
		Format:   FormatTable,
		Color:    ColorAuto,
	}
}

// IntegrityEnabled reports whether the integrity check should run.
func (c *Config) IntegrityEnabled() bool {
	return c.Integrity.Enabled == nil || *c.Integrity.Enabled
}

// IntegrityDump reports whether violation logs carry dumps.
func (c *Config) IntegrityDump() bool {
	return c.Integrity.Dump == nil || *c.Integrity.Dump
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}
