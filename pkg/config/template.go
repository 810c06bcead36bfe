package config

import (
	"bytes"
	"fmt"
	"strings"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full documents every setting with its allowed values.
	// If false, generates a minimal template.
	Full bool
}

// templateField describes one setting for the full template.
type templateField struct {
	key         string
	value       string
	description string
	indent      int
}

// templateFields lists every persisted setting in file order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var templateFields = []templateField{
	{
		key: "tokenizer", value: string(TokenizerAuto),
		description: "Marker source: auto, percent or markdown. auto picks markdown for " +
			".md and .markdown files and the py:percent format for everything else.",
	},
	{
		key: "engine", value: string(EngineIncremental),
		description: "Partition engine: incremental re-tokenizes only the edited window; " +
			"reference rebuilds the whole partition on every edit.",
	},
	{
		key: "search_threshold", value: fmt.Sprint(DefaultSearchThreshold),
		description: "Marker count above which marker lookups switch from a linear scan to binary search.",
	},
	{key: "integrity", description: "Consistency check run after every update."},
	{
		key: "enabled", value: "true", indent: 1,
		description: "Log an error when markers or intervals break a partition rule.",
	},
	{
		key: "dump", value: "true", indent: 1,
		description: "Attach marker and interval dumps to integrity errors.",
	},
	{key: "markdown", description: "Options for the markdown tokenizer."},
	{
		key: "flavor", value: string(FlavorCommonMark), indent: 1,
		description: "Markdown flavor: commonmark or gfm.",
	},
	{key: "log_level", value: "warn", description: "Minimum log level: debug, info, warn or error."},
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Full {
		return generateFullTemplate(), nil
	}
	return generateMinimalTemplate(), nil
}

// generateMinimalTemplate creates a minimal commented template.
func generateMinimalTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(DefaultTemplateHeader())
	buf.WriteString(`

# Marker source: auto, percent or markdown
tokenizer: auto

# Partition engine: incremental or reference
engine: incremental

# Integrity check after every update
# integrity:
#   enabled: true
#   dump: true

# Markdown flavor for the markdown tokenizer
# markdown:
#   flavor: commonmark
`)

	return buf.Bytes()
}

// generateFullTemplate creates a template documenting every setting.
func generateFullTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(`# nbcells configuration - Full Template
# See: https://github.com/yaklabco/nbcells
#
# Every setting is shown with its default value.
`)

	for _, field := range templateFields {
		pad := strings.Repeat("  ", field.indent)
		if field.indent == 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "%s# %s\n", pad, wrapComment(field.description, commentWrapWidth, pad))
		if field.value == "" {
			fmt.Fprintf(&buf, "%s%s:\n", pad, field.key)
			continue
		}
		fmt.Fprintf(&buf, "%s%s: %s\n", pad, field.key, field.value)
	}

	return buf.Bytes()
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int, pad string) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	currentLine := ""

	for _, word := range strings.Fields(text) {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n"+pad+"# ")
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# nbcells configuration
# See: https://github.com/yaklabco/nbcells`
}
