package configloader

import (
	"fmt"
	"os"
	"strconv"

	"github.com/yaklabco/nbcells/pkg/config"
)

// envVarPrefix is the prefix for all nbcells environment variables.
const envVarPrefix = "NBCELLS_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field       string
	typ         envFieldType
	description string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"TOKENIZER":        {field: "tokenizer", typ: envTypeString, description: "Marker source: auto, percent or markdown"},
	"ENGINE":           {field: "engine", typ: envTypeString, description: "Partition engine: incremental or reference"},
	"SEARCH_THRESHOLD": {field: "search_threshold", typ: envTypeInt, description: "Marker count that enables binary search"},
	"INTEGRITY":        {field: "integrity.enabled", typ: envTypeBool, description: "Run the integrity check: true or false"},
	"INTEGRITY_DUMP":   {field: "integrity.dump", typ: envTypeBool, description: "Attach dumps to integrity errors: true or false"},
	"FLAVOR":           {field: "markdown.flavor", typ: envTypeString, description: "Markdown flavor: commonmark or gfm"},
	"LOG_LEVEL":        {field: "log_level", typ: envTypeString, description: "Log level: debug, info, warn or error"},
	"FORMAT":           {field: "format", typ: envTypeString, description: "Output format: table, json or yaml"},
	"COLOR":            {field: "color", typ: envTypeString, description: "Colored output: auto, always or never"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with NBCELLS_ (e.g., NBCELLS_ENGINE).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "tokenizer":
		cfg.Tokenizer = config.TokenizerName(value)
	case "engine":
		cfg.Engine = config.EngineName(value)
	case "markdown.flavor":
		cfg.Markdown.Flavor = config.Flavor(value)
	case "log_level":
		cfg.LogLevel = value
	case "format":
		cfg.Format = config.OutputFormat(value)
	case "color":
		cfg.Color = config.ColorMode(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "integrity.enabled":
		cfg.Integrity.Enabled = config.Bool(value)
	case "integrity.dump":
		cfg.Integrity.Dump = config.Bool(value)
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setIntField sets an integer field on the config by field path.
func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "search_threshold":
		cfg.SearchThreshold = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		vars[envVarPrefix+suffix] = mapping.description
	}
	return vars
}
