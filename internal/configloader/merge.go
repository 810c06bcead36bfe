package configloader

import "github.com/yaklabco/nbcells/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Optional booleans: override overwrites base if override is non-nil
//   - Nil/unset values in override do not override values in base
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	if override.Tokenizer != "" {
		result.Tokenizer = override.Tokenizer
	}
	if override.Engine != "" {
		result.Engine = override.Engine
	}
	if override.SearchThreshold != 0 {
		result.SearchThreshold = override.SearchThreshold
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.Markdown.Flavor != "" {
		result.Markdown.Flavor = override.Markdown.Flavor
	}

	// Integrity switches are pointers so a file can turn them off.
	if override.Integrity.Enabled != nil {
		result.Integrity.Enabled = config.Bool(*override.Integrity.Enabled)
	}
	if override.Integrity.Dump != nil {
		result.Integrity.Dump = config.Bool(*override.Integrity.Dump)
	}

	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Color != "" {
		result.Color = override.Color
	}

	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
