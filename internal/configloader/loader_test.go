package configloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/nbcells/pkg/config"
)

// isolatedOptions returns options that only see files under dir.
func isolatedOptions(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

// projectDir creates a temp VCS root, optionally holding a project config.
func projectDir(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))
	if content != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".nbcells.yml"), []byte(content), 0o644))
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolatedOptions(projectDir(t, "")))
	require.NoError(t, err)
	require.NotNil(t, result.Config)

	assert.Equal(t, config.TokenizerAuto, result.Config.Tokenizer)
	assert.Equal(t, config.EngineIncremental, result.Config.Engine)
	assert.Equal(t, config.DefaultSearchThreshold, result.Config.SearchThreshold)
	assert.True(t, result.Config.IntegrityEnabled())
	assert.Empty(t, result.LoadedFrom)
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	dir := projectDir(t, `
engine: reference
integrity:
  enabled: false
markdown:
  flavor: gfm
`)

	result, err := Load(context.Background(), isolatedOptions(dir))
	require.NoError(t, err)

	assert.Equal(t, config.EngineReference, result.Config.Engine)
	assert.Equal(t, config.FlavorGFM, result.Config.Markdown.Flavor)
	assert.False(t, result.Config.IntegrityEnabled())
	assert.True(t, result.Config.IntegrityDump(), "unset dump keeps its default")
	assert.Equal(t, config.TokenizerAuto, result.Config.Tokenizer, "unset fields keep defaults")
	assert.Len(t, result.LoadedFrom, 1)
}

func TestLoad_ProjectConfigFoundUpward(t *testing.T) {
	t.Parallel()

	dir := projectDir(t, "engine: reference\n")
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	result, err := Load(context.Background(), isolatedOptions(nested))
	require.NoError(t, err)
	assert.Equal(t, config.EngineReference, result.Config.Engine)
	assert.Equal(t, filepath.Join(dir, ".nbcells.yml"), result.Paths.Project)
}

func TestLoad_ExplicitOverridesProject(t *testing.T) {
	t.Parallel()

	dir := projectDir(t, "engine: reference\nsearch_threshold: 8\n")
	custom := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(custom, []byte("engine: incremental\n"), 0o644))

	opts := isolatedOptions(dir)
	opts.ExplicitPath = custom

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, config.EngineIncremental, result.Config.Engine)
	assert.Equal(t, 8, result.Config.SearchThreshold)
	assert.Equal(t, []string{filepath.Join(dir, ".nbcells.yml"), custom}, result.LoadedFrom)
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	dir := projectDir(t, "engine: reference\n")
	opts := isolatedOptions(dir)
	opts.CLIConfig = &config.Config{
		Engine: config.EngineIncremental,
		Format: config.FormatJSON,
	}

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, config.EngineIncremental, result.Config.Engine)
	assert.Equal(t, config.FormatJSON, result.Config.Format)
	assert.Equal(t, config.ColorAuto, result.Config.Color)
}

//nolint:paralleltest // Uses t.Setenv.
func TestLoad_EnvOverridesFiles(t *testing.T) {
	dir := projectDir(t, "engine: reference\nintegrity:\n  dump: true\n")
	t.Setenv("NBCELLS_ENGINE", "incremental")
	t.Setenv("NBCELLS_INTEGRITY_DUMP", "false")
	t.Setenv("NBCELLS_SEARCH_THRESHOLD", "4")

	opts := isolatedOptions(dir)
	opts.IgnoreEnv = false
	opts.CLIConfig = &config.Config{SearchThreshold: 16}

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, config.EngineIncremental, result.Config.Engine)
	assert.False(t, result.Config.IntegrityDump())
	assert.Equal(t, 16, result.Config.SearchThreshold, "CLI beats environment")
}

//nolint:paralleltest // Uses t.Setenv.
func TestLoadFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bool", "NBCELLS_INTEGRITY", "maybe"},
		{"int", "NBCELLS_SEARCH_THRESHOLD", "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			err := LoadFromEnv(config.NewConfig())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"tokenizer", "tokenizer: jupytext\n", "tokenizer"},
		{"engine", "engine: magic\n", "engine"},
		{"flavor", "markdown:\n  flavor: mmd\n", "markdown.flavor"},
		{"threshold", "search_threshold: -1\n", "search_threshold"},
		{"log level", "log_level: loud\n", "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(context.Background(), isolatedOptions(projectDir(t, tt.content)))
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Contains(t, verr.FilePath, ".nbcells.yml")
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), isolatedOptions(projectDir(t, "engine: [\n")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load project config")
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, isolatedOptions(t.TempDir()))
	require.ErrorIs(t, err, context.Canceled)
}

func TestValidate_Warnings(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Tokenizer = config.TokenizerPercent
	cfg.Markdown.Flavor = config.FlavorGFM

	result := Validate(cfg)
	assert.True(t, result.Valid())
	assert.True(t, result.HasWarnings())
	assert.Len(t, result.AllMessages(), 1)
}

func TestMergeAll(t *testing.T) {
	t.Parallel()

	base := config.NewConfig()
	off := &config.Config{Integrity: config.IntegrityConfig{Enabled: config.Bool(false)}}
	on := &config.Config{Integrity: config.IntegrityConfig{Enabled: config.Bool(true)}}

	assert.False(t, MergeAll(base, off).IntegrityEnabled())
	assert.True(t, MergeAll(base, off, on).IntegrityEnabled())
	assert.True(t, base.IntegrityEnabled(), "merge leaves inputs untouched")
	assert.Nil(t, MergeAll())
}

func TestWriteConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", ".nbcells.yml")
	require.NoError(t, WriteConfig(path, []byte("engine: reference\n"), false))
	require.Error(t, WriteConfig(path, []byte("engine: incremental\n"), false))
	require.NoError(t, WriteConfig(path, []byte("engine: incremental\n"), true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "engine: incremental\n", string(data))
}

func TestGetEnvVarName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "NBCELLS_FLAVOR", GetEnvVarName("markdown.flavor"))
	assert.Empty(t, GetEnvVarName("nope"))
	assert.Contains(t, ListEnvVars(), "NBCELLS_ENGINE")
}
