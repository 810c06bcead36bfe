package configloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindProjectConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(t *testing.T, root, start string)
		want  string
	}{
		{
			name:  "none below vcs root",
			setup: func(*testing.T, string, string) {},
		},
		{
			name: "yaml extension",
			setup: func(t *testing.T, root, _ string) {
				require.NoError(t, os.WriteFile(filepath.Join(root, ".nbcells.yaml"), nil, 0o644))
			},
			want: ".nbcells.yaml",
		},
		{
			name: "yml preferred over yaml",
			setup: func(t *testing.T, root, _ string) {
				require.NoError(t, os.WriteFile(filepath.Join(root, ".nbcells.yaml"), nil, 0o644))
				require.NoError(t, os.WriteFile(filepath.Join(root, ".nbcells.yml"), nil, 0o644))
			},
			want: ".nbcells.yml",
		},
		{
			name: "directory with config name is skipped",
			setup: func(t *testing.T, root, _ string) {
				require.NoError(t, os.Mkdir(filepath.Join(root, ".nbcells.yml"), 0o755))
			},
		},
		{
			name: "nearest wins",
			setup: func(t *testing.T, root, start string) {
				require.NoError(t, os.WriteFile(filepath.Join(root, ".nbcells.yml"), nil, 0o644))
				require.NoError(t, os.WriteFile(filepath.Join(start, ".nbcells.yml"), nil, 0o644))
			},
			want: filepath.Join("a", ".nbcells.yml"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			outer := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(outer, ".nbcells.yml"), nil, 0o644))
			root := filepath.Join(outer, "repo")
			start := filepath.Join(root, "a")
			require.NoError(t, os.MkdirAll(start, 0o755))
			require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
			tt.setup(t, root, start)

			got, err := findProjectConfig(context.Background(), start)
			require.NoError(t, err)
			if tt.want == "" {
				assert.Empty(t, got, "search must stop at the vcs root")
				return
			}
			assert.Equal(t, filepath.Join(root, tt.want), got)
		})
	}
}

func TestFindProjectConfig_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := findProjectConfig(ctx, t.TempDir())
	require.ErrorIs(t, err, context.Canceled)
}

func TestUserConfigDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	assert.Equal(t, filepath.Join(base, "nbcells"), UserConfigDir())
}

func TestIsYAMLConfig(t *testing.T) {
	t.Parallel()

	assert.True(t, IsYAMLConfig("a/config.yaml"))
	assert.True(t, IsYAMLConfig(".nbcells.yml"))
	assert.False(t, IsYAMLConfig("config.json"))
	assert.False(t, IsYAMLConfig("yml"))
}
