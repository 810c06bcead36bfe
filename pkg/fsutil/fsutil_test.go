package fsutil_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/nbcells/pkg/fsutil"
)

func writeTemp(t *testing.T, content string, mode os.FileMode) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "demo.py")
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "# %%\nx = 1\n", 0o600)

	text, snap, err := fsutil.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "# %%\nx = 1\n", text)
	assert.Equal(t, path, snap.Path)
	assert.Equal(t, int64(len(text)), snap.Size)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, _, err := fsutil.Load(context.Background(), filepath.Join(dir, "missing.py"))
	require.ErrorIs(t, err, fsutil.ErrNotFound)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = fsutil.Load(context.Background(), dir)
	require.ErrorIs(t, err, fsutil.ErrIsDirectory)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = fsutil.Load(ctx, filepath.Join(dir, "x"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSnapshot_Changed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(t *testing.T, path string)
		want   bool
	}{
		{name: "untouched", mutate: func(*testing.T, string) {}, want: false},
		{
			name: "rewritten",
			mutate: func(t *testing.T, path string) {
				require.NoError(t, os.WriteFile(path, []byte("# %%\nx = 22\n"), 0o600))
			},
			want: true,
		},
		{
			name:   "deleted",
			mutate: func(t *testing.T, path string) { require.NoError(t, os.Remove(path)) },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeTemp(t, "# %%\nx = 1\n", 0o600)
			_, snap, err := fsutil.Load(context.Background(), path)
			require.NoError(t, err)

			tt.mutate(t, path)

			changed, err := snap.Changed(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, changed)
		})
	}

	var nilSnap *fsutil.Snapshot
	_, err := nilSnap.Changed(context.Background())
	require.ErrorIs(t, err, fsutil.ErrNilSnapshot)
}

func TestSave(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "original\n", 0o600)
	ctx := context.Background()

	_, snap, err := fsutil.Load(ctx, path)
	require.NoError(t, err)

	fresh, err := fsutil.Save(ctx, snap, "first\n", fsutil.SaveOptions{Backup: true})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(got))

	backup, err := os.ReadFile(fsutil.BackupPath(path))
	require.NoError(t, err)
	assert.Equal(t, "original\n", string(backup))

	_, err = fsutil.Save(ctx, fresh, "second\n", fsutil.SaveOptions{Backup: true})
	require.NoError(t, err)

	backup, err = os.ReadFile(fsutil.BackupPath(path))
	require.NoError(t, err)
	assert.Equal(t, "original\n", string(backup), "an existing backup is kept")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestSave_RefusesModifiedFile(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "original\n", 0o600)
	ctx := context.Background()

	_, snap, err := fsutil.Load(ctx, path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("someone else\n"), 0o600))

	_, err = fsutil.Save(ctx, snap, "mine\n", fsutil.SaveOptions{})
	require.ErrorIs(t, err, fsutil.ErrModified)

	_, err = fsutil.Save(ctx, snap, "mine\n", fsutil.SaveOptions{Force: true})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mine\n", string(got))
	assert.NoFileExists(t, fsutil.BackupPath(path))
}

func TestRestoreBackup(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, "original\n", 0o600)
	ctx := context.Background()

	restored, err := fsutil.RestoreBackup(ctx, path)
	require.NoError(t, err)
	assert.False(t, restored)

	created, err := fsutil.CreateBackup(ctx, path)
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, os.WriteFile(path, []byte("edited\n"), 0o600))

	restored, err = fsutil.RestoreBackup(ctx, path)
	require.NoError(t, err)
	assert.True(t, restored)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original\n", string(got))
	assert.NoFileExists(t, fsutil.BackupPath(path))
}

func TestWriteAtomic_LeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.md")

	require.NoError(t, fsutil.WriteAtomic(context.Background(), path, []byte("x"), 0))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.md", entries[0].Name())

	err = fsutil.WriteAtomic(context.Background(), filepath.Join(dir, "missing", "out.md"), []byte("x"), 0)
	require.Error(t, err)
}
