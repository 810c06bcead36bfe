package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/yaklabco/nbcells/pkg/buffer"
)

func TestDiffEdit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		old, new string
		want     buffer.TextEdit
	}{
		{"insert line", "# %%\nx=1\n", "# %%\nx=1\ny=2\n", buffer.TextEdit{StartOffset: 9, EndOffset: 9, NewText: "y=2\n"}},
		{"delete", "abcdef", "abef", buffer.TextEdit{StartOffset: 2, EndOffset: 4}},
		{"replace middle", "x = 1\n", "x = 42\n", buffer.TextEdit{StartOffset: 4, EndOffset: 5, NewText: "42"}},
		{"from empty", "", "# %%\n", buffer.TextEdit{StartOffset: 0, EndOffset: 0, NewText: "# %%\n"}},
		{"multibyte", "é1", "é2", buffer.TextEdit{StartOffset: 2, EndOffset: 3, NewText: "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := buffer.DiffEdit(tt.old, tt.new)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := buffer.DiffEdit("same", "same")
	assert.False(t, ok)
}

func TestDiffEdit_Reconstructs(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		alphabet := rapid.SampledFrom([]rune{'a', 'b', '\n', '#', '%', ' ', 'é'})
		oldText := string(rapid.SliceOfN(alphabet, 0, 40).Draw(t, "old"))
		newText := string(rapid.SliceOfN(alphabet, 0, 40).Draw(t, "new"))

		edit, ok := buffer.DiffEdit(oldText, newText)
		if !ok {
			if oldText != newText {
				t.Fatalf("no edit for different texts %q and %q", oldText, newText)
			}
			return
		}

		buf := buffer.New(oldText)
		if err := buf.Replace(edit.StartOffset, edit.EndOffset, edit.NewText); err != nil {
			t.Fatalf("replace: %v", err)
		}
		if buf.Text() != newText {
			t.Fatalf("got %q, want %q", buf.Text(), newText)
		}
	})
}
