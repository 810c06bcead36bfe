package notebook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/nbcells/pkg/buffer"
	"github.com/yaklabco/nbcells/pkg/cell"
	"github.com/yaklabco/nbcells/pkg/config"
	"github.com/yaklabco/nbcells/pkg/notebook"
	"github.com/yaklabco/nbcells/pkg/partition"
	"github.com/yaklabco/nbcells/pkg/tokenizer/goldmark"
	"github.com/yaklabco/nbcells/pkg/tokenizer/percent"
)

const percentDoc = "# %%\nimport os\n\n# %% [markdown]\n# Title\n"

const markdownDoc = "Intro\n```go\npackage main\n```\n"

func TestWorkspace_OpenGetClose(t *testing.T) {
	t.Parallel()

	ws := notebook.NewWorkspace(nil, nil)

	doc, err := ws.Open(notebook.OpenOptions{Path: "analysis.py", Text: percentDoc})
	require.NoError(t, err)
	assert.True(t, doc.ID.IsValid())

	got, err := ws.Get(doc.ID)
	require.NoError(t, err)
	assert.Same(t, doc, got)

	_, err = ws.Open(notebook.OpenOptions{ID: doc.ID, Text: percentDoc})
	require.ErrorIs(t, err, notebook.ErrDocumentExists)

	require.NoError(t, ws.Close(doc.ID))
	_, err = ws.Get(doc.ID)
	require.ErrorIs(t, err, notebook.ErrDocumentNotFound)
	require.ErrorIs(t, ws.Close(doc.ID), notebook.ErrDocumentNotFound)
}

func TestWorkspace_Documents(t *testing.T) {
	t.Parallel()

	ws := notebook.NewWorkspace(nil, nil)
	for _, id := range []notebook.DocumentID{"c", "a", "b"} {
		_, err := ws.Open(notebook.OpenOptions{ID: id})
		require.NoError(t, err)
	}

	assert.Equal(t, []notebook.DocumentID{"a", "b", "c"}, ws.Documents())
	assert.False(t, notebook.DocumentID("a").IsValid())
}

func TestWorkspace_CloseDetachesEngine(t *testing.T) {
	t.Parallel()

	ws := notebook.NewWorkspace(nil, nil)
	doc, err := ws.Open(notebook.OpenOptions{ID: "nb", Text: percentDoc})
	require.NoError(t, err)
	require.NoError(t, ws.Close("nb"))

	stamp := doc.Engine.ModificationStamp()
	require.NoError(t, doc.Buffer.Insert(0, "# %%\n"))
	assert.Equal(t, stamp, doc.Engine.ModificationStamp())
}

func TestSourceFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		tokenizer config.TokenizerName
		path      string
		check     func(t *testing.T, src partition.Source)
		wantErr   error
	}{
		{
			name: "auto markdown", tokenizer: config.TokenizerAuto, path: "README.MD",
			check: func(t *testing.T, src partition.Source) {
				t.Helper()
				assert.IsType(t, &goldmark.Tokenizer{}, src)
			},
		},
		{
			name: "auto python", tokenizer: config.TokenizerAuto, path: "nb.py",
			check: func(t *testing.T, src partition.Source) {
				t.Helper()
				assert.IsType(t, &percent.Tokenizer{}, src)
			},
		},
		{
			name: "forced percent", tokenizer: config.TokenizerPercent, path: "notes.md",
			check: func(t *testing.T, src partition.Source) {
				t.Helper()
				assert.False(t, src.ShouldParseWholeFile())
			},
		},
		{name: "unknown", tokenizer: "jupytext", wantErr: notebook.ErrUnknownTokenizer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.NewConfig()
			cfg.Tokenizer = tt.tokenizer

			src, err := notebook.SourceFor(cfg, tt.path)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, src)
		})
	}
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	buf := buffer.New(percentDoc)
	opts := partition.DefaultOptions()

	inc, err := notebook.NewEngine(config.EngineIncremental, buf, percent.New(), opts)
	require.NoError(t, err)
	assert.IsType(t, &partition.Incremental{}, inc)

	ref, err := notebook.NewEngine(config.EngineReference, buf, percent.New(), opts)
	require.NoError(t, err)
	assert.IsType(t, &partition.Reference{}, ref)
	assert.Equal(t, inc.Intervals(), ref.Intervals())

	_, err = notebook.NewEngine("magic", buf, percent.New(), opts)
	require.ErrorIs(t, err, notebook.ErrUnknownEngine)
}

func TestDocument_CellsPercent(t *testing.T) {
	t.Parallel()

	ws := notebook.NewWorkspace(nil, nil)
	doc, err := ws.Open(notebook.OpenOptions{Path: "nb.py", Text: percentDoc})
	require.NoError(t, err)

	cells := doc.Cells()
	require.Len(t, cells, 2)

	assert.Equal(t, cell.KindCode, cells[0].Kind)
	assert.Equal(t, cell.LineRange{First: 0, Last: 2}, cells[0].Lines)
	assert.Equal(t, "# %%\nimport os\n", cells[0].Text)
	assert.Equal(t, "import os\n", cells[0].Body)
	assert.Equal(t, "python", cells[0].Language)

	assert.Equal(t, cell.KindMarkdown, cells[1].Kind)
	assert.Equal(t, "# Title\n", cells[1].Body)
	assert.Equal(t, "markdown", cells[1].Language)
}

func TestDocument_CellsMarkdown(t *testing.T) {
	t.Parallel()

	ws := notebook.NewWorkspace(nil, nil)
	doc, err := ws.Open(notebook.OpenOptions{Path: "README.md", Text: markdownDoc})
	require.NoError(t, err)

	var code []notebook.Cell
	for _, c := range doc.Cells() {
		if c.Kind == cell.KindCode {
			code = append(code, c)
		}
	}
	require.Len(t, code, 1)
	assert.Equal(t, cell.LineRange{First: 1, Last: 3}, code[0].Lines)
	assert.Equal(t, "go", code[0].Language)
	assert.Equal(t, "package main", code[0].Body)

	first, ok := doc.CellAt(0)
	require.True(t, ok)
	assert.Equal(t, "Intro", first.Text)
}

func TestDocument_EditsKeepPointers(t *testing.T) {
	t.Parallel()

	ws := notebook.NewWorkspace(nil, nil)
	doc, err := ws.Open(notebook.OpenOptions{Path: "nb.py", Text: percentDoc})
	require.NoError(t, err)

	second, ok := doc.Engine.IntervalAt(1)
	require.True(t, ok)
	ptr, err := doc.Pointers.Create(second)
	require.NoError(t, err)

	require.NoError(t, doc.Replace(15, 15, "x = 2\n"))

	got, ok := ptr.Get()
	require.True(t, ok)
	assert.Equal(t, cell.LineRange{First: 4, Last: 6}, got.Lines)
	assert.Equal(t, "import os\nx = 2\n", doc.Cells()[0].Body)

	require.NoError(t, doc.ApplyEdits([]buffer.TextEdit{
		{StartOffset: 0, EndOffset: 4, NewText: "# %% [raw]"},
	}))
	assert.Equal(t, cell.KindRaw, doc.Cells()[0].Kind)
	assert.Empty(t, doc.Cells()[0].Language)
	assert.Empty(t, doc.Engine.Verify())
}
