package buffer_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/nbcells/pkg/buffer"
)

func TestBuffer_LineIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		content    string
		lineCount  int
		lineStarts []int
	}{
		{"empty content", "", 1, []int{0}},
		{"single line no newline", "hello", 1, []int{0}},
		{"single line with LF", "hello\n", 2, []int{0, 6}},
		{"multiple lines", "line1\nline2\nline3", 3, []int{0, 6, 12}},
		{"only newline", "\n", 2, []int{0, 1}},
		{"blank lines", "a\n\n\nb", 4, []int{0, 2, 3, 4}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			buf := buffer.New(testCase.content)
			require.Equal(t, testCase.lineCount, buf.LineCount())
			for line, start := range testCase.lineStarts {
				assert.Equal(t, start, buf.LineStart(line), "line %d", line)
				assert.Equal(t, line, buf.LineOf(start), "offset %d", start)
			}
		})
	}
}

func TestBuffer_LineOf(t *testing.T) {
	t.Parallel()

	buf := buffer.New("line1\nline2\nline3")

	tests := []struct {
		name   string
		offset int
		line   int
	}{
		{"negative clamps to first line", -4, 0},
		{"start of file", 0, 0},
		{"newline belongs to its line", 5, 0},
		{"start of line 2", 6, 1},
		{"start of line 3", 12, 2},
		{"end of buffer", 17, 2},
		{"past end", 40, 2},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.line, buf.LineOf(testCase.offset))
		})
	}
}

func TestBuffer_LineEndAndContent(t *testing.T) {
	t.Parallel()

	buf := buffer.New("ab\n\ncd")

	assert.Equal(t, 2, buf.LineEnd(0))
	assert.Equal(t, 3, buf.LineEnd(1))
	assert.Equal(t, 6, buf.LineEnd(2))
	assert.Equal(t, "ab", buf.Line(0))
	assert.Equal(t, "", buf.Line(1))
	assert.Equal(t, "cd", buf.Line(2))
	assert.Equal(t, "", buf.Line(7))
	assert.Equal(t, "b\n", buf.Slice(1, 3))
	assert.Equal(t, "cd", buf.Slice(4, 99))
}

func TestBuffer_ReplaceKeepsLineIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		content    string
		start, end int
		text       string
		want       string
	}{
		{"insert newline", "ab\ncd", 1, 1, "\n", "a\nb\ncd"},
		{"join lines", "ab\ncd\nef", 2, 3, "", "abcd\nef"},
		{"replace across lines", "a\nb\nc\nd", 1, 5, "X\nY\nZ", "aX\nY\nZ\nd"},
		{"append at end", "a\n", 2, 2, "b\n", "a\nb\n"},
		{"clear", "a\nb", 0, 3, "", ""},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			buf := buffer.New(testCase.content)
			require.NoError(t, buf.Replace(testCase.start, testCase.end, testCase.text))
			assert.Equal(t, testCase.want, buf.Text())
			assertSameIndex(t, buffer.New(testCase.want), buf)
			assert.Equal(t, uint64(1), buf.Stamp())
		})
	}
}

func TestBuffer_ReplaceRejectsInvalidRange(t *testing.T) {
	t.Parallel()

	buf := buffer.New("abc")

	var validationErr *buffer.ValidationError
	require.ErrorAs(t, buf.Replace(2, 1, "x"), &validationErr)
	require.ErrorAs(t, buf.Replace(0, 4, "x"), &validationErr)
	require.ErrorAs(t, buf.Replace(-1, 0, "x"), &validationErr)
	assert.Equal(t, "abc", buf.Text())
	assert.Equal(t, uint64(0), buf.Stamp())
}

type recordingListener struct {
	before  []string
	after   []string
	failing bool
	buf     *buffer.Buffer
}

func (r *recordingListener) BeforeChange(buffer.Event) error {
	r.before = append(r.before, r.buf.Text())
	return nil
}

func (r *recordingListener) Changed(buffer.Event) error {
	r.after = append(r.after, r.buf.Text())
	if r.failing {
		return errors.New("listener failed")
	}
	return nil
}

func TestBuffer_ListenersSeeBeforeAndAfter(t *testing.T) {
	t.Parallel()

	buf := buffer.New("abc")
	first := &recordingListener{buf: buf}
	second := &recordingListener{buf: buf, failing: true}
	buf.AddListener(first)
	buf.AddListener(second)

	err := buf.Insert(1, "X")
	require.Error(t, err)
	assert.Equal(t, "aXbc", buf.Text(), "edit is applied even when a listener fails")
	assert.Equal(t, []string{"abc"}, first.before)
	assert.Equal(t, []string{"aXbc"}, first.after)

	assert.True(t, buf.RemoveListener(second))
	assert.False(t, buf.RemoveListener(second))
	require.NoError(t, buf.Delete(0, 1))
	assert.Len(t, second.after, 1)
	assert.Len(t, first.after, 2)
}

func TestBuffer_ApplyEdits(t *testing.T) {
	t.Parallel()

	buf := buffer.New("one\ntwo\nthree\n")
	err := buf.ApplyEdits([]buffer.TextEdit{
		{StartOffset: 8, EndOffset: 13, NewText: "3"},
		{StartOffset: 0, EndOffset: 3, NewText: "1"},
		{StartOffset: 4, EndOffset: 4, NewText: "2\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, "1\n2\ntwo\n3\n", buf.Text())
	assertSameIndex(t, buffer.New(buf.Text()), buf)

	var conflict *buffer.ConflictError
	err = buf.ApplyEdits([]buffer.TextEdit{
		{StartOffset: 0, EndOffset: 3, NewText: ""},
		{StartOffset: 2, EndOffset: 4, NewText: ""},
	})
	require.ErrorAs(t, err, &conflict)
}

func TestEvent(t *testing.T) {
	t.Parallel()

	e := buffer.Event{Offset: 4, OldLength: 2, NewLength: 5}
	assert.Equal(t, 6, e.OldEnd())
	assert.Equal(t, 9, e.NewEnd())
	assert.Equal(t, 3, e.Delta())
}

func assertSameIndex(t *testing.T, want, got *buffer.Buffer) {
	t.Helper()

	require.Equal(t, want.LineCount(), got.LineCount(), "line count")
	for line := range want.LineCount() {
		assert.Equal(t, want.LineStart(line), got.LineStart(line), "start of line %d", line)
		assert.Equal(t, want.LineEnd(line), got.LineEnd(line), "end of line %d", line)
	}
}
