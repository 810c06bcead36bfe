package buffer_test

import (
	"testing"

	"github.com/yaklabco/nbcells/pkg/buffer"
)

func FuzzReplace(f *testing.F) {
	f.Add("", 0, 0, "")
	f.Add("a\nb\nc", 1, 3, "\n\n")
	f.Add("line1\nline2\n", 5, 6, "")
	f.Add("\n\n\n", 0, 3, "x")
	f.Add("abc", 3, 3, "\n")

	f.Fuzz(func(t *testing.T, content string, start, end int, text string) {
		if start < 0 || end < start || end > len(content) {
			return
		}

		buf := buffer.New(content)
		if err := buf.Replace(start, end, text); err != nil {
			t.Fatalf("Replace() error = %v", err)
		}

		fresh := buffer.New(buf.Text())
		if fresh.LineCount() != buf.LineCount() {
			t.Fatalf("line count = %d, want %d", buf.LineCount(), fresh.LineCount())
		}
		for line := range fresh.LineCount() {
			if fresh.LineStart(line) != buf.LineStart(line) {
				t.Fatalf("line %d starts at %d, want %d", line, buf.LineStart(line), fresh.LineStart(line))
			}
		}
	})
}
