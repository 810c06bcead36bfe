package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchGlob(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		pattern string
		want    bool
	}{
		{"a.py", "*.py", true},
		{"sub/a.py", "*.py", true},
		{"sub/a.py", "sub/*", true},
		{"sub/deep/a.py", "sub/*", false},
		{"vendor", "vendor/**", true},
		{"vendor/x/y.py", "vendor/**", true},
		{"vendored/y.py", "vendor/**", false},
		{"a/b/testdata", "**/testdata", true},
		{"a/b/testdata/x.md", "**/testdata", true},
		{"a/b/x.md", "**/testdata", false},
		{"anything/at/all", "**", true},
		{"a.md", "[", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, matchGlob(tt.path, tt.pattern), "matchGlob(%q, %q)", tt.path, tt.pattern)
	}
}
