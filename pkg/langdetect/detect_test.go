package langdetect_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/nbcells/pkg/langdetect"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"shebang bash", "#!/bin/bash\necho hello", "bash"},
		{"shebang python", "#!/usr/bin/env python3\nprint('hello')", "python"},
		{"bash magic", "%%bash\nls -la", "bash"},
		{"sql magic", "\n%%sql postgresql://\nSELECT 1", "sql"},
		{"pip escape", "!pip install numpy", "python"},
		{"unknown magic falls through", "%%timeit\nx = [i for i in range(10)]", "text"},
		{"go code", "package main\n\nfunc main() {\n\tfmt.Println(\"hello\")\n}", "go"},
		{"python code", "def foo():\n    pass\n\nif __name__ == '__main__':\n    foo()", "python"},
		{"python imports", "import numpy as np\nfrom pandas import DataFrame", "python"},
		{"r code", "library(ggplot2)\nx <- c(1, 2, 3)", "r"},
		{"javascript code", "const x = () => { return 42; };\nconsole.log(x());", "javascript"},
		{"json object", `{"key": "value", "number": 123}`, "json"},
		{"yaml content", "key: value\nother: 123\nlist:\n  - item1\n  - item2", "yaml"},
		{"rust code", "fn main() {\n    println!(\"Hello, world!\");\n}", "rust"},
		{"sql query", "SELECT * FROM users WHERE id = 1;", "sql"},
		{"html content", "<!DOCTYPE html>\n<html>\n<body></body>\n</html>", "html"},
		{"dockerfile", "FROM golang:1.21\nWORKDIR /app\nCOPY . .\nRUN go build", "dockerfile"},
		{"plain text fallback", "just some text without any code patterns", "text"},
		{"empty content fallback", "", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, langdetect.Detect([]byte(tt.content)))
		})
	}
}

func TestDetect_MagicTakesPrecedence(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "bash", langdetect.Detect([]byte("%%bash\ndef foo():\n    pass")))
	assert.Equal(t, "bash", langdetect.Detect([]byte("#!/bin/bash\ndef foo():\n    pass")))
}

func TestDetector_Memoizes(t *testing.T) {
	t.Parallel()

	detector := langdetect.NewDetector(time.Minute, time.Minute)
	code := []byte("package main\n")

	assert.Equal(t, "go", detector.Detect(code))
	assert.Equal(t, "go", detector.Detect(code))
	assert.Equal(t, 1, detector.Len())

	assert.Equal(t, "text", detector.Detect([]byte("hello")))
	assert.Equal(t, 2, detector.Len())
}
