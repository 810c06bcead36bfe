package goldmark

import "strings"

const minFenceLength = 3

// parseFence recognizes an opening code fence line.
func parseFence(line string) (byte, int, string, bool) {
	line = strings.TrimSuffix(line, "\r")

	indent := 0
	for indent < len(line) && indent < 4 && line[indent] == ' ' {
		indent++
	}
	if indent > 3 {
		return 0, 0, "", false
	}
	line = line[indent:]
	if line == "" || (line[0] != '`' && line[0] != '~') {
		return 0, 0, "", false
	}

	char := line[0]
	n := 0
	for n < len(line) && line[n] == char {
		n++
	}
	if n < minFenceLength {
		return 0, 0, "", false
	}

	info := strings.TrimSpace(line[n:])
	if char == '`' && strings.ContainsRune(info, '`') {
		return 0, 0, "", false
	}
	return char, n, info, true
}

func isClosingFence(line string, char byte, length int) bool {
	c, n, info, ok := parseFence(line)
	return ok && c == char && n >= length && info == ""
}

// Language returns the language named by an opening fence line, such as
// "python" for "```python title=x" or "r" for "```{r}".
func Language(line string) (string, bool) {
	_, _, info, ok := parseFence(line)
	if !ok || info == "" {
		return "", false
	}
	word, _, _ := strings.Cut(info, " ")
	word = strings.Trim(word, "{}")
	word, _, _ = strings.Cut(word, ",")
	return strings.ToLower(word), word != ""
}

// IsFence reports whether line is a code fence line, opening or closing.
func IsFence(line string) bool {
	_, _, _, ok := parseFence(line)
	return ok
}
