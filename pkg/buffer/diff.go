package buffer

import "github.com/sergi/go-diff/diffmatchpatch"

// DiffEdit returns the single replacement that turns oldText into newText,
// spanning from the first to the last differing byte. It reports false when
// the texts are equal.
func DiffEdit(oldText, newText string) (TextEdit, bool) {
	if oldText == newText {
		return TextEdit{}, false
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)

	prefix, suffix := 0, 0
	if len(diffs) > 0 && diffs[0].Type == diffmatchpatch.DiffEqual {
		prefix = len(diffs[0].Text)
	}
	if n := len(diffs); n > 1 && diffs[n-1].Type == diffmatchpatch.DiffEqual {
		suffix = len(diffs[n-1].Text)
	}

	return TextEdit{
		StartOffset: prefix,
		EndOffset:   len(oldText) - suffix,
		NewText:     newText[prefix : len(newText)-suffix],
	}, true
}
