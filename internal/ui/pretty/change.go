package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/yaklabco/nbcells/pkg/cell"
	"github.com/yaklabco/nbcells/pkg/partition"
)

// FormatInterval renders one interval as "#ord kind first..last".
func (s *Styles) FormatInterval(iv cell.Interval) string {
	return fmt.Sprintf("%s %s %s",
		s.Ordinal.Render("#"+strconv.Itoa(iv.Ordinal)),
		s.KindStyle(iv.Kind).Render(iv.Kind.String()),
		s.Lines.Render(iv.Lines.String()),
	)
}

// FormatChange renders a change notification: the replaced intervals
// prefixed with "-" and their replacements with "+".
func (s *Styles) FormatChange(change partition.Change) string {
	var builder strings.Builder

	builder.WriteString(s.Stamp.Render(fmt.Sprintf("stamp %d", change.Stamp)))
	builder.WriteString("\n")

	for _, iv := range change.Old {
		builder.WriteString("  " + s.DiffRemove.Render("-") + " " + s.FormatInterval(iv) + "\n")
	}
	for _, iv := range change.New {
		builder.WriteString("  " + s.DiffAdd.Render("+") + " " + s.FormatInterval(iv) + "\n")
	}

	return builder.String()
}

// FormatEdit renders one replacement as "step N: [start,end) -> text".
func (s *Styles) FormatEdit(step, start, end int, text string) string {
	return fmt.Sprintf("%s [%d,%d) %s %s\n",
		s.Bold.Render(fmt.Sprintf("step %d:", step)),
		start, end,
		s.Dim.Render("->"),
		strconv.Quote(text),
	)
}

// FormatViolations renders integrity violations, one per line.
func (s *Styles) FormatViolations(violations []partition.Violation) string {
	var builder strings.Builder
	for _, v := range violations {
		builder.WriteString("  " + s.Error.Render(v.Rule) + " " + v.Message)
		if v.Index >= 0 {
			builder.WriteString(s.Dim.Render(fmt.Sprintf(" (at %d)", v.Index)))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

// FormatTextDiff renders a line diff between two texts.
func (s *Styles) FormatTextDiff(oldLabel, newLabel, oldText, newText string) string {
	dmp := diffmatchpatch.New()
	oldRunes, newRunes, lines := dmp.DiffLinesToRunes(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(oldRunes, newRunes, false), lines)

	var builder strings.Builder
	builder.WriteString(s.DiffHeader.Render("--- "+oldLabel) + "\n")
	builder.WriteString(s.DiffHeader.Render("+++ "+newLabel) + "\n")

	for _, d := range diffs {
		prefix, style := "  ", s.DiffContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix, style = "+ ", s.DiffAdd
		case diffmatchpatch.DiffDelete:
			prefix, style = "- ", s.DiffRemove
		case diffmatchpatch.DiffEqual:
		}
		for _, line := range strings.SplitAfter(strings.TrimSuffix(d.Text, "\n"), "\n") {
			builder.WriteString(style.Render(prefix+strings.TrimSuffix(line, "\n")) + "\n")
		}
	}

	return builder.String()
}

// FormatReplaySummary formats the outcome of an edit script.
func (s *Styles) FormatReplaySummary(steps, changes, failures int, stamp uint64) string {
	parts := []string{
		fmt.Sprintf("%d steps", steps),
		fmt.Sprintf("%d changes", changes),
		fmt.Sprintf("stamp %d", stamp),
	}

	status := s.Success.Render("ok")
	if failures > 0 {
		status = s.Failure.Render(fmt.Sprintf("%d failures", failures))
	}

	return " " + strings.Join(parts, " | ") + " | " + status + "\n"
}
