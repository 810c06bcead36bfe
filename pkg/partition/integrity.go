package partition

import (
	"fmt"

	"github.com/yaklabco/nbcells/internal/logging"
	"github.com/yaklabco/nbcells/pkg/buffer"
	"github.com/yaklabco/nbcells/pkg/cell"
)

// Violation is one broken partition invariant.
type Violation struct {
	// Rule names the invariant, e.g. "marker-ordinal" or "interval-gap".
	Rule string
	// Index is the offending marker or interval index, or -1.
	Index   int
	Message string
}

func (v Violation) Error() string {
	if v.Index < 0 {
		return v.Rule + ": " + v.Message
	}
	return fmt.Sprintf("%s at %d: %s", v.Rule, v.Index, v.Message)
}

// CheckIntegrity verifies markers and intervals against a buffer of docLen
// characters and lineCount lines. It returns nil when everything holds.
func CheckIntegrity(markers []cell.Marker, intervals []cell.Interval, docLen, lineCount int) []Violation {
	var out []Violation
	report := func(rule string, idx int, format string, args ...any) {
		out = append(out, Violation{Rule: rule, Index: idx, Message: fmt.Sprintf(format, args...)})
	}

	for idx, m := range markers {
		if m.Ordinal != idx {
			report("marker-ordinal", idx, "ordinal %d", m.Ordinal)
		}
		if m.Length < 0 {
			report("marker-length", idx, "negative length %d", m.Length)
		}
		if m.Offset < 0 || m.End() > docLen {
			report("marker-bounds", idx, "%s outside buffer of length %d", m, docLen)
		}
		if idx > 0 {
			prev := markers[idx-1]
			if m.Offset <= prev.Offset {
				report("marker-order", idx, "%s does not follow %s", m, prev)
			} else if prev.End() > m.Offset {
				report("marker-overlap", idx, "%s overlaps %s", m, prev)
			}
		}
	}

	if len(intervals) == 0 {
		report("interval-empty", -1, "no intervals for %d lines", lineCount)
		return out
	}

	if intervals[0].Lines.First != 0 {
		report("interval-start", 0, "first interval starts at line %d", intervals[0].Lines.First)
	}
	for idx, iv := range intervals {
		if iv.Ordinal != idx {
			report("interval-ordinal", idx, "ordinal %d", iv.Ordinal)
		}
		if iv.Lines.Last < iv.Lines.First {
			report("interval-range", idx, "inverted lines %s", iv.Lines)
		}
		if idx > 0 {
			prev := intervals[idx-1]
			if prev.Lines.Last+1 != iv.Lines.First {
				report("interval-gap", idx, "%s does not continue %s", iv.Lines, prev.Lines)
			}
		}
	}
	if last := intervals[len(intervals)-1]; last.Lines.Last != max(lineCount, 1)-1 {
		report("interval-end", len(intervals)-1, "last interval ends at line %d of %d", last.Lines.Last, lineCount)
	}

	return out
}

// checkIntegrity logs violations after an update. Callers hold the write lock.
func (c *core) checkIntegrity(event buffer.Event) {
	if !c.opts.CheckIntegrity {
		return
	}

	violations := CheckIntegrity(c.cache.markers, c.intervals, c.doc.Len(), c.doc.LineCount())
	if len(violations) == 0 {
		return
	}

	keyvals := []any{
		logging.FieldViolations, len(violations),
		logging.FieldError, violations[0].Error(),
		logging.FieldOffset, event.Offset,
		logging.FieldOldLength, event.OldLength,
		logging.FieldNewLength, event.NewLength,
	}
	if c.opts.Dump {
		keyvals = append(keyvals,
			logging.FieldMarkers, dumpMarkers(c.cache.markers),
			logging.FieldIntervals, dumpIntervals(c.intervals),
			logging.FieldText, c.doc.Slice(0, c.doc.Len()),
		)
	}
	c.logger.Error("partition integrity violated", keyvals...)
	for _, v := range violations[1:] {
		c.logger.Debug("partition integrity violated", logging.FieldError, v.Error())
	}
}
