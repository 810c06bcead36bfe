package partition

import (
	"fmt"
	"strings"

	"github.com/yaklabco/nbcells/pkg/buffer"
	"github.com/yaklabco/nbcells/pkg/cell"
)

// UpdateError wraps a failure raised while an engine applied an edit. It is
// re-panicked so the host sees the offending edit next to the engine state.
type UpdateError struct {
	Cause     any
	Event     buffer.Event
	Markers   string
	Intervals string
	Text      string
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("partition update at offset %d (-%d +%d) failed: %v",
		e.Event.Offset, e.Event.OldLength, e.Event.NewLength, e.Cause)
}

// Unwrap returns the cause when it is an error.
func (e *UpdateError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// recoverUpdate must be deferred directly by the update method.
func (c *core) recoverUpdate(event buffer.Event) {
	r := recover()
	if r == nil {
		return
	}
	panic(&UpdateError{
		Cause:     r,
		Event:     event,
		Markers:   dumpMarkers(c.cache.markers),
		Intervals: dumpIntervals(c.intervals),
		Text:      c.doc.Slice(0, c.doc.Len()),
	})
}

func dumpMarkers(markers []cell.Marker) string {
	var sb strings.Builder
	for idx, m := range markers {
		if idx > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(m.String())
	}
	return sb.String()
}

func dumpIntervals(intervals []cell.Interval) string {
	var sb strings.Builder
	for idx, iv := range intervals {
		if idx > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(iv.String())
	}
	return sb.String()
}
