package partition

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/nbcells/internal/logging"
	"github.com/yaklabco/nbcells/pkg/buffer"
	"github.com/yaklabco/nbcells/pkg/cell"
)

// Incremental is the engine that re-lexes only the lines an edit touched.
type Incremental struct {
	*core

	// previousEnd is the end offset, in pre-edit coordinates, of the last
	// line the pending edit touches.
	previousEnd int
}

var _ Engine = (*Incremental)(nil)

// NewIncremental builds the initial partition of doc. Register the result with
// the buffer to keep it current.
func NewIncremental(doc Document, src Source, opts Options) (*Incremental, error) {
	c, err := newCore(doc, src, opts)
	if err != nil {
		return nil, err
	}
	return &Incremental{core: c}, nil
}

// BeforeChange records the pre-edit extent of the edited lines.
func (p *Incremental) BeforeChange(event buffer.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.previousEnd = p.doc.LineEnd(p.doc.LineOf(event.OldEnd()))
	return nil
}

// Changed brings markers and intervals up to date with the applied edit and
// notifies listeners. A tokenizer error is returned as is and leaves the
// partition as it was before the edit.
func (p *Incremental) Changed(event buffer.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.recoverUpdate(event)

	upd, err := p.updateMarkers(event)
	if err != nil {
		return err
	}

	old, fresh, intervalsChanged := p.syncIntervals(upd)
	if upd.changed || intervalsChanged {
		p.stamp++
	}

	if p.logger.GetLevel() <= log.DebugLevel {
		p.logger.Debug("partition updated",
			logging.FieldOffset, event.Offset,
			logging.FieldOldLength, event.OldLength,
			logging.FieldNewLength, event.NewLength,
			logging.FieldCutStart, upd.cutStart,
			logging.FieldCutEnd, upd.cutEnd,
			logging.FieldInserted, upd.inserted,
			logging.FieldStamp, p.stamp,
		)
	}

	if !slices.Equal(old, fresh) {
		p.notify(old, fresh)
	}
	p.checkIntegrity(event)
	return nil
}

// markerUpdate records how one edit rewrote the marker cache.
type markerUpdate struct {
	// cutStart and cutEnd bound the replaced cache range [cutStart, cutEnd).
	cutStart, cutEnd int
	// inserted is the number of freshly lexed markers placed at cutStart.
	inserted int
	// hadStart and hasStart report whether a synthetic start marker framed
	// the cache before and after the edit.
	hadStart, hasStart bool
	// firstChanged is the window index of the first fresh marker that differs
	// from the one it replaced, or -1.
	firstChanged int
	changed      bool
}

func (p *Incremental) updateMarkers(event buffer.Event) (markerUpdate, error) {
	var windowStart, windowEnd, cutStart, cutEnd int
	if p.source.ShouldParseWholeFile() {
		windowStart, windowEnd = 0, p.doc.Len()
		cutStart, cutEnd = 0, len(p.cache.markers)
	} else {
		windowStart = p.doc.LineStart(p.doc.LineOf(event.Offset))
		windowEnd = p.doc.LineEnd(p.doc.LineOf(event.NewEnd()))
		if windowEnd < p.doc.Len() {
			// Include the line break so the last touched line is lexed whole.
			windowEnd++
		}
		cutStart = p.cache.firstAtOrAfter(windowStart)
		cutEnd = max(cutStart, p.cache.firstAfter(p.previousEnd))
	}

	fresh, err := collectMarkers(p.source, p.doc.Slice(windowStart, windowEnd), cutStart, windowStart)
	if err != nil {
		return markerUpdate{}, err
	}

	upd := markerUpdate{
		cutStart:     cutStart,
		cutEnd:       cutEnd,
		inserted:     len(fresh),
		hadStart:     needsStartMarker(p.cache.markers),
		firstChanged: firstDifference(p.cache.markers[cutStart:cutEnd], fresh),
	}
	tail := len(p.cache.markers) - cutEnd

	p.cache.splice(cutStart, cutEnd, fresh)
	p.cache.shiftFrom(cutStart+len(fresh), event.Delta())

	upd.hasStart = needsStartMarker(p.cache.markers)
	upd.changed = upd.firstChanged >= 0 || (event.Delta() != 0 && tail > 0)
	return upd, nil
}

// syncIntervals rebuilds the intervals bounded by the rewritten markers,
// renumbers and shifts the ones after them, and returns the trimmed diff.
func (p *Incremental) syncIntervals(upd markerUpdate) ([]cell.Interval, []cell.Interval, bool) {
	bOld, bNew := boolToInt(upd.hadStart), boolToInt(upd.hasStart)

	// Interval first is opened by the last marker before the window; when the
	// window starts at the first marker the synthetic start may come or go.
	first := 0
	if upd.cutStart > 0 {
		first = upd.cutStart + bOld - 1
	}
	oldCount := upd.cutEnd + bOld - first
	newCount := upd.cutStart + upd.inserted + bNew - first

	docLen := p.doc.Len()
	adjusted := make([]cell.Marker, 0, newCount+1)
	for idx := first; idx <= first+newCount; idx++ {
		adjusted = append(adjusted, adjustedAt(p.cache.markers, docLen, idx))
	}
	fresh := buildIntervals(p.doc, adjusted, first)
	old := slices.Clone(p.intervals[first : first+oldCount])

	lineCount := p.doc.LineCount()
	lineDelta := lineCount - p.lineCount
	p.lineCount = lineCount

	changed := !slices.Equal(old, fresh)
	if changed {
		p.intervals = slices.Replace(p.intervals, first, first+oldCount, fresh...)
	}
	if changed || lineDelta != 0 {
		for idx := first + newCount; idx < len(p.intervals); idx++ {
			p.intervals[idx] = p.intervals[idx].Shift(idx-p.intervals[idx].Ordinal, lineDelta)
		}
	}

	protected := -1
	if upd.firstChanged >= 0 && upd.firstChanged < upd.inserted {
		protected = upd.cutStart + upd.firstChanged + bNew
	}
	old, fresh = trimChange(old, fresh, protected)
	return old, fresh, changed || lineDelta != 0
}

// trimChange drops the unchanged prefix and the merely shifted suffix of a
// diff. The interval opened by the first rewritten marker is kept even when
// it compares equal, so listeners learn that its boundary was re-lexed.
func trimChange(old, fresh []cell.Interval, protected int) ([]cell.Interval, []cell.Interval) {
	for len(old) > 0 && len(fresh) > 0 && old[0] == fresh[0] && fresh[0].Ordinal != protected {
		old, fresh = old[1:], fresh[1:]
	}
	for len(old) > 0 && len(fresh) > 0 && old[len(old)-1].SameShape(fresh[len(fresh)-1]) {
		old, fresh = old[:len(old)-1], fresh[:len(fresh)-1]
	}
	return old, fresh
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
