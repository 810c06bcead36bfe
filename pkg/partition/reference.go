package partition

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/nbcells/internal/logging"
	"github.com/yaklabco/nbcells/pkg/buffer"
	"github.com/yaklabco/nbcells/pkg/cell"
)

// Reference is the engine that rebuilds the whole partition on every edit.
type Reference struct {
	*core

	// affected holds the pre-edit lines the pending edit touches.
	affected cell.LineRange
}

var _ Engine = (*Reference)(nil)

// NewReference builds the initial partition of doc.
func NewReference(doc Document, src Source, opts Options) (*Reference, error) {
	c, err := newCore(doc, src, opts)
	if err != nil {
		return nil, err
	}
	return &Reference{core: c}, nil
}

// BeforeChange records the lines the edit is about to touch.
func (p *Reference) BeforeChange(event buffer.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.affected = cell.LineRange{
		First: p.doc.LineOf(event.Offset),
		Last:  p.doc.LineOf(event.OldEnd()),
	}
	return nil
}

// Changed re-lexes the whole buffer and reports the difference.
func (p *Reference) Changed(event buffer.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.recoverUpdate(event)

	stamp := p.stamp
	previous, err := p.rebuild()
	if err != nil {
		return err
	}

	if p.stamp != stamp && p.logger.GetLevel() <= log.DebugLevel {
		p.logger.Debug("partition rebuilt",
			logging.FieldOffset, event.Offset,
			logging.FieldMarkers, len(p.cache.markers),
			logging.FieldIntervals, len(p.intervals),
			logging.FieldStamp, p.stamp,
		)
	}

	if !slices.Equal(previous, p.intervals) {
		affected := cell.LineRange{
			First: p.doc.LineOf(event.Offset),
			Last:  p.doc.LineOf(event.NewEnd()),
		}
		old, fresh := trimAround(previous, p.intervals, p.affected, affected)
		if !slices.Equal(old, fresh) {
			p.notify(old, slices.Clone(fresh))
		}
	}

	p.checkIntegrity(event)
	return nil
}

// trimAround drops leading and trailing intervals that lie outside the edited
// lines on both sides and are equal (leading) or the same shape (trailing).
func trimAround(old, fresh []cell.Interval, oldAffected, newAffected cell.LineRange) ([]cell.Interval, []cell.Interval) {
	for len(old) > 0 && len(fresh) > 0 &&
		old[0] == fresh[0] &&
		!old[0].Lines.Intersects(oldAffected) && !fresh[0].Lines.Intersects(newAffected) {
		old, fresh = old[1:], fresh[1:]
	}
	for len(old) > 0 && len(fresh) > 0 {
		lo, ln := old[len(old)-1], fresh[len(fresh)-1]
		if !lo.SameShape(ln) || lo.Lines.Intersects(oldAffected) || ln.Lines.Intersects(newAffected) {
			break
		}
		old, fresh = old[:len(old)-1], fresh[:len(fresh)-1]
	}
	return old, fresh
}
