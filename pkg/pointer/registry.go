package pointer

import (
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/nbcells/internal/logging"
	"github.com/yaklabco/nbcells/pkg/cell"
	"github.com/yaklabco/nbcells/pkg/partition"
)

// Partition is what the registry needs from an engine.
type Partition interface {
	Intervals() []cell.Interval
	AddListener(l partition.Listener)
}

// Registry owns one pointer per interval of a partition and keeps them
// current as change notifications arrive.
type Registry struct {
	mu       sync.Mutex
	source   Partition
	logger   *log.Logger
	pointers []*Pointer
	pending  []Hint
}

var _ partition.Listener = (*Registry)(nil)

// New creates a registry for p and subscribes it to p's changes.
func New(p Partition, logger *log.Logger) *Registry {
	intervals := p.Intervals()
	r := &Registry{
		source:   p,
		logger:   logging.OrDiscard(logger),
		pointers: make([]*Pointer, 0, len(intervals)),
	}
	for _, iv := range intervals {
		r.pointers = append(r.pointers, newPointer(iv))
	}
	p.AddListener(r)
	return r
}

// Len returns the number of live pointers, one per interval.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pointers)
}

// Create returns the pointer for iv. The interval must be the current one at
// iv.Ordinal; anything else means the caller holds a stale value.
func (r *Registry) Create(iv cell.Interval) (*Pointer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if iv.Ordinal < 0 || iv.Ordinal >= len(r.pointers) {
		return nil, fmt.Errorf("%w: ordinal %d out of %d intervals", ErrStaleInterval, iv.Ordinal, len(r.pointers))
	}
	p := r.pointers[iv.Ordinal]
	if current, ok := p.Get(); !ok || current != iv {
		return nil, fmt.Errorf("%w: have %s, registry holds %s", ErrStaleInterval, iv, p)
	}
	return p, nil
}

// MustCreate is Create for callers that treat a stale interval as a bug.
func (r *Registry) MustCreate(iv cell.Interval) *Pointer {
	p, err := r.Create(iv)
	if err != nil {
		panic(err)
	}
	return p
}

// WithHints runs action with hints queued for the change it causes. When the
// action changes the partition, the hints are applied as part of the first
// change notification. When it does not, they are applied once it returns,
// unless it failed, in which case they are dropped. Reuse hints for pointers
// that are already invalid are ignored.
func (r *Registry) WithHints(hints []Hint, action func() error) error {
	r.mu.Lock()
	for _, h := range hints {
		if h.kind == hintReuse && !h.pointer.Valid() {
			continue
		}
		r.pending = append(r.pending, h)
	}
	r.mu.Unlock()

	err := action()

	// Read the partition before taking the registry lock; notifications
	// take the locks in the opposite order.
	intervals := r.source.Intervals()

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) == 0 {
		return err
	}
	if err == nil {
		r.applyHints(sliceReader(intervals), r.pending)
	}
	r.pending = nil
	return err
}

// SegmentChanged updates pointers for a partition change.
func (r *Registry) SegmentChanged(change partition.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, fresh := change.Old, change.New
	if len(old) == 1 && len(fresh) == 1 && old[0].Kind == fresh[0].Kind {
		r.pointers[old[0].Ordinal].set(fresh[0])
		r.repoint(change.Current, old[0].Ordinal+1)
	} else {
		pos := firstOrdinal(old, fresh)
		r.replace(pos, len(old), fresh)
		r.repoint(change.Current, pos+len(fresh))
	}

	if len(r.pending) > 0 {
		r.applyHints(change.Current, r.pending)
		r.pending = nil
	}
}

// replace invalidates count pointers from pos and splices in fresh ones.
// Pointers named by pending Reuse hints survive detached.
func (r *Registry) replace(pos, count int, fresh []cell.Interval) {
	for _, p := range r.pointers[pos : pos+count] {
		if !r.reusing(p) {
			p.invalidate()
		}
	}

	created := make([]*Pointer, 0, len(fresh))
	for _, iv := range fresh {
		created = append(created, newPointer(iv))
	}
	r.pointers = slices.Replace(r.pointers, pos, pos+count, created...)

	r.logger.Debug("pointers replaced",
		logging.FieldOld, count,
		logging.FieldNew, len(fresh),
		logging.FieldIntervals, len(r.pointers),
	)
}

// repoint rebinds every pointer from ordinal from to the current intervals.
func (r *Registry) repoint(current partition.Reader, from int) {
	idx := from
	for iv := range current.IntervalsFrom(from) {
		if idx >= len(r.pointers) {
			break
		}
		r.pointers[idx].set(iv)
		idx++
	}
	if count := current.IntervalCount(); count != len(r.pointers) {
		r.logger.Error("pointer registry out of step with partition",
			logging.FieldIntervals, count,
			logging.FieldPointers, len(r.pointers),
		)
	}
}

func (r *Registry) applyHints(current partition.Reader, hints []Hint) {
	// Detach every reused pointer first so reuse targets can swap.
	for _, h := range hints {
		if h.kind != hintReuse {
			continue
		}
		if idx := r.indexOf(h.pointer); idx >= 0 {
			r.pointers[idx] = r.freshAt(current, idx)
		}
	}

	for _, h := range hints {
		switch h.kind {
		case hintReuse:
			iv, ok := current.IntervalAt(h.ordinal)
			if !ok || h.ordinal >= len(r.pointers) {
				r.logger.Warn("reuse hint past last interval", logging.FieldHint, h.String())
				h.pointer.invalidate()
				continue
			}
			if displaced := r.pointers[h.ordinal]; displaced != h.pointer {
				displaced.invalidate()
			}
			h.pointer.set(iv)
			r.pointers[h.ordinal] = h.pointer
		case hintInvalidate:
			idx := r.indexOf(h.pointer)
			h.pointer.invalidate()
			if idx >= 0 {
				r.pointers[idx] = r.freshAt(current, idx)
			}
		}
	}
}

func (r *Registry) freshAt(current partition.Reader, idx int) *Pointer {
	iv, _ := current.IntervalAt(idx)
	return newPointer(iv)
}

func (r *Registry) indexOf(p *Pointer) int {
	return slices.Index(r.pointers, p)
}

func (r *Registry) reusing(p *Pointer) bool {
	return slices.ContainsFunc(r.pending, func(h Hint) bool {
		return h.kind == hintReuse && h.pointer == p
	})
}

func firstOrdinal(old, fresh []cell.Interval) int {
	if len(old) > 0 {
		return old[0].Ordinal
	}
	return fresh[0].Ordinal
}

// sliceReader serves a snapshot taken outside the notification path.
type sliceReader []cell.Interval

func (s sliceReader) IntervalCount() int { return len(s) }

func (s sliceReader) IntervalAt(ordinal int) (cell.Interval, bool) {
	if ordinal < 0 || ordinal >= len(s) {
		return cell.Interval{}, false
	}
	return s[ordinal], true
}

func (s sliceReader) IntervalsFrom(ordinal int) iter.Seq[cell.Interval] {
	return func(yield func(cell.Interval) bool) {
		for idx := max(0, ordinal); idx < len(s); idx++ {
			if !yield(s[idx]) {
				return
			}
		}
	}
}
