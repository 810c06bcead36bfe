package partition

import (
	"iter"
	"slices"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/nbcells/internal/logging"
	"github.com/yaklabco/nbcells/pkg/buffer"
	"github.com/yaklabco/nbcells/pkg/cell"
)

// Reader is the read-only view of a partition.
type Reader interface {
	IntervalCount() int
	IntervalAt(ordinal int) (cell.Interval, bool)
	IntervalsFrom(ordinal int) iter.Seq[cell.Interval]
}

// Engine maintains the partition of one buffer. Register it with the buffer
// (buffer.AddListener) so it sees every edit.
type Engine interface {
	buffer.Listener
	Reader

	// ModificationStamp increases once per edit that changed markers or intervals.
	ModificationStamp() uint64
	// Intervals returns a copy of the current interval list.
	Intervals() []cell.Interval
	// Markers returns a copy of the cached marker list.
	Markers() []cell.Marker
	IntervalAtLine(line int) (cell.Interval, bool)
	IntervalsFromLine(line int) iter.Seq[cell.Interval]
	MarkersFrom(offset int) iter.Seq[cell.Marker]
	AddListener(l Listener)
	// Verify runs the integrity check against the current state.
	Verify() []Violation
}

// Change describes one reported partition update. Old holds the intervals
// as they were before the edit and New the intervals that replaced them;
// both carry their own ordinals. Intervals outside the pair were at most
// renumbered or shifted by whole lines.
type Change struct {
	Old   []cell.Interval
	New   []cell.Interval
	Stamp uint64
	// Current reads the post-edit partition. Valid only during the callback.
	Current Reader
}

// Listener receives partition changes.
type Listener interface {
	SegmentChanged(change Change)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(change Change)

// SegmentChanged calls f(change).
func (f ListenerFunc) SegmentChanged(change Change) {
	f(change)
}

// Options configures an engine.
type Options struct {
	// Logger receives debug traces and integrity violations. Nil discards.
	Logger *log.Logger
	// SearchThreshold is the marker count above which lookups use binary
	// search. Zero means DefaultSearchThreshold.
	SearchThreshold int
	// CheckIntegrity runs the integrity check after every update.
	CheckIntegrity bool
	// Dump attaches marker, interval and text dumps to violation logs.
	Dump bool
}

// DefaultOptions returns options with integrity checking and dumps enabled.
func DefaultOptions() Options {
	return Options{
		SearchThreshold: DefaultSearchThreshold,
		CheckIntegrity:  true,
		Dump:            true,
	}
}

// core is the state and query surface shared by both engines.
type core struct {
	mu        sync.RWMutex
	doc       Document
	source    Source
	opts      Options
	logger    *log.Logger
	cache     markerCache
	intervals []cell.Interval
	lineCount int
	stamp     uint64
	listeners []Listener
}

func newCore(doc Document, src Source, opts Options) (*core, error) {
	if opts.SearchThreshold <= 0 {
		opts.SearchThreshold = DefaultSearchThreshold
	}

	markers, err := collectMarkers(src, doc.Slice(0, doc.Len()), 0, 0)
	if err != nil {
		return nil, err
	}

	return &core{
		doc:       doc,
		source:    src,
		opts:      opts,
		logger:    logging.OrDiscard(opts.Logger),
		cache:     markerCache{markers: markers, searchThreshold: opts.SearchThreshold},
		intervals: buildAll(doc, markers),
		lineCount: doc.LineCount(),
	}, nil
}

// IntervalCount returns the number of intervals. It is at least 1.
func (c *core) IntervalCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.intervals)
}

// ModificationStamp returns the update counter.
func (c *core) ModificationStamp() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stamp
}

// Intervals returns a copy of the interval list.
func (c *core) Intervals() []cell.Interval {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]cell.Interval, len(c.intervals))
	copy(out, c.intervals)
	return out
}

// Markers returns a copy of the marker cache.
func (c *core) Markers() []cell.Marker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]cell.Marker, len(c.cache.markers))
	copy(out, c.cache.markers)
	return out
}

// IntervalAt returns the interval with the given ordinal.
func (c *core) IntervalAt(ordinal int) (cell.Interval, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return intervalAt(c.intervals, ordinal)
}

// IntervalAtLine returns the interval containing line.
func (c *core) IntervalAtLine(line int) (cell.Interval, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx := c.indexOfLine(line)
	if idx >= len(c.intervals) || !c.intervals[idx].Lines.Contains(line) {
		return cell.Interval{}, false
	}
	return c.intervals[idx], true
}

// IntervalsFrom yields intervals starting at ordinal. The read lock is held
// while iterating, so the loop body must not edit the buffer.
func (c *core) IntervalsFrom(ordinal int) iter.Seq[cell.Interval] {
	return func(yield func(cell.Interval) bool) {
		c.mu.RLock()
		defer c.mu.RUnlock()
		yieldIntervals(c.intervals, ordinal, yield)
	}
}

// IntervalsFromLine yields intervals starting with the one containing line.
func (c *core) IntervalsFromLine(line int) iter.Seq[cell.Interval] {
	return func(yield func(cell.Interval) bool) {
		c.mu.RLock()
		defer c.mu.RUnlock()
		yieldIntervals(c.intervals, c.indexOfLine(line), yield)
	}
}

// MarkersFrom yields cached markers whose offset is at or after offset.
func (c *core) MarkersFrom(offset int) iter.Seq[cell.Marker] {
	return func(yield func(cell.Marker) bool) {
		c.mu.RLock()
		defer c.mu.RUnlock()
		for idx := c.cache.firstAtOrAfter(offset); idx < len(c.cache.markers); idx++ {
			if !yield(c.cache.markers[idx]) {
				return
			}
		}
	}
}

// AddListener registers l for partition changes.
func (c *core) AddListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Verify checks the partition invariants against the current buffer.
func (c *core) Verify() []Violation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CheckIntegrity(c.cache.markers, c.intervals, c.doc.Len(), c.doc.LineCount())
}

func (c *core) indexOfLine(line int) int {
	return sort.Search(len(c.intervals), func(i int) bool {
		return c.intervals[i].Lines.Last >= line
	})
}

// notify hands a change to every listener. Callers hold the write lock.
func (c *core) notify(old, fresh []cell.Interval) {
	if len(c.listeners) == 0 {
		return
	}
	change := Change{Old: old, New: fresh, Stamp: c.stamp, Current: lockedView{c}}
	for _, l := range c.listeners {
		l.SegmentChanged(change)
	}
}

// lockedView reads core state without locking; the writer already holds it.
type lockedView struct{ c *core }

func (v lockedView) IntervalCount() int { return len(v.c.intervals) }

func (v lockedView) IntervalAt(ordinal int) (cell.Interval, bool) {
	return intervalAt(v.c.intervals, ordinal)
}

func (v lockedView) IntervalsFrom(ordinal int) iter.Seq[cell.Interval] {
	return func(yield func(cell.Interval) bool) {
		yieldIntervals(v.c.intervals, ordinal, yield)
	}
}

func intervalAt(intervals []cell.Interval, ordinal int) (cell.Interval, bool) {
	if ordinal < 0 || ordinal >= len(intervals) {
		return cell.Interval{}, false
	}
	return intervals[ordinal], true
}

func yieldIntervals(intervals []cell.Interval, from int, yield func(cell.Interval) bool) {
	for idx := max(0, from); idx < len(intervals); idx++ {
		if !yield(intervals[idx]) {
			return
		}
	}
}

// rebuild re-lexes the whole buffer, replaces markers and intervals and
// returns the intervals it replaced. The stamp moves when anything differs.
// Callers hold the write lock.
func (c *core) rebuild() ([]cell.Interval, error) {
	markers, err := collectMarkers(c.source, c.doc.Slice(0, c.doc.Len()), 0, 0)
	if err != nil {
		return nil, err
	}
	intervals := buildAll(c.doc, markers)

	previous := c.intervals
	if !slices.Equal(markers, c.cache.markers) || !slices.Equal(intervals, previous) {
		c.stamp++
	}
	c.cache.markers = markers
	c.intervals = intervals
	c.lineCount = c.doc.LineCount()
	return previous, nil
}
