// Package pointer hands out stable handles to partition intervals. A handle
// follows its cell across edits that only resize or move it, and becomes
// permanently invalid when its cell is removed or restructured.
package pointer

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/yaklabco/nbcells/pkg/cell"
)

// ErrStaleInterval is returned by Create when the interval does not match the
// partition's current interval at that ordinal.
var ErrStaleInterval = errors.New("stale interval")

// Pointer is a stable reference to one interval. It is safe to read from any
// goroutine.
type Pointer struct {
	value atomic.Pointer[cell.Interval]
}

func newPointer(iv cell.Interval) *Pointer {
	p := &Pointer{}
	p.set(iv)
	return p
}

// Get returns the interval the pointer currently tracks, or false once the
// pointer has been invalidated.
func (p *Pointer) Get() (cell.Interval, bool) {
	iv := p.value.Load()
	if iv == nil {
		return cell.Interval{}, false
	}
	return *iv, true
}

// Valid reports whether Get would return an interval.
func (p *Pointer) Valid() bool {
	return p.value.Load() != nil
}

func (p *Pointer) String() string {
	if iv, ok := p.Get(); ok {
		return "pointer(" + iv.String() + ")"
	}
	return "pointer(invalid)"
}

func (p *Pointer) set(iv cell.Interval) {
	p.value.Store(&iv)
}

func (p *Pointer) invalidate() {
	p.value.Store(nil)
}

type hintKind uint8

const (
	hintInvalidate hintKind = iota + 1
	hintReuse
)

// Hint adjusts how the registry treats one pointer across the next change.
type Hint struct {
	kind    hintKind
	pointer *Pointer
	ordinal int
}

// Invalidate drops p after the change even if the default rules would keep it.
func Invalidate(p *Pointer) Hint {
	return Hint{kind: hintInvalidate, pointer: p}
}

// Reuse rebinds p to the interval at ordinalAfterChange once the change has
// been applied, so a moved cell keeps its pointer.
func Reuse(p *Pointer, ordinalAfterChange int) Hint {
	return Hint{kind: hintReuse, pointer: p, ordinal: ordinalAfterChange}
}

func (h Hint) String() string {
	switch h.kind {
	case hintInvalidate:
		return fmt.Sprintf("invalidate %s", h.pointer)
	case hintReuse:
		return fmt.Sprintf("reuse %s at #%d", h.pointer, h.ordinal)
	default:
		return "hint(unknown)"
	}
}
