// Package buffer provides a mutable text buffer with a line index and
// before/after edit notifications. It is the host editing surface the
// partition engine listens to.
//
// A Buffer is not safe for concurrent mutation. Callers serialize edits;
// listeners run synchronously inside Replace.
package buffer

import (
	"errors"
	"strings"
)

// Event describes one replacement of [Offset, Offset+OldLength) by NewText.
type Event struct {
	// Offset is the byte index where the edit begins.
	Offset int

	// OldLength is the number of bytes removed.
	OldLength int

	// NewLength is the number of bytes inserted.
	NewLength int

	// OldText is the removed text.
	OldText string

	// NewText is the inserted text.
	NewText string
}

// OldEnd returns the end of the replaced range in pre-edit coordinates.
func (e Event) OldEnd() int {
	return e.Offset + e.OldLength
}

// NewEnd returns the end of the inserted range in post-edit coordinates.
func (e Event) NewEnd() int {
	return e.Offset + e.NewLength
}

// Delta returns the change in buffer length.
func (e Event) Delta() int {
	return e.NewLength - e.OldLength
}

// Listener receives edit notifications.
// BeforeChange runs against the pre-edit buffer, Changed against the post-edit buffer.
type Listener interface {
	BeforeChange(e Event) error
	Changed(e Event) error
}

// Buffer holds text and a line start index.
type Buffer struct {
	text      string
	lines     []int
	listeners []Listener
	stamp     uint64
}

// New creates a buffer holding text.
func New(text string) *Buffer {
	return &Buffer{
		text:  text,
		lines: buildLineStarts(text),
	}
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	return b.text
}

// Len returns the buffer length in bytes.
func (b *Buffer) Len() int {
	return len(b.text)
}

// Stamp returns a counter incremented by every applied edit.
func (b *Buffer) Stamp() uint64 {
	return b.stamp
}

// Slice returns the text in [start, end), clamped to the buffer.
func (b *Buffer) Slice(start, end int) string {
	start = max(0, min(start, len(b.text)))
	end = max(start, min(end, len(b.text)))
	return b.text[start:end]
}

// AddListener registers l. Listeners are notified in registration order.
func (b *Buffer) AddListener(l Listener) {
	b.listeners = append(b.listeners, l)
}

// RemoveListener unregisters l. It reports whether l was registered.
func (b *Buffer) RemoveListener(l Listener) bool {
	for i, existing := range b.listeners {
		if existing == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Replace replaces bytes [start, end) with text and notifies listeners.
// The edit is applied even when a listener fails; listener errors are joined
// and returned.
func (b *Buffer) Replace(start, end int, text string) error {
	if err := ValidateEdits([]TextEdit{{StartOffset: start, EndOffset: end, NewText: text}}, len(b.text)); err != nil {
		return err
	}

	event := Event{
		Offset:    start,
		OldLength: end - start,
		NewLength: len(text),
		OldText:   b.text[start:end],
		NewText:   text,
	}

	var errs []error
	for _, l := range b.listeners {
		if err := l.BeforeChange(event); err != nil {
			errs = append(errs, err)
		}
	}

	b.apply(event)

	for _, l := range b.listeners {
		if err := l.Changed(event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Insert inserts text at offset.
func (b *Buffer) Insert(offset int, text string) error {
	return b.Replace(offset, offset, text)
}

// Delete removes bytes [start, end).
func (b *Buffer) Delete(start, end int) error {
	return b.Replace(start, end, "")
}

// SetText replaces the whole content.
func (b *Buffer) SetText(text string) error {
	return b.Replace(0, len(b.text), text)
}

func (b *Buffer) apply(e Event) {
	var sb strings.Builder
	sb.Grow(len(b.text) + e.Delta())
	sb.WriteString(b.text[:e.Offset])
	sb.WriteString(e.NewText)
	sb.WriteString(b.text[e.OldEnd():])

	firstLine := b.LineOf(e.Offset)
	lastLine := b.LineOf(e.OldEnd())
	b.lines = spliceLineStarts(b.lines, firstLine, lastLine, e)
	b.text = sb.String()
	b.stamp++
}
