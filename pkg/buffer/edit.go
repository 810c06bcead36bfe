package buffer

import (
	"fmt"
	"sort"
)

// TextEdit represents a single text replacement.
type TextEdit struct {
	// StartOffset is the byte index where the edit begins (inclusive).
	StartOffset int `yaml:"start" json:"start"`

	// EndOffset is the byte index where the edit ends (exclusive).
	EndOffset int `yaml:"end" json:"end"`

	// NewText is the replacement text.
	NewText string `yaml:"text" json:"text"`
}

// ValidationError describes an invalid edit.
type ValidationError struct {
	Edit    TextEdit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.StartOffset, e.Edit.EndOffset, e.Message)
}

// ConflictError describes overlapping edits.
type ConflictError struct {
	Edit1 TextEdit
	Edit2 TextEdit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d:%d] and [%d:%d]",
		e.Edit1.StartOffset, e.Edit1.EndOffset,
		e.Edit2.StartOffset, e.Edit2.EndOffset)
}

// ValidateEdits checks that all edits have valid ranges for the given content length.
func ValidateEdits(edits []TextEdit, contentLen int) error {
	for _, edit := range edits {
		if edit.StartOffset < 0 {
			return &ValidationError{Edit: edit, Message: "start offset is negative"}
		}
		if edit.EndOffset < edit.StartOffset {
			return &ValidationError{Edit: edit, Message: "end offset is before start offset"}
		}
		if edit.EndOffset > contentLen {
			return &ValidationError{
				Edit:    edit,
				Message: fmt.Sprintf("end offset %d exceeds content length %d", edit.EndOffset, contentLen),
			}
		}
	}
	return nil
}

// PrepareEdits validates edits, sorts them by position and rejects overlaps.
// The input slice is not modified.
func PrepareEdits(edits []TextEdit, contentLen int) ([]TextEdit, error) {
	if err := ValidateEdits(edits, contentLen); err != nil {
		return nil, err
	}

	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartOffset != sorted[j].StartOffset {
			return sorted[i].StartOffset < sorted[j].StartOffset
		}
		return sorted[i].EndOffset < sorted[j].EndOffset
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].StartOffset < sorted[i-1].EndOffset {
			return nil, &ConflictError{Edit1: sorted[i-1], Edit2: sorted[i]}
		}
	}

	return sorted, nil
}

// ApplyEdits applies a batch of non-overlapping edits expressed in the
// coordinates of the current content. Edits are applied back to front, one
// notification each, so earlier offsets stay valid.
func (b *Buffer) ApplyEdits(edits []TextEdit) error {
	prepared, err := PrepareEdits(edits, len(b.text))
	if err != nil {
		return err
	}

	for i := len(prepared) - 1; i >= 0; i-- {
		edit := prepared[i]
		if err := b.Replace(edit.StartOffset, edit.EndOffset, edit.NewText); err != nil {
			return fmt.Errorf("apply edit [%d:%d]: %w", edit.StartOffset, edit.EndOffset, err)
		}
	}

	return nil
}
