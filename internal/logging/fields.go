// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError  = "error"
	FieldPath   = "path"
	FieldScript = "script"
	FieldFormat = "format"

	// Configuration fields.
	FieldTokenizer = "tokenizer"
	FieldEngine    = "engine"
	FieldFlavor    = "flavor"
	FieldConfig    = "config"

	// Edit fields.
	FieldOffset    = "offset"
	FieldOldLength = "old_length"
	FieldNewLength = "new_length"
	FieldStep      = "step"

	// Partition fields.
	FieldDocument   = "document"
	FieldStamp      = "stamp"
	FieldCutStart   = "cut_start"
	FieldCutEnd     = "cut_end"
	FieldInserted   = "inserted"
	FieldIntervals  = "intervals"
	FieldMarkers    = "markers"
	FieldOld        = "old"
	FieldNew        = "new"
	FieldViolations = "violations"
	FieldText       = "text"
	FieldPointers   = "pointers"
	FieldHint       = "hint"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
