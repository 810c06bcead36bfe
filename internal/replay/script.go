// Package replay applies scripted edit sequences to a document and records
// the partition changes each edit produces.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/nbcells/pkg/buffer"
	"github.com/yaklabco/nbcells/pkg/notebook"
)

var (
	// ErrEmptyStep is returned for a step that names no action.
	ErrEmptyStep = errors.New("step has no action")

	// ErrAmbiguousStep is returned for a step that names more than one action.
	ErrAmbiguousStep = errors.New("step has more than one action")
)

// Script is an ordered list of edit steps.
//
//	name: split first cell
//	steps:
//	  - insert: {at: 10, text: "# %%\n"}
//	  - delete: {start: 0, end: 5}
//	  - replace: {start: 3, end: 4, text: "x"}
//	  - batch:
//	      - {start: 0, end: 1, text: "a"}
//	      - {start: 8, end: 9, text: "b"}
//	  - set_text: "# %%\n"
type Script struct {
	Name  string `yaml:"name,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Step is a single scripted edit. Exactly one field is set.
type Step struct {
	Replace *buffer.TextEdit  `yaml:"replace,omitempty"`
	Insert  *Insert           `yaml:"insert,omitempty"`
	Delete  *Delete           `yaml:"delete,omitempty"`
	Batch   []buffer.TextEdit `yaml:"batch,omitempty"`
	SetText *string           `yaml:"set_text,omitempty"`
}

// Insert inserts Text at byte offset At.
type Insert struct {
	At   int    `yaml:"at"`
	Text string `yaml:"text"`
}

// Delete removes the byte range [Start, End).
type Delete struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	script, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return script, nil
}

// Parse decodes a YAML script. Unknown keys are rejected.
func Parse(data []byte) (*Script, error) {
	var script Script

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&script); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse script: %w", err)
	}

	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

// Validate checks that every step names exactly one action.
func (s *Script) Validate() error {
	var errs []error
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			errs = append(errs, fmt.Errorf("step %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

func (s Step) validate() error {
	actions := 0
	if s.Replace != nil {
		actions++
	}
	if s.Insert != nil {
		actions++
	}
	if s.Delete != nil {
		actions++
	}
	if s.Batch != nil {
		actions++
	}
	if s.SetText != nil {
		actions++
	}

	switch actions {
	case 0:
		return ErrEmptyStep
	case 1:
		return nil
	default:
		return ErrAmbiguousStep
	}
}

// Edits returns the replacements the step performs on a document of docLen bytes.
func (s Step) Edits(docLen int) []buffer.TextEdit {
	switch {
	case s.Replace != nil:
		return []buffer.TextEdit{*s.Replace}
	case s.Insert != nil:
		return []buffer.TextEdit{{StartOffset: s.Insert.At, EndOffset: s.Insert.At, NewText: s.Insert.Text}}
	case s.Delete != nil:
		return []buffer.TextEdit{{StartOffset: s.Delete.Start, EndOffset: s.Delete.End}}
	case s.Batch != nil:
		return append([]buffer.TextEdit(nil), s.Batch...)
	case s.SetText != nil:
		return []buffer.TextEdit{{StartOffset: 0, EndOffset: docLen, NewText: *s.SetText}}
	default:
		return nil
	}
}

// Apply performs the step on doc.
func (s Step) Apply(doc *notebook.Document) error {
	switch {
	case s.Replace != nil:
		return doc.Replace(s.Replace.StartOffset, s.Replace.EndOffset, s.Replace.NewText)
	case s.Insert != nil:
		return doc.Replace(s.Insert.At, s.Insert.At, s.Insert.Text)
	case s.Delete != nil:
		return doc.Replace(s.Delete.Start, s.Delete.End, "")
	case s.Batch != nil:
		return doc.ApplyEdits(s.Batch)
	case s.SetText != nil:
		return doc.SetText(*s.SetText)
	default:
		return ErrEmptyStep
	}
}
