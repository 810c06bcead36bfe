// Package cell provides the value types shared by the partition engine:
// boundary markers produced by a tokenizer and the typed line intervals
// (notebook cells) derived from them.
package cell

import "fmt"

// Kind classifies a marker and the cell it opens.
type Kind uint8

// Cell kinds.
const (
	KindCode Kind = iota
	KindMarkdown
	KindRaw
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindMarkdown:
		return "markdown"
	case KindRaw:
		return "raw"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind converts a kind name back to a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "code":
		return KindCode, nil
	case "markdown", "md":
		return KindMarkdown, nil
	case "raw":
		return KindRaw, nil
	default:
		return 0, fmt.Errorf("unknown cell kind %q", name)
	}
}
