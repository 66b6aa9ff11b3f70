package domain

import (
	"strings"
	"unique"
)

// Identifier is an interned HDL name (library, unit or architecture).
// Comparison is a handle comparison, so the zero value is the empty name.
type Identifier struct {
	h unique.Handle[string]
}

// NewIdentifier interns s as-is. Callers fold case beforehand when the
// source dialect is case-insensitive (see Dialect.Normalize).
func NewIdentifier(s string) Identifier {
	if s == "" {
		return Identifier{}
	}
	return Identifier{h: unique.Make(s)}
}

// String returns the underlying name.
func (i Identifier) String() string {
	var zero unique.Handle[string]
	if i.h == zero {
		return ""
	}
	return i.h.Value()
}

// IsZero reports whether the identifier is empty.
func (i Identifier) IsZero() bool {
	var zero unique.Handle[string]
	return i.h == zero
}

// Fold returns the case-insensitive form of the identifier.
func (i Identifier) Fold() Identifier {
	s := i.String()
	lower := strings.ToLower(s)
	if lower == s {
		return i
	}
	return NewIdentifier(lower)
}

// MarshalText implements encoding.TextMarshaler.
func (i Identifier) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Identifier) UnmarshalText(text []byte) error {
	*i = NewIdentifier(string(text))
	return nil
}
