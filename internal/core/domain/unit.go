package domain

import "strings"

// UnitKind is the tag of a design unit variant.
type UnitKind uint8

const (
	// KindEntity is a VHDL entity declaration.
	KindEntity UnitKind = iota + 1
	// KindArchitecture is a VHDL architecture body bound to an entity.
	KindArchitecture
	// KindModule is a Verilog/SystemVerilog module, macromodule or primitive.
	KindModule
	// KindPackage is a VHDL or SystemVerilog package declaration.
	KindPackage
	// KindPackageBody is a VHDL package body bound to a package.
	KindPackageBody
	// KindInterface is a SystemVerilog interface or interface class.
	KindInterface
	// KindProgram is a SystemVerilog program block.
	KindProgram
	// KindContext is a VHDL-2008 context declaration.
	KindContext
	// KindConfiguration is a VHDL configuration declaration.
	KindConfiguration
	// KindClass is a top-level SystemVerilog class.
	KindClass
)

var kindNames = map[UnitKind]string{
	KindEntity:        "entity",
	KindArchitecture:  "architecture",
	KindModule:        "module",
	KindPackage:       "package",
	KindPackageBody:   "package-body",
	KindInterface:     "interface",
	KindProgram:       "program",
	KindContext:       "context",
	KindConfiguration: "configuration",
	KindClass:         "class",
}

func (k UnitKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k UnitKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsSecondary reports whether units of this kind bind to a primary unit.
func (k UnitKind) IsSecondary() bool {
	return k == KindArchitecture || k == KindPackageBody
}

// IsElaboratable reports whether a unit of this kind can be the top of a design.
func (k UnitKind) IsElaboratable() bool {
	switch k {
	case KindEntity, KindModule, KindProgram, KindConfiguration:
		return true
	default:
		return false
	}
}

// HasArchitectures reports whether references to the kind also select an architecture.
func (k UnitKind) HasArchitectures() bool {
	return k == KindEntity
}

// bodySecondary is the secondary name under which a package body is keyed.
var bodySecondary = NewIdentifier("body")

// UnitKey is the identity of a design unit. Secondary is set for
// architectures (the architecture name) and package bodies.
type UnitKey struct {
	Library   Identifier
	Name      Identifier
	Secondary Identifier
}

// PrimaryKey returns the key of the primary unit this key belongs to.
func (k UnitKey) PrimaryKey() UnitKey {
	return UnitKey{Library: k.Library, Name: k.Name}
}

// IsSecondary reports whether the key names a secondary unit.
func (k UnitKey) IsSecondary() bool {
	return !k.Secondary.IsZero()
}

// String renders the key as lib.name or lib.name(secondary).
func (k UnitKey) String() string {
	var b strings.Builder
	if !k.Library.IsZero() {
		b.WriteString(k.Library.String())
		b.WriteByte('.')
	}
	b.WriteString(k.Name.String())
	if !k.Secondary.IsZero() {
		b.WriteByte('(')
		b.WriteString(k.Secondary.String())
		b.WriteByte(')')
	}
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (k UnitKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Span locates a construct inside its source file.
type Span struct {
	Start int // byte offset, inclusive
	End   int // byte offset, exclusive
	Line  int // 1-based line of Start
}

// Symbol is a subprogram declared inside a package. Overloads share Name and
// differ by Signature; they are kept as separate entries.
type Symbol struct {
	Name      Identifier
	Kind      string // "function" or "procedure"
	Signature string
	Line      int
}

// DesignUnit is one declaration recovered from a source file.
type DesignUnit struct {
	Key     UnitKey
	Kind    UnitKind
	Dialect Dialect
	File    string
	Span    Span

	// HasPorts is false for entities/modules without a port list; those
	// are treated as testbenches.
	HasPorts bool

	// Symbols lists package-internal subprograms in declaration order.
	Symbols []Symbol

	// References are the symbolic dependencies the unit makes, in source order.
	References []Reference

	// Seq is the discovery index assigned when units are aggregated.
	Seq int
}

// NewDesignUnit builds a primary unit keyed by (library, name).
func NewDesignUnit(kind UnitKind, dialect Dialect, library, name Identifier) *DesignUnit {
	return &DesignUnit{
		Key:     UnitKey{Library: library, Name: name},
		Kind:    kind,
		Dialect: dialect,
	}
}

// NewArchitecture builds an architecture unit bound to entity.
func NewArchitecture(library, entity, arch Identifier) *DesignUnit {
	return &DesignUnit{
		Key:     UnitKey{Library: library, Name: entity, Secondary: arch},
		Kind:    KindArchitecture,
		Dialect: DialectVHDL,
	}
}

// NewPackageBody builds a package body unit bound to pkg.
func NewPackageBody(library, pkg Identifier) *DesignUnit {
	return &DesignUnit{
		Key:     UnitKey{Library: library, Name: pkg, Secondary: bodySecondary},
		Kind:    KindPackageBody,
		Dialect: DialectVHDL,
	}
}

// IsTestbench reports whether the unit only makes sense in simulation.
func (u *DesignUnit) IsTestbench() bool {
	switch u.Kind {
	case KindProgram:
		return true
	case KindEntity, KindModule:
		return !u.HasPorts
	default:
		return false
	}
}

// WithLibrary returns a copy of the unit re-keyed into library. Reference
// library qualifiers are left untouched.
func (u *DesignUnit) WithLibrary(library Identifier) *DesignUnit {
	c := *u
	c.Key.Library = library
	return &c
}
