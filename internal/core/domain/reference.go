package domain

import "strings"

// RefKind classifies how a unit names another unit.
type RefKind uint8

const (
	// RefLibrary is a VHDL library clause. It names a library, not a unit,
	// and never produces an edge.
	RefLibrary RefKind = iota + 1
	// RefUse is a VHDL use clause or a SystemVerilog import.
	RefUse
	// RefContext is a VHDL context reference.
	RefContext
	// RefComponent is a VHDL component declaration.
	RefComponent
	// RefInstance is a component, entity or module instantiation.
	RefInstance
	// RefSymbol is a package-qualified symbol access (pkg.sym or pkg::sym).
	RefSymbol
	// RefBinding is an explicit architecture binding from a configuration.
	RefBinding
	// RefExtends is a class inheritance or interface-typed port.
	RefExtends
)

var refKindNames = map[RefKind]string{
	RefLibrary:   "library",
	RefUse:       "use",
	RefContext:   "context",
	RefComponent: "component",
	RefInstance:  "instance",
	RefSymbol:    "symbol",
	RefBinding:   "binding",
	RefExtends:   "extends",
}

func (k RefKind) String() string {
	if s, ok := refKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// WorkLibrary is the VHDL alias for the library being compiled into.
var WorkLibrary = NewIdentifier("work")

// Reference is a symbolic, not yet resolved, dependency.
type Reference struct {
	Kind    RefKind
	Library Identifier // explicit qualifier; zero when unqualified
	Name    Identifier
	Arch    Identifier // pinned architecture, VHDL only
	Dialect Dialect    // dialect of the referring source
	Line    int

	// Soft references are dropped when nothing matches them. Selected names
	// like a.b are ambiguous with record field access, so they are soft
	// unless the prefix is a declared library.
	Soft bool
}

// IsWork reports whether the reference is qualified with the work library.
func (r Reference) IsWork() bool {
	return r.Library == WorkLibrary
}

// String renders the reference target as lib.name(arch).
func (r Reference) String() string {
	var b strings.Builder
	if !r.Library.IsZero() {
		b.WriteString(r.Library.String())
		b.WriteByte('.')
	}
	b.WriteString(r.Name.String())
	if !r.Arch.IsZero() {
		b.WriteByte('(')
		b.WriteString(r.Arch.String())
		b.WriteByte(')')
	}
	return b.String()
}

// UnitReference pairs a reference with the unit that made it.
type UnitReference struct {
	Unit UnitKey
	Ref  Reference
}
