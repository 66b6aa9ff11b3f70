package domain

import (
	"path/filepath"
	"strings"
)

// Dialect is the HDL language a source file is written in.
type Dialect uint8

const (
	// DialectUnknown marks files the scanner does not handle.
	DialectUnknown Dialect = iota
	// DialectVHDL is VHDL (any revision).
	DialectVHDL
	// DialectVerilog is Verilog-2005 and earlier.
	DialectVerilog
	// DialectSystemVerilog is SystemVerilog.
	DialectSystemVerilog
)

var dialectExtensions = map[string]Dialect{
	".vhd":  DialectVHDL,
	".vhdl": DialectVHDL,
	".v":    DialectVerilog,
	".vh":   DialectVerilog,
	".vl":   DialectVerilog,
	".sv":   DialectSystemVerilog,
	".svh":  DialectSystemVerilog,
}

// DialectFromPath selects the dialect from a file extension.
func DialectFromPath(path string) Dialect {
	return dialectExtensions[strings.ToLower(filepath.Ext(path))]
}

// String returns the lower-case dialect name.
func (d Dialect) String() string {
	switch d {
	case DialectVHDL:
		return "vhdl"
	case DialectVerilog:
		return "verilog"
	case DialectSystemVerilog:
		return "systemverilog"
	default:
		return "unknown"
	}
}

// Fileset returns the blueprint fileset prefix for the dialect.
func (d Dialect) Fileset() string {
	switch d {
	case DialectVHDL:
		return "VHDL"
	case DialectVerilog:
		return "VLOG"
	case DialectSystemVerilog:
		return "SYSV"
	default:
		return "FILE"
	}
}

// CaseSensitive reports whether identifiers in the dialect are case-sensitive.
func (d Dialect) CaseSensitive() bool {
	return d == DialectVerilog || d == DialectSystemVerilog
}

// Normalize returns the canonical identifier for a name written in the dialect.
func (d Dialect) Normalize(name string) Identifier {
	if !d.CaseSensitive() && !strings.HasPrefix(name, `\`) {
		name = strings.ToLower(name)
	}
	return NewIdentifier(name)
}
