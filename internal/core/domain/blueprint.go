package domain

import (
	"bufio"
	"io"
)

// Role separates synthesizable design sources from simulation-only ones.
type Role uint8

const (
	// RoleDesign marks units that belong in every build.
	RoleDesign Role = iota
	// RoleSimulation marks testbench-only units.
	RoleSimulation
)

func (r Role) String() string {
	if r == RoleSimulation {
		return "simulation"
	}
	return "design"
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// BlueprintEntry is one unit in build order.
type BlueprintEntry struct {
	File    string     `json:"file"`
	Library Identifier `json:"library"`
	Unit    UnitKey    `json:"unit"`
	Kind    UnitKind   `json:"kind"`
	Dialect Dialect    `json:"-"`
	Role    Role       `json:"role"`
}

// Blueprint is the ordered list of units needed to elaborate Top. Entries
// of one file are contiguous.
type Blueprint struct {
	Top     UnitKey          `json:"top"`
	Entries []BlueprintEntry `json:"entries"`
}

// BlueprintFile is one line of the blueprint file list.
type BlueprintFile struct {
	Path    string
	Library Identifier
	Dialect Dialect
	Role    Role
}

// Fileset returns the backend fileset tag, e.g. VHDL-RTL or SYSV-SIM.
func (f BlueprintFile) Fileset() string {
	if f.Role == RoleSimulation {
		return f.Dialect.Fileset() + "-SIM"
	}
	return f.Dialect.Fileset() + "-RTL"
}

// Files collapses entries into files, preserving order. A file is
// simulation-only when any of its units is.
func (b *Blueprint) Files() []BlueprintFile {
	var files []BlueprintFile
	index := make(map[string]int)
	for _, e := range b.Entries {
		if i, ok := index[e.File]; ok {
			if e.Role == RoleSimulation {
				files[i].Role = RoleSimulation
			}
			continue
		}
		index[e.File] = len(files)
		files = append(files, BlueprintFile{
			Path:    e.File,
			Library: e.Library,
			Dialect: e.Dialect,
			Role:    e.Role,
		})
	}
	return files
}

// WriteTSV writes one "<fileset>\t<library>\t<path>" line per file.
func (b *Blueprint) WriteTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, f := range b.Files() {
		if _, err := bw.WriteString(f.Fileset() + "\t" + f.Library.String() + "\t" + f.Path + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
