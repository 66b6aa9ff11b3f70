package domain

import "fmt"

// ParseDiagnostic reports a construct the scanner could not recover from.
// A file with diagnostics contributes no units.
type ParseDiagnostic struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (d ParseDiagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Column, d.Message)
}

// SourceFile is an HDL file queued for scanning.
type SourceFile struct {
	Path    string
	Dialect Dialect
}

// ScanResult is everything recovered from one source file.
type ScanResult struct {
	File        string
	Dialect     Dialect
	Units       []*DesignUnit
	Diagnostics []ParseDiagnostic
}

// References flattens the per-unit references.
func (r *ScanResult) References() []UnitReference {
	var refs []UnitReference
	for _, u := range r.Units {
		for _, ref := range u.References {
			refs = append(refs, UnitReference{Unit: u.Key, Ref: ref})
		}
	}
	return refs
}

// Failed reports whether the file produced diagnostics.
func (r *ScanResult) Failed() bool {
	return len(r.Diagnostics) > 0
}
