package scanner

import (
	"fmt"
	"strings"

	"go.trai.ch/weft/internal/core/domain"
)

// vhdlFrontEnd recovers design units from one VHDL file.
type vhdlFrontEnd struct {
	file    string
	s       stream
	ignored map[string]bool
	libs    map[string]bool

	pending []domain.Reference
	units   []*domain.DesignUnit
	diags   []domain.ParseDiagnostic
}

func scanVHDL(file string, src []byte, ignored map[string]bool) ([]*domain.DesignUnit, []domain.ParseDiagnostic) {
	toks, lexErr := lexVHDL(src)
	if lexErr != nil {
		return nil, []domain.ParseDiagnostic{lexDiagnostic(file, lexErr)}
	}
	f := &vhdlFrontEnd{
		file:    file,
		s:       stream{toks: toks},
		ignored: ignored,
		libs:    map[string]bool{"work": true},
	}
	f.run()
	if len(f.diags) > 0 {
		return nil, f.diags
	}
	return f.units, nil
}

func (f *vhdlFrontEnd) run() {
	s := f.s
	n := len(s.toks)
	for i := 0; i < n && len(f.diags) == 0; {
		t := s.at(i)
		switch {
		case t.is("library"):
			i = f.libraryClause(i, &f.pending)
		case t.is("use"):
			i = f.useClause(i, &f.pending)
		case t.is("context") && s.is(i+2, "is"):
			i = f.unit(i, domain.KindContext)
		case t.is("context"):
			i = f.contextReference(i, &f.pending)
		case t.is("entity"):
			i = f.unit(i, domain.KindEntity)
		case t.is("architecture"):
			i = f.unit(i, domain.KindArchitecture)
		case t.is("package") && s.is(i+1, "body"):
			i = f.unit(i, domain.KindPackageBody)
		case t.is("package"):
			i = f.unit(i, domain.KindPackage)
		case t.is("configuration"):
			i = f.unit(i, domain.KindConfiguration)
		default:
			i++
		}
	}
}

func (f *vhdlFrontEnd) fail(t token, format string, args ...any) int {
	f.diags = append(f.diags, domain.ParseDiagnostic{
		File:    f.file,
		Line:    t.line,
		Column:  t.col,
		Message: fmt.Sprintf(format, args...),
	})
	return len(f.s.toks)
}

func (f *vhdlFrontEnd) name(t token) domain.Identifier {
	return domain.DialectVHDL.Normalize(t.text)
}

// unitName reports whether the token at i can name a unit.
func (f *vhdlFrontEnd) unitName(i int) bool {
	t := f.s.at(i)
	return t.kind == tokIdent && !vhdlReserved[t.lower]
}

// header describes a parsed unit header.
type vhdlHeader struct {
	name      token
	of        token // entity for architectures and configurations
	bodyStart int
}

func (f *vhdlFrontEnd) header(i int, kind domain.UnitKind) (vhdlHeader, bool) {
	s := f.s
	var h vhdlHeader
	switch kind {
	case domain.KindArchitecture, domain.KindConfiguration:
		if !f.unitName(i+1) || !s.is(i+2, "of") || !f.unitName(i+3) || !s.is(i+4, "is") {
			return h, false
		}
		h.name, h.of, h.bodyStart = s.at(i+1), s.at(i+3), i+5
	case domain.KindPackageBody:
		if !f.unitName(i+2) || !s.is(i+3, "is") {
			return h, false
		}
		h.name, h.bodyStart = s.at(i+2), i+4
	default:
		if !f.unitName(i+1) || !s.is(i+2, "is") {
			return h, false
		}
		h.name, h.bodyStart = s.at(i+1), i+3
	}
	return h, true
}

func (f *vhdlFrontEnd) unit(i int, kind domain.UnitKind) int {
	s := f.s
	start := s.at(i)
	h, ok := f.header(i, kind)
	if !ok {
		return f.fail(start, "malformed %s declaration", kind)
	}

	var u *domain.DesignUnit
	switch kind {
	case domain.KindArchitecture:
		u = domain.NewArchitecture(domain.Identifier{}, f.name(h.of), f.name(h.name))
	case domain.KindPackageBody:
		u = domain.NewPackageBody(domain.Identifier{}, f.name(h.name))
	default:
		u = domain.NewDesignUnit(kind, domain.DialectVHDL, domain.Identifier{}, f.name(h.name))
	}
	u.File = f.file
	u.Span = domain.Span{Start: start.pos, Line: start.line}
	u.References = append(u.References, f.pending...)
	f.pending = nil

	var endIdx, semi int
	if kind == domain.KindPackage && s.is(h.bodyStart, "new") {
		// package instantiation: "package p is new lib.generic_pkg generic map (...);"
		endIdx = f.statementEnd(h.bodyStart, len(s.toks))
		if endIdx < 0 {
			return f.fail(start, "unterminated package instantiation '%s'", h.name.text)
		}
		semi = endIdx
		if lib, name, _, _ := f.selectedName(h.bodyStart + 1); !name.IsZero() {
			u.References = append(u.References, f.ref(domain.RefUse, lib, name, domain.Identifier{}, s.at(h.bodyStart+1), false))
		}
	} else {
		limit := f.nextUnitStart(h.bodyStart)
		var label token
		endIdx, semi, label = f.unitEnd(h.bodyStart, limit, kind)
		if endIdx < 0 {
			return f.fail(start, "unterminated %s '%s'", kind, h.name.text)
		}
		if label.kind == tokIdent && f.name(label) != f.name(h.name) {
			return f.fail(label, "end label '%s' does not match %s '%s'", label.text, kind, h.name.text)
		}
		if kind == domain.KindConfiguration {
			u.References = append(u.References, f.configurationBinding(h, endIdx))
		}
		f.body(u, h.bodyStart, endIdx)
	}

	last := s.at(semi)
	u.Span.End = last.pos + len(last.text)
	f.units = append(f.units, u)
	return semi + 1
}

// configurationBinding is the block configuration "for arch" of a
// configuration declaration.
func (f *vhdlFrontEnd) configurationBinding(h vhdlHeader, end int) domain.Reference {
	s := f.s
	var arch domain.Identifier
	for j := h.bodyStart; j < end; j++ {
		if s.is(j, "use") || s.is(j, "attribute") || s.is(j, "library") {
			j = f.statementEnd(j, end)
			if j < 0 {
				break
			}
			continue
		}
		if s.is(j, "for") && f.unitName(j+1) {
			arch = f.name(s.at(j + 1))
		}
		break
	}
	return f.ref(domain.RefBinding, domain.Identifier{}, f.name(h.of), arch, h.of, false)
}

// statementEnd returns the index of the ';' ending the statement at i.
func (f *vhdlFrontEnd) statementEnd(i, end int) int {
	depth := 0
	for j := i; j < end; j++ {
		switch f.s.toks[j].text {
		case "(":
			depth++
		case ")":
			depth--
		case ";":
			if depth <= 0 {
				return j
			}
		}
	}
	return -1
}

// nextUnitStart returns the index of the next unit header after i, or the
// token count.
func (f *vhdlFrontEnd) nextUnitStart(i int) int {
	s := f.s
	for j := i; j < len(s.toks); j++ {
		if s.is(j-1, "end") || s.is(j-1, ":") || s.is(j-1, "use") {
			continue
		}
		switch {
		case s.is(j, "entity"), s.is(j, "context"):
			if f.unitName(j+1) && s.is(j+2, "is") {
				return j
			}
		case s.is(j, "architecture"), s.is(j, "configuration"):
			if f.unitName(j+1) && s.is(j+2, "of") && f.unitName(j+3) && s.is(j+4, "is") {
				return j
			}
		case s.is(j, "package"):
			if s.is(j+1, "body") && f.unitName(j+2) && s.is(j+3, "is") {
				return j
			}
			if f.unitName(j+1) && s.is(j+2, "is") {
				return j
			}
		}
	}
	return len(s.toks)
}

var vhdlEndKeywords = map[domain.UnitKind][]string{
	domain.KindEntity:        {"entity"},
	domain.KindArchitecture:  {"architecture"},
	domain.KindPackage:       {"package"},
	domain.KindPackageBody:   {"package", "body"},
	domain.KindConfiguration: {"configuration"},
	domain.KindContext:       {"context"},
}

// unitEnd finds the last "end [kind] [label];" in [from, limit). It returns
// the index of "end", of the closing ';', and the label token if present.
func (f *vhdlFrontEnd) unitEnd(from, limit int, kind domain.UnitKind) (int, int, token) {
	s := f.s
	endIdx, semi := -1, -1
	var label token
	for j := from; j < limit; j++ {
		if !s.is(j, "end") {
			continue
		}
		if j > from && !s.is(j-1, ";") && !s.is(j-1, "is") && !s.is(j-1, "begin") {
			continue
		}
		k := j + 1
		kw := vhdlEndKeywords[kind]
		if s.is(k, kw[0]) {
			for _, w := range kw {
				if !s.is(k, w) {
					break
				}
				k++
			}
		}
		var l token
		if f.unitName(k) {
			l = s.at(k)
			k++
		}
		if s.is(k, ";") && k < limit {
			endIdx, semi, label = j, k, l
		}
	}
	return endIdx, semi, label
}

// body extracts references, ports and symbols from the tokens of a unit.
func (f *vhdlFrontEnd) body(u *domain.DesignUnit, from, to int) {
	s := f.s
	bound := make(map[domain.Identifier]bool)
	var refs []domain.Reference

	for j := from; j < to; {
		t := s.at(j)
		prev := s.at(j - 1)
		switch {
		case t.is("library"):
			j = f.libraryClause(j, &refs)
		case t.is("use") && (s.is(j+1, "entity") || s.is(j+1, "configuration")):
			if f.unitName(j-1) && s.is(j-2, ":") {
				bound[f.name(s.at(j-1))] = true
			}
			lib, name, arch, next := f.selectedName(j + 2)
			kind := domain.RefBinding
			if s.is(j+1, "configuration") {
				kind, arch = domain.RefInstance, domain.Identifier{}
			}
			if !name.IsZero() {
				refs = append(refs, f.ref(kind, lib, name, arch, s.at(j+2), false))
			}
			j = next
		case t.is("use"):
			j = f.useClause(j, &refs)
		case t.is("context") && (prev.text == ";" || j == from):
			j = f.contextReference(j, &refs)
		case t.is("component") && prev.text == ":" && f.unitName(j+1):
			refs = append(refs, f.ref(domain.RefInstance, domain.Identifier{}, f.name(s.at(j+1)), domain.Identifier{}, s.at(j+1), false))
			j += 2
		case t.is("component") && !prev.is("end") && f.unitName(j+1):
			refs = append(refs, f.ref(domain.RefComponent, domain.Identifier{}, f.name(s.at(j+1)), domain.Identifier{}, s.at(j+1), false))
			j += 2
		case (t.is("entity") || t.is("configuration")) && prev.text == ":":
			lib, name, arch, next := f.selectedName(j + 1)
			if !name.IsZero() {
				refs = append(refs, f.ref(domain.RefInstance, lib, name, arch, s.at(j+1), false))
			}
			j = next
		case f.unitName(j) && s.is(j+1, ":") && f.unitName(j+2) && (s.is(j+3, "port") || s.is(j+3, "generic")) && s.is(j+4, "map"):
			refs = append(refs, f.ref(domain.RefInstance, domain.Identifier{}, f.name(s.at(j+2)), domain.Identifier{}, s.at(j+2), false))
			j += 3
		case t.is("port") && s.is(j+1, "(") && u.Kind == domain.KindEntity:
			u.HasPorts = true
			j++
		case (t.is("function") || t.is("procedure")) && u.Kind == domain.KindPackage && !prev.is("end"):
			j = f.symbol(u, j, to)
		case f.unitName(j) && s.is(j+1, ".") && prev.text != "." && prev.text != "'":
			j = f.symbolAccess(j, &refs)
		default:
			j++
		}
	}

	for i := range refs {
		r := &refs[i]
		if (r.Kind == domain.RefComponent || r.Kind == domain.RefInstance) && r.Library.IsZero() && bound[r.Name] {
			r.Soft = true
		}
	}
	u.References = append(u.References, refs...)
}

// symbolAccess handles a selected name in an expression.
func (f *vhdlFrontEnd) symbolAccess(j int, refs *[]domain.Reference) int {
	s := f.s
	first := s.at(j)
	k := j
	for s.is(k+1, ".") && (s.ident(k+2) || s.at(k+2).kind == tokString) {
		k += 2
	}
	switch {
	case f.ignored[first.lower]:
	case f.libs[first.lower]:
		if k >= j+2 && s.ident(j+2) {
			*refs = append(*refs, f.ref(domain.RefSymbol, f.name(first), f.name(s.at(j+2)), domain.Identifier{}, first, false))
		}
	default:
		*refs = append(*refs, f.ref(domain.RefSymbol, domain.Identifier{}, f.name(first), domain.Identifier{}, first, true))
	}
	return k + 1
}

// symbol records a subprogram declared in a package. Overloads are kept
// apart by their signature.
func (f *vhdlFrontEnd) symbol(u *domain.DesignUnit, j, to int) int {
	s := f.s
	kind := s.at(j).lower
	nameTok := s.at(j + 1)
	if nameTok.kind != tokIdent && nameTok.kind != tokString {
		return j + 1
	}
	k := j + 2
	var parts []string
	if s.is(k, "parameter") {
		k++
	}
	if s.is(k, "(") {
		end := s.skipParens(k, to)
		for _, t := range s.toks[k:end] {
			parts = append(parts, t.lower)
		}
		k = end
	}
	if s.is(k, "return") && s.ident(k+1) {
		parts = append(parts, "return", s.at(k+1).lower)
		k += 2
	}
	name := nameTok.text
	if nameTok.kind == tokIdent {
		name = f.name(nameTok).String()
	}
	u.Symbols = append(u.Symbols, domain.Symbol{
		Name:      domain.NewIdentifier(name),
		Kind:      kind,
		Signature: signature(parts),
		Line:      nameTok.line,
	})
	return k
}

var signatureSpacing = strings.NewReplacer("( ", "(", " )", ")", " ,", ",", " ;", ";", " :", ":")

func signature(parts []string) string {
	return signatureSpacing.Replace(strings.Join(parts, " "))
}

// libraryClause parses "library a, b;".
func (f *vhdlFrontEnd) libraryClause(i int, refs *[]domain.Reference) int {
	s := f.s
	j := i + 1
	for ; j < len(s.toks) && !s.is(j, ";"); j++ {
		t := s.at(j)
		if t.kind != tokIdent {
			continue
		}
		f.libs[t.lower] = true
		if !f.ignored[t.lower] && t.lower != "work" {
			*refs = append(*refs, f.ref(domain.RefLibrary, domain.Identifier{}, f.name(t), domain.Identifier{}, t, false))
		}
	}
	return j + 1
}

// useClause parses "use lib.pkg.item, pkg.item;".
func (f *vhdlFrontEnd) useClause(i int, refs *[]domain.Reference) int {
	s := f.s
	j := i + 1
	for j < len(s.toks) && !s.is(j, ";") {
		if !s.ident(j) {
			j++
			continue
		}
		first := s.at(j)
		k := j
		var parts []token
		parts = append(parts, first)
		for s.is(k+1, ".") {
			k += 2
			parts = append(parts, s.at(k))
		}
		j = k + 1
		if f.ignored[first.lower] || len(parts) < 2 {
			continue
		}
		switch {
		case f.libs[first.lower] && len(parts) >= 2 && parts[1].kind == tokIdent && !parts[1].is("all"):
			*refs = append(*refs, f.ref(domain.RefUse, f.name(first), f.name(parts[1]), domain.Identifier{}, first, false))
		case !f.libs[first.lower]:
			*refs = append(*refs, f.ref(domain.RefUse, domain.Identifier{}, f.name(first), domain.Identifier{}, first, true))
		}
	}
	return j + 1
}

// contextReference parses "context lib.ctx;".
func (f *vhdlFrontEnd) contextReference(i int, refs *[]domain.Reference) int {
	s := f.s
	j := i + 1
	for j < len(s.toks) && !s.is(j, ";") {
		if !s.ident(j) {
			j++
			continue
		}
		lib, name, _, next := f.selectedName(j)
		if !name.IsZero() && !f.ignored[strings.ToLower(lib.String())] {
			*refs = append(*refs, f.ref(domain.RefContext, lib, name, domain.Identifier{}, s.at(j), false))
		}
		j = next
	}
	return j + 1
}

// selectedName parses "[lib.]name[(arch)]" at i. Library is zero when the
// name is unqualified. Names from ignored libraries yield a zero name.
func (f *vhdlFrontEnd) selectedName(i int) (lib, name, arch domain.Identifier, next int) {
	s := f.s
	if !s.ident(i) {
		return lib, name, arch, i + 1
	}
	j := i
	if s.is(i+1, ".") && s.ident(i+2) {
		if f.ignored[s.at(i).lower] {
			return lib, name, arch, i + 3
		}
		lib = f.name(s.at(i))
		j = i + 2
	}
	name = f.name(s.at(j))
	next = j + 1
	if s.is(next, "(") && f.unitName(next+1) && s.is(next+2, ")") {
		arch = f.name(s.at(next + 1))
		next += 3
	}
	return lib, name, arch, next
}

func (f *vhdlFrontEnd) ref(kind domain.RefKind, lib, name, arch domain.Identifier, at token, soft bool) domain.Reference {
	return domain.Reference{
		Kind:    kind,
		Library: lib,
		Name:    name,
		Arch:    arch,
		Dialect: domain.DialectVHDL,
		Line:    at.line,
		Soft:    soft,
	}
}

func lexDiagnostic(file string, err *lexError) domain.ParseDiagnostic {
	return domain.ParseDiagnostic{File: file, Line: err.line, Column: err.col, Message: err.msg}
}
