package scanner

import (
	"fmt"

	"go.trai.ch/weft/internal/core/domain"
)

// verilogKeywords covers IEEE 1800-2017 reserved words, which include the
// Verilog-2005 set, the gate primitives and the built-in types.
var verilogKeywords = wordSet(`accept_on alias always always_comb always_ff always_latch and assert
assign assume automatic before begin bind bins binsof bit break buf bufif0 bufif1 byte case
casex casez cell chandle checker class clocking cmos config const constraint context continue
cover covergroup coverpoint cross deassign default defparam design disable dist do edge else
end endcase endchecker endclass endclocking endconfig endfunction endgenerate endgroup
endinterface endmodule endpackage endprimitive endprogram endproperty endspecify endsequence
endtable endtask enum event eventually expect export extends extern final first_match for
force foreach forever fork forkjoin function generate genvar global highz0 highz1 if iff
ifnone ignore_bins illegal_bins implements implies import incdir include initial inout input
inside instance int integer interconnect interface intersect join join_any join_none large
let liblist library local localparam logic longint macromodule matches medium modport module
nand negedge nettype new nexttime nmos nor noshowcancelled not notif0 notif1 null or output
package packed parameter pmos posedge primitive priority program property protected pull0
pull1 pulldown pullup pulsestyle_ondetect pulsestyle_onevent pure rand randc randcase
randsequence rcmos real realtime ref reg reject_on release repeat restrict return rnmos rpmos
rtran rtranif0 rtranif1 s_always s_eventually s_nexttime s_until s_until_with scalared
sequence shortint shortreal showcancelled signed small soft solve specify specparam static
string strong strong0 strong1 struct super sync_accept_on sync_reject_on table tagged task
this throughout time timeprecision timeunit tran tranif0 tranif1 tri tri0 tri1 triand trior
trireg type typedef union unique unique0 unsigned until until_with untyped use uwire var
vectored virtual void wait wait_order wand weak weak0 weak1 while wildcard wire with within
wor xnor xor`)

// declarationLead are words after which "type name (" declares a
// subprogram rather than instantiating a module.
var declarationLead = wordSet(`function task automatic static virtual pure extern new return`)

// verilogBuiltinScopes are scopes that resolve inside the simulator.
var verilogBuiltinScopes = wordSet(`std $unit $root local super this`)

type verilogUnitSyntax struct {
	kind    domain.UnitKind
	openers []string
	closer  string
}

var verilogUnits = map[string]verilogUnitSyntax{
	"module":      {domain.KindModule, []string{"module", "macromodule"}, "endmodule"},
	"macromodule": {domain.KindModule, []string{"module", "macromodule"}, "endmodule"},
	"primitive":   {domain.KindModule, []string{"primitive"}, "endprimitive"},
	"interface":   {domain.KindInterface, []string{"interface"}, "endinterface"},
	"program":     {domain.KindProgram, []string{"program"}, "endprogram"},
	"package":     {domain.KindPackage, []string{"package"}, "endpackage"},
	"class":       {domain.KindClass, []string{"class"}, "endclass"},
}

var interfaceClass = verilogUnitSyntax{domain.KindInterface, []string{"class"}, "endclass"}

// verilogFrontEnd recovers design units from one Verilog or SystemVerilog file.
type verilogFrontEnd struct {
	file    string
	dialect domain.Dialect
	s       stream
	ignored map[string]bool

	// imports made in the compilation-unit scope apply to every later unit
	imports []domain.Reference
	units   []*domain.DesignUnit
	diags   []domain.ParseDiagnostic
}

func scanVerilog(file string, dialect domain.Dialect, src []byte, ignored map[string]bool) ([]*domain.DesignUnit, []domain.ParseDiagnostic) {
	toks, lexErr := lexVerilog(src)
	if lexErr != nil {
		return nil, []domain.ParseDiagnostic{lexDiagnostic(file, lexErr)}
	}
	f := &verilogFrontEnd{
		file:    file,
		dialect: dialect,
		s:       stream{toks: toks},
		ignored: ignored,
	}
	f.run()
	if len(f.diags) > 0 {
		return nil, f.diags
	}
	return f.units, nil
}

func (f *verilogFrontEnd) run() {
	s := f.s
	n := len(s.toks)
	for i := 0; i < n && len(f.diags) == 0; {
		t := s.at(i)
		switch {
		case t.is("interface") && s.is(i+1, "class"):
			i = f.unit(i, i+1, interfaceClass)
		case t.kind == tokIdent && verilogUnits[t.text].closer != "":
			i = f.unit(i, i, verilogUnits[t.text])
		case t.is("import"):
			i = f.importClause(i, &f.imports)
		case t.is("config"):
			i = f.skipTo(i, "endconfig")
		case t.is("function"):
			i = f.skipTo(i, "endfunction")
		case t.is("task"):
			i = f.skipTo(i, "endtask")
		case t.is("checker"):
			i = f.skipTo(i, "endchecker")
		case t.is("typedef"), t.is("extern"), t.is("bind"):
			i = f.skipStatement(i)
		default:
			i++
		}
	}
}

func (f *verilogFrontEnd) fail(t token, format string, args ...any) int {
	f.diags = append(f.diags, domain.ParseDiagnostic{
		File:    f.file,
		Line:    t.line,
		Column:  t.col,
		Message: fmt.Sprintf(format, args...),
	})
	return len(f.s.toks)
}

func (f *verilogFrontEnd) name(t token) domain.Identifier {
	text := t.text
	if len(text) > 1 && text[0] == '\\' {
		text = text[1:]
	}
	return f.dialect.Normalize(text)
}

// userIdent reports whether the token at i is an identifier that can name a
// user-defined unit.
func (f *verilogFrontEnd) userIdent(i int) bool {
	t := f.s.at(i)
	return t.kind == tokIdent && !verilogKeywords[t.text]
}

func (f *verilogFrontEnd) skipTo(i int, closer string) int {
	if j := f.s.next(i+1, len(f.s.toks), closer); j >= 0 {
		return j + 1
	}
	return len(f.s.toks)
}

// skipStatement returns the index after the ';' closing the statement at i.
func (f *verilogFrontEnd) skipStatement(i int) int {
	depth := 0
	for j := i; j < len(f.s.toks); j++ {
		switch f.s.toks[j].text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case ";":
			if depth <= 0 {
				return j + 1
			}
		}
	}
	return len(f.s.toks)
}

// unit parses the unit whose leading keyword is at start; kw is the index of
// the keyword that determines its syntax (differs for "interface class").
func (f *verilogFrontEnd) unit(start, kw int, syn verilogUnitSyntax) int {
	s := f.s
	first := s.at(start)
	j := kw + 1
	if s.is(j, "automatic") || s.is(j, "static") {
		j++
	}
	if !f.userIdent(j) {
		return f.fail(first, "expected %s name", syn.kind)
	}
	nameTok := s.at(j)

	end := f.matchingEnd(j+1, syn)
	if end < 0 {
		return f.fail(first, "unterminated %s '%s'", syn.kind, nameTok.text)
	}
	last := s.at(end)
	next := end + 1
	if s.is(end+1, ":") && s.ident(end+2) {
		label := s.at(end + 2)
		if f.name(label) != f.name(nameTok) {
			return f.fail(label, "end label '%s' does not match %s '%s'", label.text, syn.kind, nameTok.text)
		}
		last = label
		next = end + 3
	}

	u := domain.NewDesignUnit(syn.kind, f.dialect, domain.Identifier{}, f.name(nameTok))
	u.File = f.file
	u.Span = domain.Span{Start: first.pos, End: last.pos + len(last.text), Line: first.line}
	u.References = append(u.References, f.imports...)
	f.ports(u, j+1, end)
	u.References = append(u.References, f.body(j+1, end)...)
	f.units = append(f.units, u)
	return next
}

// matchingEnd returns the index of the closer balancing an opener, counting
// nested declarations of the same kind.
func (f *verilogFrontEnd) matchingEnd(from int, syn verilogUnitSyntax) int {
	s := f.s
	depth := 1
	for j := from; j < len(s.toks); j++ {
		t := s.at(j)
		if t.kind != tokIdent {
			continue
		}
		if t.text == syn.closer {
			depth--
			if depth == 0 {
				return j
			}
			continue
		}
		for _, o := range syn.openers {
			if t.text != o {
				continue
			}
			prev := s.at(j - 1)
			if prev.is("typedef") || prev.is("virtual") || prev.is("extern") || (o == "interface" && s.is(j+1, "class")) {
				continue
			}
			depth++
		}
	}
	return -1
}

// ports looks at the header of a module, interface or program for a port
// list and for interface-typed ports.
func (f *verilogFrontEnd) ports(u *domain.DesignUnit, from, end int) {
	if u.Kind == domain.KindPackage || u.Kind == domain.KindClass {
		return
	}
	s := f.s
	j := from
	for j < end {
		switch {
		case s.is(j, "import"):
			j = f.skipStatement(j)
			continue
		case s.is(j, "#") && s.is(j+1, "("):
			j = s.skipParens(j+1, end)
			continue
		}
		break
	}
	if !s.is(j, "(") {
		return
	}
	closing := s.skipParens(j, end)
	for k := j + 1; k < closing-1; k++ {
		if s.ident(k) {
			u.HasPorts = true
		}
		if !s.is(k-1, "(") && !s.is(k-1, ",") {
			continue
		}
		// "bus_if.slave port" or "bus_if port"
		if f.userIdent(k) && ((s.is(k+1, ".") && s.ident(k+2) && f.userIdent(k+3)) || f.userIdent(k+1)) {
			u.References = append(u.References, f.ref(domain.RefExtends, f.name(s.at(k)), s.at(k), true))
		}
	}
}

// body extracts imports, scoped references, inheritance and instantiations.
func (f *verilogFrontEnd) body(from, to int) []domain.Reference {
	s := f.s
	var refs []domain.Reference
	for j := from; j < to; {
		t := s.at(j)
		prev := s.at(j - 1)
		switch {
		case t.is("import") && s.ident(j+1):
			j = f.importClause(j, &refs)
		case t.is("export"):
			j = f.skipStatement(j)
		case (t.is("extends") || t.is("implements")) && s.ident(j+1):
			j = f.inheritance(j+1, to, &refs)
		case t.kind == tokIdent && s.is(j+1, "::"):
			if f.scopeRef(t) {
				refs = append(refs, f.ref(domain.RefSymbol, f.name(t), t, true))
			}
			j += 2
		case f.userIdent(j) && prev.text != "." && prev.text != "::" && !declarationLead[prev.text]:
			if next, ok := f.instance(j, to); ok {
				refs = append(refs, f.ref(domain.RefInstance, f.name(t), t, false))
				j = next
				continue
			}
			j++
		default:
			j++
		}
	}
	return refs
}

func (f *verilogFrontEnd) scopeRef(t token) bool {
	return !verilogKeywords[t.text] && !verilogBuiltinScopes[t.text] && !f.ignored[t.lower]
}

// instance matches "type [#(params)] name [range] (" at j and returns the
// index after the instance name.
func (f *verilogFrontEnd) instance(j, to int) (int, bool) {
	s := f.s
	k := j + 1
	if s.is(k, "#") {
		if s.is(k+1, "(") {
			k = s.skipParens(k+1, to)
		} else {
			k += 2
		}
	}
	if !f.userIdent(k) {
		return 0, false
	}
	k++
	for s.is(k, "[") {
		depth := 0
		for ; k < to; k++ {
			if s.is(k, "[") {
				depth++
			} else if s.is(k, "]") {
				depth--
				if depth == 0 {
					k++
					break
				}
			}
		}
	}
	return k, s.is(k, "(")
}

// inheritance parses "extends base" or "implements a, b".
func (f *verilogFrontEnd) inheritance(j, to int, refs *[]domain.Reference) int {
	s := f.s
	for j < to {
		if !s.ident(j) {
			return j
		}
		t := s.at(j)
		if s.is(j+1, "::") && s.ident(j+2) {
			if f.scopeRef(t) {
				*refs = append(*refs, f.ref(domain.RefSymbol, f.name(t), t, true))
			}
			j += 2
			t = s.at(j)
		}
		if !verilogKeywords[t.text] {
			*refs = append(*refs, f.ref(domain.RefExtends, f.name(t), t, true))
		}
		j++
		if s.is(j, "#") && s.is(j+1, "(") {
			j = s.skipParens(j+1, to)
		}
		if !s.is(j, ",") {
			return j
		}
		j++
	}
	return j
}

// importClause parses "import a::*, b::sym;".
func (f *verilogFrontEnd) importClause(i int, refs *[]domain.Reference) int {
	s := f.s
	j := i + 1
	for j < len(s.toks) && !s.is(j, ";") {
		t := s.at(j)
		if t.kind == tokIdent && s.is(j+1, "::") && f.scopeRef(t) {
			*refs = append(*refs, f.ref(domain.RefUse, f.name(t), t, false))
		}
		j++
	}
	return j + 1
}

func (f *verilogFrontEnd) ref(kind domain.RefKind, name domain.Identifier, at token, soft bool) domain.Reference {
	return domain.Reference{
		Kind:    kind,
		Name:    name,
		Dialect: f.dialect,
		Line:    at.line,
		Soft:    soft,
	}
}
