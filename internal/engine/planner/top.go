package planner

import (
	"strings"

	"go.trai.ch/weft/internal/core/domain"
)

// TopSpec is a parsed --top argument: [library.]name[(architecture)].
type TopSpec struct {
	Library domain.Identifier
	Name    domain.Identifier
	Arch    domain.Identifier
}

// ParseTop parses s. An empty s yields the zero TopSpec.
func ParseTop(s string) (TopSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TopSpec{}, nil
	}
	var spec TopSpec
	if open := strings.IndexByte(s, '('); open >= 0 {
		if !strings.HasSuffix(s, ")") || open == 0 {
			return TopSpec{}, domain.Fail(domain.ErrInvalidSpec, "top", s)
		}
		spec.Arch = domain.NewIdentifier(s[open+1 : len(s)-1])
		s = s[:open]
	}
	if lib, name, ok := strings.Cut(s, "."); ok {
		spec.Library = domain.NewIdentifier(lib)
		s = name
	}
	if s == "" || strings.ContainsAny(s, ".() \t") {
		return TopSpec{}, domain.Fail(domain.ErrInvalidSpec, "top", s)
	}
	spec.Name = domain.NewIdentifier(s)
	return spec, nil
}

// IsZero reports whether no top was given.
func (t TopSpec) IsZero() bool {
	return t.Name.IsZero()
}

func (t TopSpec) String() string {
	k := domain.UnitKey{Library: t.Library, Name: t.Name, Secondary: t.Arch}
	return k.String()
}

// SelectTop resolves the top unit of g. An explicit top is looked up in the
// root library, or in the named dependency library. Without one, the root
// library must have exactly one elaboratable unit that no other local unit
// depends on.
func SelectTop(g *domain.Graph, top TopSpec) (domain.UnitKey, domain.Identifier, error) {
	if !top.IsZero() {
		u, ok := lookupTop(g.Root(), top)
		if !ok || !u.Kind.IsElaboratable() {
			return domain.UnitKey{}, domain.Identifier{}, domain.Fail(domain.ErrTopUnitNotFound, "unit", top.String())
		}
		return u.Key, top.Arch, nil
	}

	candidates := g.TopCandidates()
	switch len(candidates) {
	case 0:
		return domain.UnitKey{}, domain.Identifier{}, domain.Fail(domain.ErrNoTopUnit, "library", g.Root().Name.String())
	case 1:
		return candidates[0].Key, domain.Identifier{}, nil
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Key.String()
	}
	return domain.UnitKey{}, domain.Identifier{}, domain.Fail(domain.ErrAmbiguousTopUnit,
		"candidates", strings.Join(names, ", "),
	)
}

func lookupTop(root *domain.Library, top TopSpec) (*domain.DesignUnit, bool) {
	if top.Library.IsZero() || top.Library.Fold() == root.Name || top.Library.Fold() == domain.WorkLibrary {
		return root.Lookup(top.Name, domain.DialectUnknown)
	}
	for _, dep := range root.Dependencies() {
		if dep.Name == top.Library.Fold() {
			return dep.Lookup(top.Name, domain.DialectUnknown)
		}
	}
	return nil, false
}
