package domain

import (
	"cmp"
	"slices"
	"strings"
)

// Library is the insert-once unit table of one IP. Units land in it after
// all of the IP's files are scanned; duplicate detection does not depend on
// the order units arrive in.
type Library struct {
	Name Identifier
	IP   IPSpec

	units  map[UnitKey]*DesignUnit
	order  []*DesignUnit
	folded map[Identifier][]UnitKey
	archs  map[UnitKey][]*DesignUnit
	dups   map[UnitKey][]string
	deps   []*Library
}

// NewLibrary creates an empty library for ip compiling into name.
func NewLibrary(name Identifier, ip IPSpec) *Library {
	return &Library{
		Name:   name,
		IP:     ip,
		units:  make(map[UnitKey]*DesignUnit),
		folded: make(map[Identifier][]UnitKey),
		archs:  make(map[UnitKey][]*DesignUnit),
		dups:   make(map[UnitKey][]string),
	}
}

// Insert adds u, re-keyed into the library. Architectures never collide;
// a second architecture with the same name replaces the earlier one.
func (l *Library) Insert(u *DesignUnit) {
	u = u.WithLibrary(l.Name)

	if u.Kind == KindArchitecture {
		entity := u.Key.PrimaryKey()
		archs := slices.DeleteFunc(l.archs[entity], func(a *DesignUnit) bool {
			return a.Key.Secondary == u.Key.Secondary
		})
		l.archs[entity] = append(archs, u)
		l.units[u.Key] = u
		l.order = slices.DeleteFunc(l.order, func(o *DesignUnit) bool { return o.Key == u.Key })
		l.order = append(l.order, u)
		return
	}

	if prev, exists := l.units[u.Key]; exists {
		files := l.dups[u.Key]
		if len(files) == 0 {
			files = append(files, prev.File)
		}
		l.dups[u.Key] = append(files, u.File)
		return
	}

	l.units[u.Key] = u
	l.order = append(l.order, u)
	if !u.Key.IsSecondary() {
		f := u.Key.Name.Fold()
		l.folded[f] = append(l.folded[f], u.Key)
	}
}

// Err reports the duplicate identity with the smallest key, if any.
func (l *Library) Err() error {
	if len(l.dups) == 0 {
		return nil
	}
	keys := make([]UnitKey, 0, len(l.dups))
	for k := range l.dups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b UnitKey) int {
		return strings.Compare(a.String(), b.String())
	})
	k := keys[0]
	files := slices.Clone(l.dups[k])
	slices.Sort(files)
	return Fail(ErrDuplicateUnit,
		"library", k.Library.String(),
		"name", k.Name.String(),
		"files", strings.Join(files, ", "),
	)
}

// Units returns the units in insertion order.
func (l *Library) Units() []*DesignUnit {
	return l.order
}

// Get returns the unit with exactly key.
func (l *Library) Get(key UnitKey) (*DesignUnit, bool) {
	u, ok := l.units[key]
	return u, ok
}

// Lookup finds a primary unit by name as written in a from source. An exact
// miss falls back to a unique case-folded match, unless from is a
// case-sensitive dialect.
func (l *Library) Lookup(name Identifier, from Dialect) (*DesignUnit, bool) {
	if u, ok := l.units[UnitKey{Library: l.Name, Name: name}]; ok {
		return u, true
	}
	if from.CaseSensitive() {
		return nil, false
	}
	keys := l.folded[name.Fold()]
	if len(keys) != 1 {
		return nil, false
	}
	return l.units[keys[0]], true
}

// Architectures returns the architectures bound to entity, oldest first.
func (l *Library) Architectures(entity UnitKey) []*DesignUnit {
	return l.archs[entity]
}

// Body returns the package body bound to pkg.
func (l *Library) Body(pkg UnitKey) (*DesignUnit, bool) {
	return l.Get(UnitKey{Library: pkg.Library, Name: pkg.Name, Secondary: bodySecondary})
}

// AddDependency makes dep visible to references from this library.
func (l *Library) AddDependency(dep *Library) {
	if dep == l || slices.Contains(l.deps, dep) {
		return
	}
	l.deps = append(l.deps, dep)
}

// Dependencies returns the libraries visible from this one.
func (l *Library) Dependencies() []*Library {
	return l.deps
}

// DependencyScope resolves references against the libraries a library
// depends on. It is the default ExternalResolver.
type DependencyScope struct{}

// ResolveExternal implements ExternalResolver.
func (DependencyScope) ResolveExternal(from *Library, ref Reference) (*DesignUnit, *Library, error) {
	if !ref.Library.IsZero() && !ref.IsWork() && ref.Library != from.Name {
		for _, dep := range from.deps {
			if dep.Name != ref.Library.Fold() {
				continue
			}
			if u, ok := dep.Lookup(ref.Name, ref.Dialect); ok {
				return u, dep, nil
			}
		}
		return nil, nil, missingReference(ref)
	}

	type match struct {
		unit *DesignUnit
		lib  *Library
	}
	var matches []match
	for _, dep := range from.deps {
		u, ok := dep.Lookup(ref.Name, ref.Dialect)
		if !ok || (ref.Soft && !softAccepts(ref, u)) {
			continue
		}
		matches = append(matches, match{u, dep})
	}
	switch len(matches) {
	case 0:
		return nil, nil, missingReference(ref)
	case 1:
		return matches[0].unit, matches[0].lib, nil
	}
	slices.SortFunc(matches, func(a, b match) int {
		return cmp.Compare(a.unit.Key.String(), b.unit.Key.String())
	})
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.unit.Key.String()
	}
	return nil, nil, Fail(ErrAmbiguousReference,
		"reference", ref.String(),
		"candidates", strings.Join(names, ", "),
	)
}

func missingReference(ref Reference) error {
	return Fail(ErrMissingDependency, "reference", ref.String())
}
