// Package domain contains the core domain models: design units, the unit
// graph, IP manifests and locks, and blueprints.
package domain

import (
	"errors"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// ExternalResolver finds the unit a reference names when it is not defined
// in the referring library.
type ExternalResolver interface {
	ResolveExternal(from *Library, ref Reference) (*DesignUnit, *Library, error)
}

// Edge is a resolved dependency. To is always a primary unit (or, for
// secondary units, their own primary). Arch is the architecture selected
// for To when To is an entity; it extends the closure but imposes no order.
type Edge struct {
	To   UnitKey
	Arch UnitKey
	Ref  Reference
}

type pendingEdge struct {
	from   *DesignUnit
	target *DesignUnit
	lib    *Library
	ref    Reference
}

// Graph is the merged design unit graph rooted at one library.
type Graph struct {
	root    *Library
	libs    []*Library
	libOf   map[UnitKey]*Library
	units   map[UnitKey]*DesignUnit
	edges   map[UnitKey][]Edge
	missing map[UnitKey][]error

	// bindings holds architectures chosen by configurations, per entity.
	bindings map[UnitKey][]Identifier
	// localBindings holds bindings made by a specific unit.
	localBindings map[UnitKey]map[UnitKey]Identifier
}

// BuildGraph resolves every reference of root's units, pulling in the
// external libraries they reach through ext. A nil ext uses DependencyScope.
// Duplicate units in any reached library are fatal; unresolved references
// are recorded per unit and surface from Closure and Validate.
func BuildGraph(root *Library, ext ExternalResolver) (*Graph, error) {
	if ext == nil {
		ext = DependencyScope{}
	}
	g := &Graph{
		root:          root,
		libOf:         make(map[UnitKey]*Library),
		units:         make(map[UnitKey]*DesignUnit),
		edges:         make(map[UnitKey][]Edge),
		missing:       make(map[UnitKey][]error),
		bindings:      make(map[UnitKey][]Identifier),
		localBindings: make(map[UnitKey]map[UnitKey]Identifier),
	}

	if err := checkSharedLibraries(root); err != nil {
		return nil, err
	}

	var pending []pendingEdge
	queued := map[*Library]bool{root: true}
	queue := []*Library{root}

	for len(queue) > 0 {
		lib := queue[0]
		queue = queue[1:]
		if err := lib.Err(); err != nil {
			return nil, err
		}
		g.libs = append(g.libs, lib)

		for _, u := range lib.Units() {
			g.units[u.Key] = u
			g.libOf[u.Key] = lib
			pending = append(pending, g.implicitEdges(lib, u)...)

			for _, ref := range u.References {
				if ref.Kind == RefLibrary {
					continue
				}
				target, tlib, err := g.resolve(lib, ref, ext)
				if err != nil {
					if !ref.Soft || errors.Is(err, ErrAmbiguousReference) {
						g.recordMissing(u, err)
					}
					continue
				}
				if target.Key == u.Key || (ref.Soft && !softAccepts(ref, target)) {
					continue
				}
				if !queued[tlib] {
					queued[tlib] = true
					queue = append(queue, tlib)
				}
				pending = append(pending, pendingEdge{from: u, target: target, lib: tlib, ref: ref})
			}
		}
	}

	for _, p := range pending {
		if p.ref.Kind == RefBinding && p.target.Kind == KindEntity && !p.ref.Arch.IsZero() {
			g.bind(p.from.Key, p.target.Key, p.ref.Arch)
		}
	}
	for _, p := range pending {
		g.addEdge(p)
	}
	return g, nil
}

// checkSharedLibraries fails when two IPs compile into the same library and
// both define a unit with the same key.
func checkSharedLibraries(root *Library) error {
	owner := make(map[UnitKey]*DesignUnit)
	ownerLib := make(map[UnitKey]*Library)
	seen := map[*Library]bool{root: true}
	queue := []*Library{root}
	for len(queue) > 0 {
		lib := queue[0]
		queue = queue[1:]
		for _, u := range lib.Units() {
			prev, ok := owner[u.Key]
			if !ok {
				owner[u.Key] = u
				ownerLib[u.Key] = lib
				continue
			}
			if ownerLib[u.Key] == lib {
				continue
			}
			files := []string{prev.File, u.File}
			slices.Sort(files)
			return Fail(ErrDuplicateUnit,
				"library", u.Key.Library.String(),
				"name", u.Key.Name.String(),
				"files", strings.Join(files, ", "),
				"ips", ownerLib[u.Key].IP.String()+", "+lib.IP.String(),
			)
		}
		for _, dep := range lib.Dependencies() {
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}
	return nil
}

func (g *Graph) implicitEdges(lib *Library, u *DesignUnit) []pendingEdge {
	if !u.Key.IsSecondary() {
		return nil
	}
	primary, ok := lib.Get(u.Key.PrimaryKey())
	if !ok {
		ref := Reference{Kind: RefInstance, Library: lib.Name, Name: u.Key.Name, Dialect: u.Dialect, Line: u.Span.Line}
		g.recordMissing(u, missingReference(ref))
		return nil
	}
	return []pendingEdge{{from: u, target: primary, lib: lib}}
}

func (g *Graph) resolve(lib *Library, ref Reference, ext ExternalResolver) (*DesignUnit, *Library, error) {
	if ref.Library.IsZero() || ref.IsWork() || ref.Library == lib.Name {
		if u, ok := lib.Lookup(ref.Name, ref.Dialect); ok {
			return u, lib, nil
		}
		if ref.Library == lib.Name {
			return nil, nil, missingReference(ref)
		}
	}
	return ext.ResolveExternal(lib, ref)
}

// softAccepts limits what a soft reference may bind to, so a record field
// access never drags in an entity that happens to share the prefix name.
func softAccepts(ref Reference, target *DesignUnit) bool {
	switch ref.Kind {
	case RefUse:
		return target.Kind == KindPackage
	case RefSymbol:
		return target.Kind == KindPackage || target.Kind == KindClass
	case RefExtends:
		return target.Kind == KindClass || target.Kind == KindInterface
	default:
		return true
	}
}

func (g *Graph) recordMissing(u *DesignUnit, err error) {
	err = zerr.With(err, "unit", u.Key.String())
	err = zerr.With(err, "file", u.File)
	g.missing[u.Key] = append(g.missing[u.Key], err)
}

func (g *Graph) bind(from, entity UnitKey, arch Identifier) {
	if g.localBindings[from] == nil {
		g.localBindings[from] = make(map[UnitKey]Identifier)
	}
	g.localBindings[from][entity] = arch
	if !slices.Contains(g.bindings[entity], arch) {
		g.bindings[entity] = append(g.bindings[entity], arch)
	}
}

func (g *Graph) addEdge(p pendingEdge) {
	e := Edge{To: p.target.Key, Ref: p.ref}
	if p.target.Kind.HasArchitectures() && p.from.Key.PrimaryKey() != p.target.Key {
		arch, err := g.selectArchitecture(p.from.Key, p.lib, p.target.Key, p.ref)
		if err != nil {
			g.recordMissing(p.from, err)
			return
		}
		e.Arch = arch
	}
	for _, existing := range g.edges[p.from.Key] {
		if existing.To == e.To && existing.Arch == e.Arch {
			return
		}
	}
	g.edges[p.from.Key] = append(g.edges[p.from.Key], e)
}

// selectArchitecture picks the architecture a reference to entity binds to:
// the pinned one, else one chosen by a configuration (the referrer's own
// first), else the most recently scanned.
func (g *Graph) selectArchitecture(from UnitKey, lib *Library, entity UnitKey, ref Reference) (UnitKey, error) {
	archs := lib.Architectures(entity)
	find := func(name Identifier) (UnitKey, bool) {
		for _, a := range archs {
			if a.Key.Secondary == name.Fold() {
				return a.Key, true
			}
		}
		return UnitKey{}, false
	}

	if !ref.Arch.IsZero() {
		if k, ok := find(ref.Arch); ok {
			return k, nil
		}
		pinned := ref
		pinned.Library = entity.Library
		return UnitKey{}, missingReference(pinned)
	}
	if name, ok := g.localBindings[from][entity]; ok {
		if k, ok := find(name); ok {
			return k, nil
		}
	}
	if bound := g.bindings[entity]; len(bound) == 1 {
		if k, ok := find(bound[0]); ok {
			return k, nil
		}
	}
	return latestArchitecture(archs), nil
}

func latestArchitecture(archs []*DesignUnit) UnitKey {
	var latest *DesignUnit
	for _, a := range archs {
		if latest == nil || a.Seq > latest.Seq {
			latest = a
		}
	}
	if latest == nil {
		return UnitKey{}
	}
	return latest.Key
}

// Root returns the library the graph was built from.
func (g *Graph) Root() *Library {
	return g.root
}

// Unit returns the unit with key.
func (g *Graph) Unit(key UnitKey) (*DesignUnit, bool) {
	u, ok := g.units[key]
	return u, ok
}

// Edges returns the resolved edges leaving key, in reference order.
func (g *Graph) Edges(key UnitKey) []Edge {
	return g.edges[key]
}

// Units returns every unit in the graph ordered by discovery.
func (g *Graph) Units() []*DesignUnit {
	out := make([]*DesignUnit, 0, len(g.units))
	for _, u := range g.units {
		out = append(out, u)
	}
	sortBySeq(out)
	return out
}

// DefaultArchitecture returns the architecture used when entity is
// referenced without a binding.
func (g *Graph) DefaultArchitecture(entity UnitKey) UnitKey {
	lib, ok := g.libOf[entity]
	if !ok {
		return UnitKey{}
	}
	k, _ := g.selectArchitecture(UnitKey{}, lib, entity, Reference{})
	return k
}

// Validate reports the first unresolved reference anywhere in the graph.
func (g *Graph) Validate() error {
	for _, u := range g.Units() {
		if errs := g.missing[u.Key]; len(errs) > 0 {
			return errs[0]
		}
	}
	return nil
}

// Closure returns the units reachable from root, ordered by discovery. For
// an entity root, arch selects the architecture; zero means the default.
// Package bodies follow their packages into the closure.
func (g *Graph) Closure(root UnitKey, arch Identifier) ([]*DesignUnit, error) {
	top, ok := g.units[root]
	if !ok {
		return nil, Fail(ErrTopUnitNotFound, "unit", root.String())
	}

	seen := make(map[UnitKey]bool)
	var out []*DesignUnit
	stack := []UnitKey{root}

	if top.Kind.HasArchitectures() {
		var archKey UnitKey
		if arch.IsZero() {
			archKey = g.DefaultArchitecture(root)
		} else {
			archKey = UnitKey{Library: root.Library, Name: root.Name, Secondary: arch.Fold()}
			if _, ok := g.units[archKey]; !ok {
				return nil, Fail(ErrTopUnitNotFound, "unit", archKey.String())
			}
		}
		if !archKey.Name.IsZero() {
			stack = append(stack, archKey)
		}
	}

	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[k] {
			continue
		}
		seen[k] = true
		u := g.units[k]
		out = append(out, u)

		for _, e := range g.edges[k] {
			stack = append(stack, e.To)
			if !e.Arch.Name.IsZero() {
				stack = append(stack, e.Arch)
			}
		}
		if u.Kind == KindPackage {
			if body, ok := g.libOf[k].Body(k); ok {
				stack = append(stack, body.Key)
			}
		}
	}

	sortBySeq(out)
	for _, u := range out {
		if errs := g.missing[u.Key]; len(errs) > 0 {
			return nil, errs[0]
		}
	}
	return out, nil
}

// DetectCycles checks the whole graph for dependency cycles.
func (g *Graph) DetectCycles() error {
	return g.DetectCyclesIn(g.Units())
}

// DetectCyclesIn checks the subgraph induced by units for cycles. Each
// architecture is folded into its entity, so an entity whose architecture
// instantiates, directly or indirectly, the entity itself is a cycle.
// The error carries the cycle path as "a -> b -> a".
func (g *Graph) DetectCyclesIn(units []*DesignUnit) error {
	in := make(map[UnitKey]bool, len(units))
	for _, u := range units {
		in[u.Key] = true
	}
	node := func(k UnitKey) UnitKey {
		if u, ok := g.units[k]; ok && u.Kind == KindArchitecture {
			return k.PrimaryKey()
		}
		return k
	}

	var nodes []UnitKey
	succ := make(map[UnitKey][]UnitKey)
	for _, u := range units {
		n := node(u.Key)
		if _, ok := succ[n]; !ok {
			nodes = append(nodes, n)
			succ[n] = nil
		}
		for _, e := range g.edges[u.Key] {
			to := node(e.To)
			if to == n || !in[e.To] || slices.Contains(succ[n], to) {
				continue
			}
			succ[n] = append(succ[n], to)
		}
	}

	state := make(map[UnitKey]int) // 0: white, 1: gray, 2: black
	var path []UnitKey

	var visit func(n UnitKey) error
	visit = func(n UnitKey) error {
		state[n] = 1
		path = append(path, n)
		for _, m := range succ[n] {
			switch state[m] {
			case 1:
				return buildCycleError(path, m)
			case 0:
				if err := visit(m); err != nil {
					return err
				}
			}
		}
		state[n] = 2
		path = path[:len(path)-1]
		return nil
	}

	for _, n := range nodes {
		if state[n] == 0 {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildCycleError renders the cycle that closes at dep.
func buildCycleError(path []UnitKey, dep UnitKey) error {
	start := slices.Index(path, dep)
	parts := make([]string, 0, len(path)-start+1)
	for _, k := range path[start:] {
		parts = append(parts, k.String())
	}
	parts = append(parts, dep.String())
	return Fail(ErrCycleDetected, "cycle", strings.Join(parts, " -> "))
}

// TopCandidates returns the root library's elaboratable units that no other
// root-library unit depends on, ordered by discovery.
func (g *Graph) TopCandidates() []*DesignUnit {
	referenced := make(map[UnitKey]bool)
	for _, u := range g.root.Units() {
		for _, e := range g.edges[u.Key] {
			if e.To != u.Key.PrimaryKey() {
				referenced[e.To] = true
			}
		}
	}
	var out []*DesignUnit
	for _, u := range g.root.Units() {
		if u.Kind.IsElaboratable() && !referenced[u.Key] {
			out = append(out, u)
		}
	}
	sortBySeq(out)
	return out
}

func sortBySeq(units []*DesignUnit) {
	slices.SortStableFunc(units, func(a, b *DesignUnit) int {
		return a.Seq - b.Seq
	})
}
