package domain

import (
	"slices"
	"strings"
)

// LockVersion is the schema version written into ip.lock.
const LockVersion = 1

// LockEntry is one resolved IP in a lock.
type LockEntry struct {
	Name         string
	Version      Version
	Checksum     string
	Source       string
	Dependencies []IPSpec
}

// Spec returns the entry's (name, version).
func (e LockEntry) Spec() IPSpec {
	return IPSpec{Name: e.Name, Version: e.Version}
}

// Lock is the flattened resolution: one version per IP name plus the edges
// between them. Entries are kept sorted by (name, version).
type Lock struct {
	Entries []LockEntry
}

// NewLock sorts entries and their dependency lists into canonical order.
func NewLock(entries []LockEntry) *Lock {
	out := make([]LockEntry, len(entries))
	for i, e := range entries {
		e.Dependencies = slices.Clone(e.Dependencies)
		slices.SortFunc(e.Dependencies, IPSpec.Compare)
		out[i] = e
	}
	slices.SortFunc(out, func(a, b LockEntry) int {
		return a.Spec().Compare(b.Spec())
	})
	return &Lock{Entries: out}
}

// Get returns the entry for name.
func (l *Lock) Get(name string) (LockEntry, bool) {
	i, ok := slices.BinarySearchFunc(l.Entries, name, func(e LockEntry, n string) int {
		return strings.Compare(e.Name, n)
	})
	if !ok {
		return LockEntry{}, false
	}
	return l.Entries[i], true
}

// Versions returns the flattened name -> version assignment.
func (l *Lock) Versions() map[string]Version {
	m := make(map[string]Version, len(l.Entries))
	for _, e := range l.Entries {
		m[e.Name] = e.Version
	}
	return m
}

// LockEdge is one dependency edge between locked IPs.
type LockEdge struct {
	From IPSpec
	To   IPSpec
}

// Edges returns the transitive edge set sorted by (from, to).
func (l *Lock) Edges() []LockEdge {
	var edges []LockEdge
	for _, e := range l.Entries {
		for _, d := range e.Dependencies {
			edges = append(edges, LockEdge{From: e.Spec(), To: d})
		}
	}
	return edges
}

// Closure returns the names reachable from name, excluding name itself,
// sorted.
func (l *Lock) Closure(name string) []string {
	seen := map[string]bool{name: true}
	stack := []string{name}
	var out []string
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e, ok := l.Get(n)
		if !ok {
			continue
		}
		for _, d := range e.Dependencies {
			if seen[d.Name] {
				continue
			}
			seen[d.Name] = true
			out = append(out, d.Name)
			stack = append(stack, d.Name)
		}
	}
	slices.Sort(out)
	return out
}

// Satisfies reports whether the lock still matches m: the root entry has
// the manifest's name and version, and its edges are exactly the
// manifest's requirements, each satisfied by the locked version.
func (l *Lock) Satisfies(m *Manifest, dev bool) bool {
	root, ok := l.Get(m.Name)
	if !ok || root.Version.Compare(m.Version) != 0 {
		return false
	}
	reqs := m.Requirements(dev)
	if len(reqs) != len(root.Dependencies) {
		return false
	}
	for _, req := range reqs {
		entry, ok := l.Get(req.Name)
		if !ok || !req.Constraint.Matches(entry.Version) {
			return false
		}
		if !slices.Contains(root.Dependencies, entry.Spec()) {
			return false
		}
	}
	return true
}
