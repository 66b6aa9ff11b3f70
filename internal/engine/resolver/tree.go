package resolver

import (
	"strings"

	"go.trai.ch/weft/internal/core/domain"
)

// Glyphs draws the branches of a tree report.
type Glyphs struct {
	Branch string
	Last   string
	Pipe   string
	Space  string
}

var (
	// UnicodeGlyphs is the default box-drawing set.
	UnicodeGlyphs = Glyphs{Branch: "├─ ", Last: "└─ ", Pipe: "│  ", Space: "   "}
	// ASCIIGlyphs is used with --ascii.
	ASCIIGlyphs = Glyphs{Branch: "+- ", Last: "\\- ", Pipe: "|  ", Space: "   "}
)

// Tree renders the lock graph below root depth first, one "name:version"
// line per IP. Children are ordered by (name, version). Every IP appears
// exactly once: a node claims all of its children that are not printed yet
// before descending, so a dependency shared by several IPs is listed under
// the first, shallowest IP that requires it.
func Tree(lock *domain.Lock, root string, g Glyphs) (string, error) {
	entry, ok := lock.Get(root)
	if !ok {
		return "", domain.Fail(domain.ErrInvalidLock, "ip", root, "reason", "root is not locked")
	}

	var b strings.Builder
	b.WriteString(entry.Spec().String())
	b.WriteByte('\n')
	seen := map[string]bool{root: true}
	if err := writeChildren(&b, lock, entry, "", g, seen); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeChildren(b *strings.Builder, lock *domain.Lock, e domain.LockEntry, prefix string, g Glyphs, seen map[string]bool) error {
	var children []domain.LockEntry
	for _, dep := range e.Dependencies {
		if seen[dep.Name] {
			continue
		}
		child, ok := lock.Get(dep.Name)
		if !ok {
			return domain.Fail(domain.ErrInvalidLock, "ip", dep.String(), "reason", "dependency is not locked")
		}
		seen[dep.Name] = true
		children = append(children, child)
	}

	for i, child := range children {
		branch, indent := g.Branch, g.Pipe
		if i == len(children)-1 {
			branch, indent = g.Last, g.Space
		}
		b.WriteString(prefix)
		b.WriteString(branch)
		b.WriteString(child.Spec().String())
		b.WriteByte('\n')
		if err := writeChildren(b, lock, child, prefix+indent, g, seen); err != nil {
			return err
		}
	}
	return nil
}
