// Package resolver flattens the IP dependency graph into a lock.
package resolver

import (
	"context"
	"slices"
	"strings"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

// Options controls a resolution.
type Options struct {
	// Dev includes the root IP's dev-dependencies.
	Dev bool
}

// Resolver computes locks from installed manifests.
type Resolver struct {
	catalog ports.Catalog
	tracer  ports.Tracer
}

// New creates a Resolver over catalog.
func New(catalog ports.Catalog, tracer ports.Tracer) *Resolver {
	return &Resolver{catalog: catalog, tracer: tracer}
}

type resolution struct {
	catalog ports.Catalog
	root    *domain.Manifest

	chosen  map[string]domain.Version
	chooser map[string][]string // path that first selected each name
	state   map[string]int      // 1: on the current path, 2: done
	path    []string
	entries []domain.LockEntry
}

// Resolve walks the dependency graph from root depth first, visiting
// dependencies in name order. Each constraint selects the highest installed
// version that matches it; every occurrence of a name must select the same
// version.
func (r *Resolver) Resolve(ctx context.Context, root *domain.Manifest, opts Options) (*domain.Lock, error) {
	_, span := r.tracer.Start(ctx, "resolve", ports.WithAttribute("ip", root.Spec().String()))
	defer span.End()

	res := &resolution{
		catalog: r.catalog,
		root:    root,
		chosen:  map[string]domain.Version{root.Name: root.Version},
		chooser: map[string][]string{root.Name: {root.Name}},
		state:   make(map[string]int),
	}
	if err := res.visit(root, opts.Dev); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("ips", len(res.entries))
	return domain.NewLock(res.entries), nil
}

func (res *resolution) visit(m *domain.Manifest, dev bool) error {
	res.state[m.Name] = 1
	res.path = append(res.path, m.Name)

	reqs := m.Requirements(dev)
	deps := make([]domain.IPSpec, 0, len(reqs))
	for _, req := range reqs {
		if res.state[req.Name] == 1 {
			return res.cycle(req.Name)
		}

		v, err := res.pick(m, req)
		if err != nil {
			return err
		}
		if prev, ok := res.chosen[req.Name]; ok && prev.Compare(v) != 0 {
			return res.collision(req.Name, prev, v)
		}
		res.chosen[req.Name] = v
		if _, ok := res.chooser[req.Name]; !ok {
			res.chooser[req.Name] = append(slices.Clone(res.path), req.Name)
		}
		spec := domain.IPSpec{Name: req.Name, Version: v}
		deps = append(deps, spec)

		if res.state[req.Name] == 2 {
			continue
		}
		dm, err := res.catalog.Manifest(spec)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to read dependency manifest"), "ip", spec.String())
		}
		if err := res.visit(dm, false); err != nil {
			return err
		}
	}

	entry := domain.LockEntry{
		Name:         m.Name,
		Version:      m.Version,
		Dependencies: deps,
	}
	if m != res.root {
		cached, err := res.catalog.Lookup(m.Spec())
		if err != nil {
			return err
		}
		entry.Checksum = cached.Checksum
		entry.Source = cached.Source
	}
	res.entries = append(res.entries, entry)

	res.path = res.path[:len(res.path)-1]
	res.state[m.Name] = 2
	return nil
}

// pick selects the highest installed version matching req.
func (res *resolution) pick(from *domain.Manifest, req domain.Dependency) (domain.Version, error) {
	available, err := res.catalog.Versions(req.Name)
	if err != nil {
		return domain.Version{}, err
	}
	v, ok := req.Constraint.Select(available)
	if !ok {
		return domain.Version{}, domain.Fail(domain.ErrVersionNotFound,
			"ip", req.Name,
			"constraint", req.Constraint.String(),
			"required_by", from.Spec().String(),
		)
	}
	return v, nil
}

func (res *resolution) cycle(name string) error {
	start := slices.Index(res.path, name)
	parts := append(slices.Clone(res.path[start:]), name)
	return domain.Fail(domain.ErrCycleDetected, "cycle", strings.Join(parts, " -> "))
}

func (res *resolution) collision(name string, a, b domain.Version) error {
	versions := []domain.Version{a, b}
	domain.SortVersions(versions)
	names := make([]string, len(versions))
	for i, v := range versions {
		names[i] = v.String()
	}
	return domain.Fail(domain.ErrNamespaceCollision,
		"ip", name,
		"versions", strings.Join(names, ", "),
		"first_required_by", strings.Join(res.chooser[name], " -> "),
		"then_required_by", strings.Join(append(slices.Clone(res.path), name), " -> "),
	)
}
