// Package planner turns an IP and its locked dependencies into a blueprint.
package planner

import (
	"context"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/engine/scanner"
	"go.trai.ch/zerr"
)

// Request describes one planning run.
type Request struct {
	// Dir is the IP root.
	Dir      string
	Manifest *domain.Manifest
	// Lock is the resolved lock of the IP. A nil lock plans the IP alone.
	Lock *domain.Lock
	Top  TopSpec
	// Strict fails the plan when any scanned file produced diagnostics.
	Strict bool
}

// Result is the outcome of a successful plan.
type Result struct {
	Blueprint   *domain.Blueprint
	Graph       *domain.Graph
	Diagnostics []domain.ParseDiagnostic
}

// Planner scans an IP and its dependencies and orders the files a top unit
// needs.
type Planner struct {
	scanner *scanner.Scanner
	sources ports.SourceWalker
	catalog ports.Catalog
	tracer  ports.Tracer
}

// New creates a Planner.
func New(s *scanner.Scanner, sources ports.SourceWalker, catalog ports.Catalog, tracer ports.Tracer) *Planner {
	return &Planner{scanner: s, sources: sources, catalog: catalog, tracer: tracer}
}

// Plan builds the merged unit graph for req and orders the closure of the
// top unit.
func (p *Planner) Plan(ctx context.Context, req Request) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "plan", ports.WithAttribute("ip", req.Manifest.Spec().String()))
	defer span.End()

	res, err := p.plan(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("top", res.Blueprint.Top.String())
	span.SetAttribute("units", len(res.Blueprint.Entries))
	return res, nil
}

func (p *Planner) plan(ctx context.Context, req Request) (*Result, error) {
	g, diags, err := p.Load(ctx, req.Dir, req.Manifest, req.Lock)
	if err != nil {
		return nil, err
	}
	if req.Strict && len(diags) > 0 {
		return nil, diagnosticsError(diags)
	}

	top, arch, err := SelectTop(g, req.Top)
	if err != nil {
		return nil, withDiagnostics(err, diags)
	}
	bp, err := Order(g, top, arch)
	if err != nil {
		return nil, withDiagnostics(err, diags)
	}
	return &Result{Blueprint: bp, Graph: g, Diagnostics: diags}, nil
}

// Load scans the IP at dir and every dependency in lock, and builds the
// merged unit graph rooted at the IP's library. Scanner diagnostics are
// returned alongside the graph; the files they belong to contribute no
// units.
func (p *Planner) Load(ctx context.Context, dir string, m *domain.Manifest, lock *domain.Lock) (*domain.Graph, []domain.ParseDiagnostic, error) {
	ctx, span := p.tracer.Start(ctx, "scan")
	defer span.End()

	root := domain.NewLibrary(m.LibraryID(), m.Spec())
	libs := map[string]*domain.Library{m.Name: root}
	dirs := map[string]string{m.Name: dir}

	// Root first, then dependencies by name, so discovery order is stable.
	order := []string{m.Name}
	if lock != nil {
		order = append(order, lock.Closure(m.Name)...)
	}
	for _, name := range order[1:] {
		entry, _ := lock.Get(name)
		lib, libDir, err := p.dependency(entry)
		if err != nil {
			span.RecordError(err)
			return nil, nil, err
		}
		libs[name] = lib
		dirs[name] = libDir
	}
	if lock != nil {
		for _, name := range order {
			entry, ok := lock.Get(name)
			if !ok {
				continue
			}
			for _, d := range entry.Dependencies {
				if dep, ok := libs[d.Name]; ok {
					libs[name].AddDependency(dep)
				}
			}
		}
	}

	var diags []domain.ParseDiagnostic
	seq := 0
	files := 0
	for _, name := range order {
		sources, err := p.sources.Sources(dirs[name])
		if err != nil {
			span.RecordError(err)
			return nil, nil, err
		}
		results, err := p.scanner.ScanAll(ctx, sources)
		if err != nil {
			span.RecordError(err)
			return nil, nil, err
		}
		var d []domain.ParseDiagnostic
		seq, d = scanner.Aggregate(libs[name], results, seq)
		diags = append(diags, d...)
		files += len(sources)
	}
	span.SetAttribute("files", files)
	span.SetAttribute("units", seq)

	g, err := domain.BuildGraph(root, nil)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	return g, diags, nil
}

// dependency prepares the library of one locked IP from its cache entry.
func (p *Planner) dependency(entry domain.LockEntry) (*domain.Library, string, error) {
	cached, err := p.catalog.Lookup(entry.Spec())
	if err != nil {
		return nil, "", err
	}
	if entry.Checksum != "" && cached.Checksum != entry.Checksum {
		return nil, "", domain.Fail(domain.ErrChecksumMismatch,
			"ip", entry.Spec().String(),
			"locked", entry.Checksum,
			"cached", cached.Checksum,
		)
	}
	m, err := p.catalog.Manifest(entry.Spec())
	if err != nil {
		return nil, "", err
	}
	return domain.NewLibrary(m.LibraryID(), entry.Spec()), cached.Dir, nil
}

func diagnosticsError(diags []domain.ParseDiagnostic) error {
	first := diags[0]
	return domain.Fail(domain.ErrParseDiagnostic,
		"file", first.File,
		"line", first.Line,
		"message", first.Message,
		"count", len(diags),
	)
}

// withDiagnostics notes skipped files on a missing-reference failure, since
// the unit may live in a file the scanner rejected.
func withDiagnostics(err error, diags []domain.ParseDiagnostic) error {
	if len(diags) == 0 {
		return err
	}
	return zerr.With(err, "unscanned_files", len(diags))
}
