// Package app implements the application layer for weft.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/engine/planner"
	"go.trai.ch/weft/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	logger    ports.Logger
	settings  *domain.Settings
	manifests ports.ManifestStore
	cache     ports.IPCache
	hasher    ports.Hasher
	executor  ports.Executor
	watcher   ports.Watcher
	resolver  *resolver.Resolver
	planner   *planner.Planner

	out     io.Writer
	workDir string
}

// New creates a new App instance.
func New(
	log ports.Logger,
	settings *domain.Settings,
	manifests ports.ManifestStore,
	cache ports.IPCache,
	hasher ports.Hasher,
	executor ports.Executor,
	watcher ports.Watcher,
	res *resolver.Resolver,
	plan *planner.Planner,
) *App {
	return &App{
		logger:    log,
		settings:  settings,
		manifests: manifests,
		cache:     cache,
		hasher:    hasher,
		executor:  executor,
		watcher:   watcher,
		resolver:  res,
		planner:   plan,
		out:       os.Stdout,
		workDir:   ".",
	}
}

// WithOutput sets where reports (tree, list, plan --json) are written.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithWorkDir sets the directory the IP root is searched from.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// project is the IP the command runs in.
type project struct {
	root     string
	manifest *domain.Manifest
}

func (a *App) project() (*project, error) {
	root, err := a.manifests.FindRoot(a.workDir)
	if err != nil {
		return nil, err
	}
	m, err := a.manifests.LoadManifest(root)
	if err != nil {
		return nil, err
	}
	return &project{root: root, manifest: m}, nil
}

// LockOptions configuration for the Lock method.
type LockOptions struct {
	Dev bool
}

// Lock resolves the IP's dependencies and writes ip.lock.
func (a *App) Lock(ctx context.Context, opts LockOptions) (*domain.Lock, error) {
	p, err := a.project()
	if err != nil {
		return nil, err
	}
	lock, err := a.resolver.Resolve(ctx, p.manifest, resolver.Options{Dev: opts.Dev})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve dependencies")
	}
	if err := a.manifests.SaveLock(p.root, lock); err != nil {
		return nil, err
	}
	a.logger.Info(fmt.Sprintf("locked %s (%s)", p.manifest.Spec(), pluralize(len(lock.Entries), "ip")))
	return lock, nil
}

// currentLock returns the lock on disk when it still matches the manifest,
// and a fresh resolution otherwise. stale reports whether the result
// differs from what is on disk.
func (a *App) currentLock(ctx context.Context, p *project, dev bool) (lock *domain.Lock, stale bool, err error) {
	onDisk, err := a.manifests.LoadLock(p.root)
	if err != nil {
		return nil, false, err
	}
	if onDisk != nil && onDisk.Satisfies(p.manifest, dev) {
		return onDisk, false, nil
	}
	lock, err = a.resolver.Resolve(ctx, p.manifest, resolver.Options{Dev: dev})
	if err != nil {
		return nil, false, zerr.Wrap(err, "failed to resolve dependencies")
	}
	return lock, true, nil
}

// TreeOptions configuration for the Tree method.
type TreeOptions struct {
	Dev   bool
	ASCII bool
}

// Tree prints the resolved dependency graph of the IP.
func (a *App) Tree(ctx context.Context, opts TreeOptions) error {
	p, err := a.project()
	if err != nil {
		return err
	}
	lock, _, err := a.currentLock(ctx, p, opts.Dev)
	if err != nil {
		return err
	}
	glyphs := resolver.UnicodeGlyphs
	if opts.ASCII {
		glyphs = resolver.ASCIIGlyphs
	}
	tree, err := resolver.Tree(lock, p.manifest.Name, glyphs)
	if err != nil {
		return err
	}
	_, err = io.WriteString(a.out, tree)
	return err
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
