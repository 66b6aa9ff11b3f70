package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.trai.ch/weft/internal/adapters/detector" //nolint:depguard // Output mode selection for list
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/ui/style"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Install copies IPs into the cache. With paths, each path is an IP root to
// install. Without paths, every locked dependency of the current IP that is
// missing from the cache is installed from its recorded source.
func (a *App) Install(ctx context.Context, paths []string) error {
	if len(paths) > 0 {
		return a.installPaths(ctx, paths)
	}

	p, err := a.project()
	if err != nil {
		return err
	}
	lock, err := a.manifests.LoadLock(p.root)
	if err != nil {
		return err
	}
	if lock == nil {
		return domain.Fail(domain.ErrLockNotFound, "ip", p.manifest.Spec().String())
	}

	installed := 0
	for _, entry := range lock.Entries {
		if entry.Name == p.manifest.Name {
			continue
		}
		ok, err := a.installLocked(ctx, entry)
		if err != nil {
			return err
		}
		if ok {
			installed++
		}
	}
	a.logger.Info(fmt.Sprintf("installed %s", pluralize(installed, "ip")))
	return nil
}

func (a *App) installPaths(ctx context.Context, paths []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		g.Go(func() error {
			abs, err := filepath.Abs(path)
			if err != nil {
				return zerr.With(zerr.Wrap(err, "failed to resolve path"), "path", path)
			}
			entry, err := a.cache.Install(ctx, abs)
			if err != nil {
				return err
			}
			a.logger.Info("installed " + entry.Spec().String())
			return nil
		})
	}
	return g.Wait()
}

// installLocked makes sure entry is cached with the locked checksum. It
// reports whether anything was copied.
func (a *App) installLocked(ctx context.Context, entry domain.LockEntry) (bool, error) {
	spec := entry.Spec()
	cached, err := a.cache.Lookup(spec)
	switch {
	case err == nil:
		if entry.Checksum != "" && cached.Checksum != entry.Checksum {
			return false, domain.Fail(domain.ErrChecksumMismatch,
				"ip", spec.String(), "locked", entry.Checksum, "cached", cached.Checksum)
		}
		return false, nil
	case !errors.Is(err, domain.ErrNotInstalled):
		return false, err
	}

	if entry.Source == "" {
		return false, domain.Fail(domain.ErrNotInstalled, "ip", spec.String())
	}
	if entry.Checksum != "" {
		sum, err := a.hasher.Checksum(entry.Source)
		if err != nil {
			return false, err
		}
		if sum != entry.Checksum {
			return false, domain.Fail(domain.ErrChecksumMismatch,
				"ip", spec.String(), "locked", entry.Checksum, "source", sum)
		}
	}
	if _, err := a.cache.Install(ctx, entry.Source); err != nil {
		return false, err
	}
	a.logger.Info("installed " + spec.String())
	return true, nil
}

// Uninstall removes name, or only name:version, from the cache.
func (a *App) Uninstall(_ context.Context, spec string) error {
	name, ver, hasVersion := strings.Cut(spec, ":")
	if domain.ValidateIPName(name) != nil {
		return domain.Fail(domain.ErrInvalidSpec, "spec", spec)
	}
	var version domain.Version
	if hasVersion {
		v, err := domain.ParseVersion(ver)
		if err != nil {
			return domain.Fail(domain.ErrInvalidSpec, "spec", spec, "version", err.Error())
		}
		version = v
	}

	removed, err := a.cache.Uninstall(name, version)
	if err != nil {
		return err
	}
	for _, e := range removed {
		a.logger.Info("uninstalled " + e.Spec().String())
	}
	return nil
}

// List prints the installed IPs. outputMode is "auto", "styled" or "plain".
func (a *App) List(_ context.Context, outputMode string) error {
	entries, err := a.cache.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		a.logger.Info("no ips installed")
		return nil
	}

	mode := detector.ResolveMode(detector.DetectEnvironment(), outputMode)
	if mode == detector.ModeStyled {
		return writeTable(a.out, entries)
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(a.out, "%s\t%s\t%s\t%s\n",
			e.Name, e.Version, domain.ShortChecksum(e.Checksum), e.Dir); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w io.Writer, entries []domain.CacheEntry) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(style.Muted).
		Headers("NAME", "VERSION", "CHECKSUM", "PATH").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return style.Header.Padding(0, 1)
			case col >= 2:
				return style.Muted.Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		})
	for _, e := range entries {
		t.Row(e.Name, e.Version.String(), domain.ShortChecksum(e.Checksum), e.Dir)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
