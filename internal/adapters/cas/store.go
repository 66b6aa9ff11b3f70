// Package cas implements the content-addressed IP cache.
package cas

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	weftfs "go.trai.ch/weft/internal/adapters/fs"
	"go.trai.ch/weft/internal/adapters/manifest"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

const (
	metaSuffix    = ".meta.toml"
	stagingPrefix = ".staging-"
)

// meta is the sidecar describing one cache directory.
type meta struct {
	Name     string `toml:"name"`
	Version  string `toml:"version"`
	Checksum string `toml:"checksum"`
	Source   string `toml:"source,omitempty"`
}

// Store implements ports.IPCache. Each IP version lives in its own
// directory named <name>-<version>-<checksum[:10]>, next to a sidecar with
// the full checksum. At most one checksum per (name, version) is kept.
type Store struct {
	dir       string
	walker    *weftfs.Walker
	hasher    ports.Hasher
	manifests ports.ManifestStore

	flight singleflight.Group
	locks  keyedMutex

	mu    sync.RWMutex
	index map[string]domain.CacheEntry // by CacheKey; nil until loaded
}

var _ ports.IPCache = (*Store)(nil)

// NewStore creates a Store rooted at dir.
func NewStore(dir string, walker *weftfs.Walker, hasher ports.Hasher, manifests ports.ManifestStore) *Store {
	return &Store{
		dir:       filepath.Clean(dir),
		walker:    walker,
		hasher:    hasher,
		manifests: manifests,
	}
}

// Dir returns the cache root.
func (s *Store) Dir() string {
	return s.dir
}

// List returns every installed IP sorted by name and version.
func (s *Store) List() ([]domain.CacheEntry, error) {
	index, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	entries := make([]domain.CacheEntry, 0, len(index))
	for _, e := range index {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b domain.CacheEntry) int {
		return a.Spec().Compare(b.Spec())
	})
	return entries, nil
}

// Versions lists the installed versions of name in ascending order.
func (s *Store) Versions(name string) ([]domain.Version, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	var versions []domain.Version
	for _, e := range entries {
		if e.Name == name {
			versions = append(versions, e.Version)
		}
	}
	return versions, nil
}

// Lookup returns the entry for spec or ErrNotInstalled.
func (s *Store) Lookup(spec domain.IPSpec) (domain.CacheEntry, error) {
	index, err := s.loadIndex()
	if err != nil {
		return domain.CacheEntry{}, err
	}
	e, ok := index[domain.CacheKey(spec)]
	if !ok {
		return domain.CacheEntry{}, domain.Fail(domain.ErrNotInstalled, "ip", spec.String())
	}
	return e, nil
}

// Manifest reads the manifest of an installed IP version.
func (s *Store) Manifest(spec domain.IPSpec) (*domain.Manifest, error) {
	e, err := s.Lookup(spec)
	if err != nil {
		return nil, err
	}
	return s.manifests.LoadManifest(e.Dir)
}

// Install copies the IP rooted at dir into the cache. Concurrent installs of
// the same IP version share one copy.
func (s *Store) Install(ctx context.Context, dir string) (domain.CacheEntry, error) {
	src, err := filepath.Abs(dir)
	if err != nil {
		return domain.CacheEntry{}, zerr.Wrap(err, "failed to resolve directory")
	}
	m, err := s.manifests.LoadManifest(src)
	if err != nil {
		return domain.CacheEntry{}, err
	}
	sum, err := s.hasher.Checksum(src)
	if err != nil {
		return domain.CacheEntry{}, err
	}

	key := domain.CacheKey(m.Spec())
	v, err, _ := s.flight.Do(key+"/"+sum, func() (any, error) {
		unlock := s.locks.Lock(key)
		defer unlock()
		return s.install(ctx, src, m, sum)
	})
	if err != nil {
		return domain.CacheEntry{}, err
	}
	return v.(domain.CacheEntry), nil
}

func (s *Store) install(ctx context.Context, src string, m *domain.Manifest, sum string) (domain.CacheEntry, error) {
	old, err := s.Lookup(m.Spec())
	switch {
	case err == nil && old.Checksum == sum:
		return old, nil
	case err != nil && !errors.Is(err, domain.ErrNotInstalled):
		return domain.CacheEntry{}, err
	}

	entry := domain.CacheEntry{
		Name:     m.Name,
		Version:  m.Version,
		Checksum: sum,
		Dir:      filepath.Join(s.dir, dirName(m.Spec(), sum)),
		Source:   src,
	}
	fail := func(err error) (domain.CacheEntry, error) {
		return domain.CacheEntry{}, zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "ip", m.Spec().String())
	}

	if err := os.MkdirAll(s.dir, domain.DirPerm); err != nil {
		return fail(err)
	}
	staging, err := os.MkdirTemp(s.dir, stagingPrefix)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	if err := s.copyTree(ctx, src, staging); err != nil {
		return fail(err)
	}
	if err := writeMeta(entry); err != nil {
		return fail(err)
	}
	if err := os.RemoveAll(entry.Dir); err != nil {
		return fail(err)
	}
	if err := os.Rename(staging, entry.Dir); err != nil {
		return fail(err)
	}
	if old.Dir != "" && old.Dir != entry.Dir {
		if err := removeEntry(old); err != nil {
			return fail(err)
		}
	}

	s.mu.Lock()
	if s.index != nil {
		s.index[domain.CacheKey(entry.Spec())] = entry
	}
	s.mu.Unlock()
	return entry, nil
}

// Uninstall removes every installed version of name, or only version when
// it is set.
func (s *Store) Uninstall(name string, version domain.Version) ([]domain.CacheEntry, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}

	var removed []domain.CacheEntry
	for _, e := range entries {
		if e.Name != name || (!version.IsZero() && e.Version.Compare(version) != 0) {
			continue
		}
		unlock := s.locks.Lock(e.Key())
		err := removeEntry(e)
		if err == nil {
			s.mu.Lock()
			delete(s.index, e.Key())
			s.mu.Unlock()
		}
		unlock()
		if err != nil {
			return removed, zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "ip", e.Spec().String())
		}
		removed = append(removed, e)
	}

	if len(removed) == 0 {
		spec := name
		if !version.IsZero() {
			spec += ":" + version.String()
		}
		return nil, domain.Fail(domain.ErrNotInstalled, "ip", spec)
	}
	return removed, nil
}

// loadIndex returns a snapshot of the index, reading the cache directory
// on first use.
func (s *Store) loadIndex() (map[string]domain.CacheEntry, error) {
	s.mu.RLock()
	if s.index != nil {
		defer s.mu.RUnlock()
		return maps.Clone(s.index), nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index != nil {
		return maps.Clone(s.index), nil
	}

	dirents, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		s.index = make(map[string]domain.CacheEntry)
		return map[string]domain.CacheEntry{}, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "dir", s.dir)
	}

	index := make(map[string]domain.CacheEntry)
	for _, d := range dirents {
		name := d.Name()
		if d.IsDir() || !strings.HasSuffix(name, metaSuffix) {
			continue
		}
		e, err := readMeta(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(e.Dir); err != nil {
			continue
		}
		index[e.Key()] = e
	}
	s.index = index
	return maps.Clone(index), nil
}

func (s *Store) copyTree(ctx context.Context, src, dst string) error {
	for path, err := range s.walker.WalkFiles(src) {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if err := copyFile(path, filepath.Join(dst, rel)); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return err
	}
	in, err := os.Open(src) //nolint:gosec // Path comes from walking the IP tree
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // Best effort close in defer

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, domain.FilePerm) //nolint:gosec // Path is inside the staging directory
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func dirName(spec domain.IPSpec, sum string) string {
	return spec.Name + "-" + spec.Version.String() + "-" + domain.ShortChecksum(sum)
}

func writeMeta(e domain.CacheEntry) error {
	data, err := toml.Marshal(meta{
		Name:     e.Name,
		Version:  e.Version.String(),
		Checksum: e.Checksum,
		Source:   e.Source,
	})
	if err != nil {
		return err
	}
	return manifest.WriteAtomic(e.Dir+metaSuffix, data)
}

func readMeta(path string) (domain.CacheEntry, error) {
	//nolint:gosec // Path is inside the cache directory
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.CacheEntry{}, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "file", path)
	}
	var m meta
	if err := toml.Unmarshal(data, &m); err != nil {
		return domain.CacheEntry{}, zerr.With(zerr.Wrap(err, domain.ErrCacheReadFailed.Error()), "file", path)
	}
	v, err := domain.ParseVersion(m.Version)
	if err != nil {
		return domain.CacheEntry{}, zerr.With(err, "file", path)
	}
	return domain.CacheEntry{
		Name:     m.Name,
		Version:  v,
		Checksum: m.Checksum,
		Dir:      strings.TrimSuffix(path, metaSuffix),
		Source:   m.Source,
	}, nil
}

func removeEntry(e domain.CacheEntry) error {
	if err := os.Remove(e.Dir + metaSuffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.RemoveAll(e.Dir)
}
