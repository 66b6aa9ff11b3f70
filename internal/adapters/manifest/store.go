// Package manifest reads ip.toml, reads and writes ip.lock and writes the
// blueprint under target/.
package manifest

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

// Store implements ports.ManifestStore on the local filesystem.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

var _ ports.ManifestStore = (*Store)(nil)

// FindRoot walks up from dir to the first directory containing ip.toml.
func (s *Store) FindRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve directory")
	}

	current := abs
	for {
		if _, err := os.Stat(domain.ManifestPath(current)); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", domain.Fail(domain.ErrManifestNotFound, "cwd", abs)
		}
		current = parent
	}
}

// LoadManifest reads ip.toml from root.
func (s *Store) LoadManifest(root string) (*domain.Manifest, error) {
	path := domain.ManifestPath(root)
	//nolint:gosec // Path is derived from the IP root
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.Fail(domain.ErrManifestNotFound, "file", path)
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read manifest"), "file", path)
	}

	m, err := DecodeManifest(data)
	if err != nil {
		return nil, zerr.With(err, "file", path)
	}
	return m, nil
}

// LoadLock reads ip.lock from root. A missing lock is not an error.
func (s *Store) LoadLock(root string) (*domain.Lock, error) {
	path := domain.LockPath(root)
	//nolint:gosec // Path is derived from the IP root
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read lock"), "file", path)
	}

	lock, err := DecodeLock(data)
	if err != nil {
		return nil, zerr.With(err, "file", path)
	}
	return lock, nil
}

// SaveLock writes ip.lock through a temporary file and a rename.
func (s *Store) SaveLock(root string, lock *domain.Lock) error {
	data, err := EncodeLock(lock)
	if err != nil {
		return err
	}
	return WriteAtomic(domain.LockPath(root), data)
}

// SaveBlueprint writes the blueprint file list to target/blueprint.tsv.
func (s *Store) SaveBlueprint(root string, bp *domain.Blueprint) (string, error) {
	var buf bytes.Buffer
	if err := bp.WriteTSV(&buf); err != nil {
		return "", zerr.Wrap(err, "failed to render blueprint")
	}
	path := domain.BlueprintPath(root)
	if err := WriteAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

// WriteAtomic replaces path with data so readers never see a partial file.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "dir", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create temporary file"), "dir", dir)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, "failed to write file"), "file", path)
	}
	if err := tmp.Chmod(domain.FilePerm); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, "failed to write file"), "file", path)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write file"), "file", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to replace file"), "file", path)
	}
	return nil
}
