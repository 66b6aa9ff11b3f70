package ports

import "go.trai.ch/weft/internal/core/domain"

// ManifestStore reads IP manifests, reads and writes lock files, and writes
// planning output under the IP root.
//
//go:generate mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks
type ManifestStore interface {
	// FindRoot walks up from dir to the first directory holding ip.toml.
	FindRoot(dir string) (string, error)

	// LoadManifest reads ip.toml from the IP root.
	LoadManifest(root string) (*domain.Manifest, error)

	// LoadLock reads ip.lock from the IP root.
	// Returns nil, nil if the IP has no lock file.
	LoadLock(root string) (*domain.Lock, error)

	// SaveLock writes ip.lock atomically.
	SaveLock(root string, lock *domain.Lock) error

	// SaveBlueprint writes target/blueprint.tsv atomically and returns its path.
	SaveBlueprint(root string, bp *domain.Blueprint) (string, error)
}
