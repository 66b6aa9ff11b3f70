// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/weft/internal/core/domain"
)

// Catalog is the set of IP versions available for resolution.
//
//go:generate mockgen -source=catalog.go -destination=mocks/mock_catalog.go -package=mocks
type Catalog interface {
	// Versions lists the installed versions of an IP, in any order.
	Versions(name string) ([]domain.Version, error)

	// Manifest returns the manifest of an installed IP version.
	Manifest(spec domain.IPSpec) (*domain.Manifest, error)

	// Lookup returns the installed entry for spec.
	Lookup(spec domain.IPSpec) (domain.CacheEntry, error)
}

// IPCache is the local store of installed IPs.
type IPCache interface {
	Catalog

	// Install copies the IP rooted at dir into the cache.
	// Installing an identical IP again is a no-op.
	Install(ctx context.Context, dir string) (domain.CacheEntry, error)

	// Uninstall removes every installed version of name, or only version
	// when it is not zero. It returns the removed entries.
	Uninstall(name string, version domain.Version) ([]domain.CacheEntry, error)

	// List returns every installed IP sorted by name and version.
	List() ([]domain.CacheEntry, error)
}
