package ports

import "go.trai.ch/weft/internal/core/domain"

// Hasher computes IP checksums.
//
//go:generate mockgen -destination=mocks/mock_hasher.go -package=mocks -source=hasher.go
type Hasher interface {
	// Checksum hashes the relative paths and contents of every file of the
	// IP rooted at dir, skipping build output and VCS directories.
	Checksum(dir string) (string, error)
}

// SourceWalker finds HDL sources.
type SourceWalker interface {
	// Sources lists the HDL files under dir in lexical path order.
	Sources(dir string) ([]domain.SourceFile, error)
}
