// Package fs provides file system adapters for walking and hashing IP trees.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"slices"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/zerr"
)

// skippedDirs are never part of an IP's content.
var skippedDirs = []string{".git", ".jj", ".hg", ".svn", domain.TargetDirName}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

var _ ports.SourceWalker = (*Walker)(nil)

// WalkFiles yields every regular file below root in lexical order, skipping
// VCS and build output directories. Walk errors are yielded with an empty
// path and stop the walk.
func (w *Walker) WalkFiles(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && slices.Contains(skippedDirs, d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !yield(path, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield("", zerr.With(zerr.Wrap(err, "failed to walk directory"), "dir", root))
		}
	}
}

// Sources lists the HDL files under dir.
func (w *Walker) Sources(dir string) ([]domain.SourceFile, error) {
	var files []domain.SourceFile
	for path, err := range w.WalkFiles(dir) {
		if err != nil {
			return nil, err
		}
		if d := domain.DialectFromPath(path); d != domain.DialectUnknown {
			files = append(files, domain.SourceFile{Path: path, Dialect: d})
		}
	}
	return files, nil
}
