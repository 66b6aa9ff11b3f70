package ports

//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks

import (
	"context"
	"iter"
)

// WatchOp is the kind of change behind a WatchEvent.
type WatchOp uint8

// Changes reported by a Watcher. Chmod-only events are not reported.
const (
	OpCreate WatchOp = iota
	OpWrite
	OpRemove
	OpRename
)

// WatchEvent is one change below the watched IP root.
type WatchEvent struct {
	// Path is absolute.
	Path      string
	Operation WatchOp
}

// Watcher follows changes below an IP root for plan --watch. Build output
// and VCS directories are not watched.
type Watcher interface {
	// Start watches root and every directory created below it later.
	Start(ctx context.Context, root string) error
	// Stop releases the underlying watches. Events ends after Stop.
	Stop() error
	// Events yields changes until the watcher stops or ctx is done.
	Events() iter.Seq[WatchEvent]
}
