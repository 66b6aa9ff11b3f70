package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/adapters/watcher"
	"go.trai.ch/weft/internal/core/ports"
)

func TestWatcher_ReportsWrites(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "rtl"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "target"), 0o750))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := watcher.NewWatcher(nil)
	require.NoError(t, w.Start(ctx, root))
	defer func() { _ = w.Stop() }()

	src := filepath.Join(root, "rtl", "top.vhd")
	require.NoError(t, os.WriteFile(filepath.Join(root, "target", "blueprint.tsv"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(src, []byte("entity top is end;"), 0o600))

	got := make(chan ports.WatchEvent, 1)
	go func() {
		for ev := range w.Events() {
			if ev.Path == src {
				got <- ev
				return
			}
		}
	}()

	select {
	case ev := <-got:
		assert.Contains(t, []ports.WatchOp{ports.OpCreate, ports.OpWrite}, ev.Operation)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for the source file")
	}
}

func TestWatcher_StopBeforeStart(t *testing.T) {
	assert.NoError(t, watcher.NewWatcher(nil).Stop())
}
