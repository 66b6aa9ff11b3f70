package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/app"
	"go.trai.ch/weft/internal/core/domain"
	_ "go.trai.ch/weft/internal/wiring" // Register providers
)

// TestAppWiring resolves the full node graph from an empty directory with a
// fresh home, the way a first run of weft would.
func TestAppWiring(t *testing.T) {
	home := t.TempDir()
	t.Setenv(domain.HomeEnvVar, home)
	t.Setenv(domain.LogFormatEnvVar, "")
	t.Chdir(t.TempDir())

	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)
	require.NotNil(t, components)
	require.NotNil(t, components.App)
	require.NotNil(t, components.Logger)
	require.NotNil(t, components.Settings)
	assert.Equal(t, filepath.Join(home, domain.CacheDirName), components.Settings.CacheDir)
}
