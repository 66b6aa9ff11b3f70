package planner_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/adapters/fs"
	"go.trai.ch/weft/internal/adapters/telemetry"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports/mocks"
	"go.trai.ch/weft/internal/engine/planner"
	"go.trai.ch/weft/internal/engine/scanner"
	"go.uber.org/mock/gomock"
)

const topVHDL = `library ieee;
use ieee.std_logic_1164.all;
library sub;
use sub.fifo_pkg.all;

entity top is
  port (clk : in std_logic);
end entity top;

architecture rtl of top is
begin
  u0 : entity sub.fifo port map (clk => clk);
  u1 : sync port map (clk => clk);
end architecture rtl;
`

const benchVHDL = `entity top_tb is
end entity top_tb;

architecture sim of top_tb is
  signal clk : bit;
begin
  dut : entity work.top port map (clk => clk);
end architecture sim;
`

const syncV = `module sync (input clk);
endmodule
`

const fifoVHDL = `use work.fifo_pkg.all;

entity fifo is
  port (clk : in bit);
end entity fifo;

architecture rtl of fifo is
begin
end architecture rtl;
`

const pkgVHDL = `package fifo_pkg is
  constant depth : integer := 16;
end package fifo_pkg;
`

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
		require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	}
}

type workspace struct {
	base     string
	root     string
	manifest *domain.Manifest
	lock     *domain.Lock
	catalog  *mocks.MockCatalog
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	base := t.TempDir()
	w := &workspace{
		base: base,
		root: filepath.Join(base, "top"),
		manifest: &domain.Manifest{
			Name:    "top",
			Version: domain.MustParseVersion("0.1.0"),
		},
	}
	writeFiles(t, w.root, map[string]string{
		"rtl/top.vhd":      topVHDL,
		"rtl/sync.v":       syncV,
		"tb/top_tb.vhd":    benchVHDL,
		"docs/README.md":   "not hdl",
		"target/stale.vhd": "entity stale is end;",
	})
	writeFiles(t, filepath.Join(base, "sub"), map[string]string{
		"fifo.vhd": fifoVHDL,
		"pkg.vhd":  pkgVHDL,
	})

	sub := domain.IPSpec{Name: "sub", Version: domain.MustParseVersion("0.1.0")}
	w.lock = domain.NewLock([]domain.LockEntry{
		{Name: "top", Version: w.manifest.Version, Dependencies: []domain.IPSpec{sub}},
		{Name: "sub", Version: sub.Version, Checksum: "abc"},
	})

	ctrl := gomock.NewController(t)
	w.catalog = mocks.NewMockCatalog(ctrl)
	w.catalog.EXPECT().Lookup(sub).Return(domain.CacheEntry{
		Name:     "sub",
		Version:  sub.Version,
		Checksum: "abc",
		Dir:      filepath.Join(base, "sub"),
	}, nil).AnyTimes()
	w.catalog.EXPECT().Manifest(sub).Return(&domain.Manifest{Name: "sub", Version: sub.Version}, nil).AnyTimes()
	return w
}

func (w *workspace) planner() *planner.Planner {
	return planner.New(scanner.New(), fs.NewWalker(), w.catalog, telemetry.NewNoOpTracer())
}

func (w *workspace) request() planner.Request {
	return planner.Request{Dir: w.root, Manifest: w.manifest, Lock: w.lock}
}

func TestPlan_Blueprint(t *testing.T) {
	w := newWorkspace(t)

	res, err := w.planner().Plan(context.Background(), w.request())
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, "top.top_tb", res.Blueprint.Top.String())

	var buf bytes.Buffer
	require.NoError(t, res.Blueprint.WriteTSV(&buf))
	out := strings.ReplaceAll(buf.String(), w.base+string(filepath.Separator), "")
	out = filepath.ToSlash(out)

	g := goldie.New(t)
	g.Assert(t, "blueprint", []byte(out))
}

func TestPlan_IsReproducible(t *testing.T) {
	w := newWorkspace(t)
	p := w.planner()

	first, err := p.Plan(context.Background(), w.request())
	require.NoError(t, err)
	second, err := p.Plan(context.Background(), w.request())
	require.NoError(t, err)
	assert.Equal(t, first.Blueprint, second.Blueprint)
}

func TestPlan_ExplicitDesignTop(t *testing.T) {
	w := newWorkspace(t)
	req := w.request()
	req.Top = planner.TopSpec{Name: domain.NewIdentifier("top")}

	res, err := w.planner().Plan(context.Background(), req)
	require.NoError(t, err)

	var rel []string
	for _, f := range res.Blueprint.Files() {
		r, err := filepath.Rel(w.base, f.Path)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
		assert.Equal(t, domain.RoleDesign, f.Role)
	}
	assert.Equal(t, []string{"top/rtl/sync.v", "sub/pkg.vhd", "sub/fifo.vhd", "top/rtl/top.vhd"}, rel)
}

func TestPlan_MissingTop(t *testing.T) {
	w := newWorkspace(t)
	req := w.request()
	req.Top = planner.TopSpec{Name: domain.NewIdentifier("ghost")}

	res, err := w.planner().Plan(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrTopUnitNotFound)
}

func TestPlan_WithoutLockMissesDependency(t *testing.T) {
	w := newWorkspace(t)
	req := w.request()
	req.Lock = nil

	_, err := w.planner().Plan(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingDependency)
}

func TestPlan_DiagnosticsOutsideClosure(t *testing.T) {
	w := newWorkspace(t)
	writeFiles(t, w.root, map[string]string{"rtl/broken.vhd": "entity broken is\n  port (a : in bit);\n"})

	res, err := w.planner().Plan(context.Background(), w.request())
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, filepath.Join(w.root, "rtl", "broken.vhd"), res.Diagnostics[0].File)

	req := w.request()
	req.Strict = true
	_, err = w.planner().Plan(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParseDiagnostic)
	assert.Equal(t, 1, metadata(t, err)["count"])
}

func TestPlan_DuplicateUnit(t *testing.T) {
	w := newWorkspace(t)
	writeFiles(t, w.root, map[string]string{"rtl/top_copy.vhd": "entity top is\n  port (clk : in bit);\nend entity;\n"})

	_, err := w.planner().Plan(context.Background(), w.request())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateUnit)
	assert.Equal(t, "top", metadata(t, err)["name"])
}

func TestPlan_ChecksumMismatch(t *testing.T) {
	w := newWorkspace(t)
	req := w.request()
	entries := append([]domain.LockEntry(nil), w.lock.Entries...)
	for i := range entries {
		if entries[i].Name == "sub" {
			entries[i].Checksum = "other"
		}
	}
	req.Lock = domain.NewLock(entries)

	_, err := w.planner().Plan(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrChecksumMismatch)
}
