package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/adapters/fs"
	"go.trai.ch/weft/internal/adapters/telemetry"
	"go.trai.ch/weft/internal/app"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/core/ports/mocks"
	"go.trai.ch/weft/internal/engine/planner"
	"go.trai.ch/weft/internal/engine/resolver"
	"go.trai.ch/weft/internal/engine/scanner"
	"go.uber.org/mock/gomock"
)

type harness struct {
	root      string
	manifest  *domain.Manifest
	settings  *domain.Settings
	logger    *mocks.MockLogger
	manifests *mocks.MockManifestStore
	cache     *mocks.MockIPCache
	hasher    *mocks.MockHasher
	executor  *mocks.MockExecutor
	watcher   *mocks.MockWatcher
	out       bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		root: t.TempDir(),
		manifest: &domain.Manifest{
			Name:    "top",
			Version: domain.MustParseVersion("0.1.0"),
		},
		settings:  &domain.Settings{},
		logger:    mocks.NewMockLogger(ctrl),
		manifests: mocks.NewMockManifestStore(ctrl),
		cache:     mocks.NewMockIPCache(ctrl),
		hasher:    mocks.NewMockHasher(ctrl),
		executor:  mocks.NewMockExecutor(ctrl),
		watcher:   mocks.NewMockWatcher(ctrl),
	}
	h.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	return h
}

// project makes h.root an IP with a single top module.
func (h *harness) project(t *testing.T) {
	t.Helper()
	dir := filepath.Join(h.root, "rtl")
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "top.v"), []byte("module top (input clk);\nendmodule\n"), domain.FilePerm))

	h.manifests.EXPECT().FindRoot(h.root).Return(h.root, nil).AnyTimes()
	h.manifests.EXPECT().LoadManifest(h.root).Return(h.manifest, nil).AnyTimes()
}

func (h *harness) app() *app.App {
	tracer := telemetry.NewNoOpTracer()
	return app.New(
		h.logger,
		h.settings,
		h.manifests,
		h.cache,
		h.hasher,
		h.executor,
		h.watcher,
		resolver.New(h.cache, tracer),
		planner.New(scanner.New(), fs.NewWalker(), h.cache, tracer),
	).WithOutput(&h.out).WithWorkDir(h.root)
}

func (h *harness) rootLock() *domain.Lock {
	return domain.NewLock([]domain.LockEntry{{Name: "top", Version: h.manifest.Version}})
}

func (h *harness) blueprintPath() string {
	return filepath.Join(h.root, domain.TargetDirName, domain.BlueprintFileName)
}

func TestApp_Lock(t *testing.T) {
	h := newHarness(t)
	h.project(t)

	var saved *domain.Lock
	h.manifests.EXPECT().SaveLock(h.root, gomock.Any()).DoAndReturn(func(_ string, l *domain.Lock) error {
		saved = l
		return nil
	})

	lock, err := h.app().Lock(context.Background(), app.LockOptions{})
	require.NoError(t, err)
	assert.Same(t, saved, lock)
	require.Len(t, lock.Entries, 1)
	assert.Equal(t, "top:0.1.0", lock.Entries[0].Spec().String())
}

func TestApp_Plan_SavesLockAfterBlueprint(t *testing.T) {
	h := newHarness(t)
	h.project(t)

	h.manifests.EXPECT().LoadLock(h.root).Return(nil, nil)
	gomock.InOrder(
		h.manifests.EXPECT().SaveBlueprint(h.root, gomock.Any()).Return(h.blueprintPath(), nil),
		h.manifests.EXPECT().SaveLock(h.root, gomock.Any()).Return(nil),
	)

	_, err := h.app().Plan(context.Background(), app.PlanOptions{})
	require.NoError(t, err)
}

func TestApp_Plan_BlueprintWriteFailureKeepsLock(t *testing.T) {
	h := newHarness(t)
	h.project(t)

	diskFull := errors.New("no space left on device")
	h.manifests.EXPECT().LoadLock(h.root).Return(nil, nil)
	h.manifests.EXPECT().SaveBlueprint(h.root, gomock.Any()).Return("", diskFull)

	_, err := h.app().Plan(context.Background(), app.PlanOptions{})
	require.ErrorIs(t, err, diskFull)
}

func TestApp_Plan_WritesBlueprint(t *testing.T) {
	h := newHarness(t)
	h.project(t)

	h.manifests.EXPECT().LoadLock(h.root).Return(nil, nil)
	h.manifests.EXPECT().SaveLock(h.root, gomock.Any()).Return(nil)
	var written *domain.Blueprint
	h.manifests.EXPECT().SaveBlueprint(h.root, gomock.Any()).DoAndReturn(func(_ string, bp *domain.Blueprint) (string, error) {
		written = bp
		return h.blueprintPath(), nil
	})

	report, err := h.app().Plan(context.Background(), app.PlanOptions{JSON: true})
	require.NoError(t, err)
	assert.Same(t, written, report.Blueprint)
	assert.Equal(t, h.blueprintPath(), report.BlueprintPath)
	assert.Equal(t, "top.top", report.Blueprint.Top.String())

	var decoded struct {
		Top     string `json:"top"`
		Entries []struct {
			File string `json:"file"`
			Role string `json:"role"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &decoded))
	assert.Equal(t, "top.top", decoded.Top)
	require.Len(t, decoded.Entries, 1)
	assert.Equal(t, filepath.Join(h.root, "rtl", "top.v"), decoded.Entries[0].File)
}

func TestApp_Plan_KeepsSatisfiedLock(t *testing.T) {
	h := newHarness(t)
	h.project(t)

	h.manifests.EXPECT().LoadLock(h.root).Return(h.rootLock(), nil)
	h.manifests.EXPECT().SaveBlueprint(h.root, gomock.Any()).Return(h.blueprintPath(), nil)

	_, err := h.app().Plan(context.Background(), app.PlanOptions{})
	require.NoError(t, err)
	assert.Empty(t, h.out.String())
}

func TestApp_Plan_FailureWritesNothing(t *testing.T) {
	h := newHarness(t)
	h.project(t)

	h.manifests.EXPECT().LoadLock(h.root).Return(nil, nil)

	_, err := h.app().Plan(context.Background(), app.PlanOptions{Top: "ghost"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTopUnitNotFound)
}

func TestApp_Plan_InvalidTop(t *testing.T) {
	h := newHarness(t)

	_, err := h.app().Plan(context.Background(), app.PlanOptions{Top: "top(rtl"})
	assert.ErrorIs(t, err, domain.ErrInvalidSpec)
}

func TestApp_Build(t *testing.T) {
	h := newHarness(t)
	h.project(t)
	h.settings.BackendCommand = []string{"make", "sim"}

	h.manifests.EXPECT().LoadLock(h.root).Return(h.rootLock(), nil)
	h.manifests.EXPECT().SaveBlueprint(h.root, gomock.Any()).Return(h.blueprintPath(), nil)

	var got domain.Command
	h.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, cmd domain.Command) error {
		got = cmd
		return nil
	})

	require.NoError(t, h.app().Build(context.Background(), app.BuildOptions{}))
	assert.Equal(t, []string{"make", "sim"}, got.Args)
	assert.Equal(t, h.root, got.Dir)
	assert.Equal(t, map[string]string{
		app.EnvBlueprint: h.blueprintPath(),
		app.EnvTop:       "top.top",
		app.EnvIPName:    "top",
		app.EnvIPVersion: "0.1.0",
		app.EnvOutputDir: filepath.Join(h.root, domain.TargetDirName),
	}, got.Env)
}

func TestApp_Build_CommandOverride(t *testing.T) {
	h := newHarness(t)
	h.project(t)
	h.settings.BackendCommand = []string{"make"}

	h.manifests.EXPECT().LoadLock(h.root).Return(h.rootLock(), nil)
	h.manifests.EXPECT().SaveBlueprint(h.root, gomock.Any()).Return(h.blueprintPath(), nil)
	h.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, cmd domain.Command) error {
		assert.Equal(t, []string{"vsim", "-c"}, cmd.Args)
		return domain.ErrBackendFailed
	})

	err := h.app().Build(context.Background(), app.BuildOptions{Command: []string{"vsim", "-c"}})
	assert.ErrorIs(t, err, domain.ErrBackendFailed)
}

func TestApp_Build_NoCommand(t *testing.T) {
	h := newHarness(t)

	err := h.app().Build(context.Background(), app.BuildOptions{})
	assert.ErrorIs(t, err, domain.ErrNoBackendCommand)
}

func TestApp_Tree(t *testing.T) {
	h := newHarness(t)
	h.project(t)
	c, err := domain.ParseConstraint("1")
	require.NoError(t, err)
	h.manifest.Dependencies = []domain.Dependency{{Name: "sub", Constraint: c}}

	sub := domain.IPSpec{Name: "sub", Version: domain.MustParseVersion("1.2.0")}
	h.manifests.EXPECT().LoadLock(h.root).Return(domain.NewLock([]domain.LockEntry{
		{Name: "top", Version: h.manifest.Version, Dependencies: []domain.IPSpec{sub}},
		{Name: "sub", Version: sub.Version},
	}), nil)

	require.NoError(t, h.app().Tree(context.Background(), app.TreeOptions{ASCII: true}))
	assert.Equal(t, "top:0.1.0\n\\- sub:1.2.0\n", h.out.String())
}

func TestApp_Watch_ReplansOnChange(t *testing.T) {
	h := newHarness(t)
	h.project(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.manifests.EXPECT().LoadLock(h.root).Return(h.rootLock(), nil).Times(2)
	plans := 0
	h.manifests.EXPECT().SaveBlueprint(h.root, gomock.Any()).DoAndReturn(func(string, *domain.Blueprint) (string, error) {
		plans++
		if plans == 2 {
			cancel()
		}
		return h.blueprintPath(), nil
	}).Times(2)

	h.watcher.EXPECT().Start(gomock.Any(), h.root).Return(nil)
	h.watcher.EXPECT().Stop().Return(nil)
	h.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
		if !yield(ports.WatchEvent{Path: filepath.Join(h.root, "docs", "notes.md"), Operation: ports.OpWrite}) {
			return
		}
		yield(ports.WatchEvent{Path: filepath.Join(h.root, "rtl", "top.v"), Operation: ports.OpWrite})
	}))

	require.NoError(t, h.app().Watch(ctx, app.PlanOptions{}))
	assert.Equal(t, 2, plans)
}

func TestApp_Install_Paths(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()

	h.cache.EXPECT().Install(gomock.Any(), dir).Return(domain.CacheEntry{
		Name:    "sub",
		Version: domain.MustParseVersion("1.0.0"),
	}, nil)

	require.NoError(t, h.app().Install(context.Background(), []string{dir}))
}

func TestApp_Install_FromLock(t *testing.T) {
	h := newHarness(t)
	h.project(t)

	sub := domain.LockEntry{Name: "sub", Version: domain.MustParseVersion("1.0.0"), Checksum: "abc", Source: "/src/sub"}
	cached := domain.LockEntry{Name: "util", Version: domain.MustParseVersion("2.0.0"), Checksum: "def"}
	h.manifests.EXPECT().LoadLock(h.root).Return(domain.NewLock([]domain.LockEntry{
		{Name: "top", Version: h.manifest.Version, Dependencies: []domain.IPSpec{sub.Spec(), cached.Spec()}},
		sub,
		cached,
	}), nil)

	h.cache.EXPECT().Lookup(sub.Spec()).Return(domain.CacheEntry{}, domain.Fail(domain.ErrNotInstalled, "ip", "sub:1.0.0"))
	h.hasher.EXPECT().Checksum("/src/sub").Return("abc", nil)
	h.cache.EXPECT().Install(gomock.Any(), "/src/sub").Return(domain.CacheEntry{Name: "sub", Version: sub.Version, Checksum: "abc"}, nil)
	h.cache.EXPECT().Lookup(cached.Spec()).Return(domain.CacheEntry{Name: "util", Version: cached.Version, Checksum: "def"}, nil)

	require.NoError(t, h.app().Install(context.Background(), nil))
}

func TestApp_Install_SourceChanged(t *testing.T) {
	h := newHarness(t)
	h.project(t)

	sub := domain.LockEntry{Name: "sub", Version: domain.MustParseVersion("1.0.0"), Checksum: "abc", Source: "/src/sub"}
	h.manifests.EXPECT().LoadLock(h.root).Return(domain.NewLock([]domain.LockEntry{
		{Name: "top", Version: h.manifest.Version, Dependencies: []domain.IPSpec{sub.Spec()}},
		sub,
	}), nil)
	h.cache.EXPECT().Lookup(sub.Spec()).Return(domain.CacheEntry{}, domain.Fail(domain.ErrNotInstalled))
	h.hasher.EXPECT().Checksum("/src/sub").Return("changed", nil)

	err := h.app().Install(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrChecksumMismatch)
}

func TestApp_Install_NoSource(t *testing.T) {
	h := newHarness(t)
	h.project(t)

	sub := domain.LockEntry{Name: "sub", Version: domain.MustParseVersion("1.0.0")}
	h.manifests.EXPECT().LoadLock(h.root).Return(domain.NewLock([]domain.LockEntry{
		{Name: "top", Version: h.manifest.Version, Dependencies: []domain.IPSpec{sub.Spec()}},
		sub,
	}), nil)
	h.cache.EXPECT().Lookup(sub.Spec()).Return(domain.CacheEntry{}, domain.Fail(domain.ErrNotInstalled))

	err := h.app().Install(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNotInstalled)
}

func TestApp_Install_NoLock(t *testing.T) {
	h := newHarness(t)
	h.project(t)
	h.manifests.EXPECT().LoadLock(h.root).Return(nil, nil)

	err := h.app().Install(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrLockNotFound)
}

func TestApp_Uninstall(t *testing.T) {
	h := newHarness(t)
	v := domain.MustParseVersion("1.0.0")

	h.cache.EXPECT().Uninstall("sub", v).Return([]domain.CacheEntry{{Name: "sub", Version: v}}, nil)
	require.NoError(t, h.app().Uninstall(context.Background(), "sub:1.0.0"))

	h.cache.EXPECT().Uninstall("sub", domain.Version{}).Return(nil, domain.Fail(domain.ErrNotInstalled, "ip", "sub"))
	err := h.app().Uninstall(context.Background(), "sub")
	assert.ErrorIs(t, err, domain.ErrNotInstalled)
}

func TestApp_Uninstall_InvalidSpec(t *testing.T) {
	h := newHarness(t)

	for _, spec := range []string{"sub:x", "", "9lives"} {
		err := h.app().Uninstall(context.Background(), spec)
		assert.ErrorIs(t, err, domain.ErrInvalidSpec, spec)
	}
}

func TestApp_List_Plain(t *testing.T) {
	h := newHarness(t)
	h.cache.EXPECT().List().Return([]domain.CacheEntry{
		{Name: "sub", Version: domain.MustParseVersion("1.0.0"), Checksum: "0123456789abcdef", Dir: "/cache/sub"},
		{Name: "util", Version: domain.MustParseVersion("2.1.0"), Checksum: "fedcba", Dir: "/cache/util"},
	}, nil)

	require.NoError(t, h.app().List(context.Background(), "plain"))
	assert.Equal(t, "sub\t1.0.0\t0123456789\t/cache/sub\nutil\t2.1.0\tfedcba\t/cache/util\n", h.out.String())
}

func TestApp_List_Styled(t *testing.T) {
	h := newHarness(t)
	h.cache.EXPECT().List().Return([]domain.CacheEntry{
		{Name: "sub", Version: domain.MustParseVersion("1.0.0"), Checksum: "abc", Dir: "/cache/sub"},
	}, nil)

	require.NoError(t, h.app().List(context.Background(), "styled"))
	assert.Contains(t, h.out.String(), "NAME")
	assert.Contains(t, h.out.String(), "/cache/sub")
}

func TestApp_List_Empty(t *testing.T) {
	h := newHarness(t)
	h.cache.EXPECT().List().Return(nil, nil)

	require.NoError(t, h.app().List(context.Background(), "plain"))
	assert.Empty(t, h.out.String())
}
