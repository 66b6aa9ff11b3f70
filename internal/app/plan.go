package app

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"go.trai.ch/weft/internal/adapters/watcher" //nolint:depguard // Debounce policy lives with the watcher
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/engine/planner"
	"go.trai.ch/zerr"
)

// Environment variables handed to the build backend.
const (
	EnvBlueprint = "WEFT_BLUEPRINT"
	EnvTop       = "WEFT_TOP"
	EnvIPName    = "WEFT_IP_NAME"
	EnvIPVersion = "WEFT_IP_VERSION"
	EnvOutputDir = "WEFT_OUTPUT_DIR"
)

// PlanOptions configuration for the Plan method.
type PlanOptions struct {
	// Top names the top unit as [library.]name[(architecture)]. Empty infers it.
	Top string
	// Dev includes dev-dependencies.
	Dev bool
	// Strict fails when any source file could not be scanned.
	Strict bool
	// JSON prints the blueprint entries to the output.
	JSON bool
}

// PlanReport is what a successful plan produced.
type PlanReport struct {
	Root          string
	Manifest      *domain.Manifest
	Blueprint     *domain.Blueprint
	BlueprintPath string
}

// Plan resolves the IP, orders the files its top unit needs and writes
// target/blueprint.tsv. Nothing is written unless planning succeeds. A lock
// that had to be re-resolved is saved only once the blueprint is written.
func (a *App) Plan(ctx context.Context, opts PlanOptions) (*PlanReport, error) {
	top, err := planner.ParseTop(opts.Top)
	if err != nil {
		return nil, err
	}
	p, err := a.project()
	if err != nil {
		return nil, err
	}
	lock, stale, err := a.currentLock(ctx, p, opts.Dev)
	if err != nil {
		return nil, err
	}

	res, err := a.planner.Plan(ctx, planner.Request{
		Dir:      p.root,
		Manifest: p.manifest,
		Lock:     lock,
		Top:      top,
		Strict:   opts.Strict,
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to plan"), "ip", p.manifest.Spec().String())
	}
	for _, d := range res.Diagnostics {
		a.logger.Warn(d.Error())
	}

	path, err := a.manifests.SaveBlueprint(p.root, res.Blueprint)
	if err != nil {
		return nil, err
	}
	if stale {
		if err := a.manifests.SaveLock(p.root, lock); err != nil {
			return nil, err
		}
	}

	if opts.JSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Blueprint); err != nil {
			return nil, zerr.Wrap(err, "failed to encode blueprint")
		}
	}

	files := res.Blueprint.Files()
	a.logger.Info(fmt.Sprintf("planned %s: %s, top %s", p.manifest.Spec(), pluralize(len(files), "file"), res.Blueprint.Top))
	a.logger.Info("wrote " + relativeTo(a.workDir, path))

	return &PlanReport{
		Root:          p.root,
		Manifest:      p.manifest,
		Blueprint:     res.Blueprint,
		BlueprintPath: path,
	}, nil
}

// Watch plans once, then re-plans every time an HDL source, the manifest
// or the lock under the IP root changes. Planning errors are logged and
// do not stop the watch. It returns when ctx is done.
func (a *App) Watch(ctx context.Context, opts PlanOptions) error {
	p, err := a.project()
	if err != nil {
		return err
	}

	replan := func() {
		if _, err := a.Plan(ctx, opts); err != nil {
			a.logger.Error(err)
		}
	}
	replan()

	if err := a.watcher.Start(ctx, p.root); err != nil {
		return err
	}
	defer func() { _ = a.watcher.Stop() }()

	changes := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		select {
		case changes <- paths:
		default:
		}
	})
	defer debouncer.Stop()

	go func() {
		for event := range a.watcher.Events() {
			debouncer.Add(event.Path)
		}
	}()

	a.logger.Info("watching " + p.root)
	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changes:
			a.logger.Info(fmt.Sprintf("%s changed", pluralize(len(paths), "file")))
			replan()
		}
	}
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	PlanOptions
	// Command overrides the configured backend command.
	Command []string
}

// Build plans the IP and runs the backend command over the blueprint.
func (a *App) Build(ctx context.Context, opts BuildOptions) error {
	command := opts.Command
	if len(command) == 0 {
		command = a.settings.BackendCommand
	}
	if len(command) == 0 {
		return domain.ErrNoBackendCommand
	}

	report, err := a.Plan(ctx, opts.PlanOptions)
	if err != nil {
		return err
	}

	a.logger.Info("running " + command[0])
	return a.executor.Execute(ctx, domain.Command{
		Args: command,
		Dir:  report.Root,
		Env: map[string]string{
			EnvBlueprint: report.BlueprintPath,
			EnvTop:       report.Blueprint.Top.String(),
			EnvIPName:    report.Manifest.Name,
			EnvIPVersion: report.Manifest.Version.String(),
			EnvOutputDir: filepath.Join(report.Root, domain.TargetDirName),
		},
	})
}

// relativeTo shortens path for display when it lies under dir.
func relativeTo(dir, path string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(abs, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
