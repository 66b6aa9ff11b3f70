// Package main is the entry point for weft.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/cmd/weft/commands"
	"go.trai.ch/weft/internal/app"
	"go.trai.ch/weft/internal/core/domain"
	_ "go.trai.ch/weft/internal/wiring"
)

// ComponentProvider builds the wired components; tests substitute their own.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

// exitCodes maps error kinds to process exit codes. The first match wins.
var exitCodes = []struct {
	err  error
	code int
}{
	{domain.ErrParseDiagnostic, 2},
	{domain.ErrDuplicateUnit, 3},
	{domain.ErrMissingDependency, 4},
	{domain.ErrTopUnitNotFound, 4},
	{domain.ErrNoTopUnit, 4},
	{domain.ErrCycleDetected, 5},
	{domain.ErrNamespaceCollision, 6},
	{domain.ErrAmbiguousTopUnit, 7},
	{domain.ErrAmbiguousReference, 7},
	{domain.ErrBackendFailed, 8},
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	// Interrupts cancel planning and any running backend.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, cleanup, err := provider(ctx)
	if err != nil {
		// No logger yet.
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer cleanup()

	for _, opt := range opts {
		opt(components.App)
	}

	jsonLogs := func() {
		if l, ok := components.Logger.(interface{ SetJSON(bool) }); ok {
			l.SetJSON(true)
		}
	}
	if components.Settings != nil && components.Settings.LogFormat == domain.LogFormatJSON {
		jsonLogs()
	}

	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)
	cli.OnJSONLogs(jsonLogs)

	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return exitCode(err)
	}
	return 0
}

func exitCode(err error) int {
	for _, c := range exitCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return 1
}
