// Package commands implements the CLI commands for weft.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/weft/internal/app"
	"go.trai.ch/weft/internal/build"
	"go.trai.ch/weft/internal/core/domain"
)

// CLI is the weft command tree bound to an Application.
type CLI struct {
	app      Application
	rootCmd  *cobra.Command
	jsonLogs func()
}

// Application is the use-case surface the commands drive.
type Application interface {
	Plan(ctx context.Context, opts app.PlanOptions) (*app.PlanReport, error)
	Watch(ctx context.Context, opts app.PlanOptions) error
	Build(ctx context.Context, opts app.BuildOptions) error
	Lock(ctx context.Context, opts app.LockOptions) (*domain.Lock, error)
	Tree(ctx context.Context, opts app.TreeOptions) error
	Install(ctx context.Context, paths []string) error
	Uninstall(ctx context.Context, spec string) error
	List(ctx context.Context, outputMode string) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "weft",
		Short:         "Package manager and build planner for HDL IPs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the weft version"

	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON lines")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if on, _ := cmd.Flags().GetBool("json-logs"); on && c.jsonLogs != nil {
			c.jsonLogs()
		}
	}

	groups := []struct {
		group *cobra.Group
		cmds  []*cobra.Command
	}{
		{&cobra.Group{ID: "design", Title: "Design Commands:"}, []*cobra.Command{c.newPlanCmd(), c.newBuildCmd()}},
		{&cobra.Group{ID: "deps", Title: "Dependency Commands:"}, []*cobra.Command{c.newLockCmd(), c.newTreeCmd()}},
		{&cobra.Group{ID: "cache", Title: "Cache Commands:"}, []*cobra.Command{
			c.newInstallCmd(), c.newUninstallCmd(), c.newListCmd(),
		}},
	}
	for _, g := range groups {
		rootCmd.AddGroup(g.group)
		for _, cmd := range g.cmds {
			cmd.GroupID = g.group.ID
			rootCmd.AddCommand(cmd)
		}
	}
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// OnJSONLogs registers fn to run before any command when --json-logs is set.
func (c *CLI) OnJSONLogs(fn func()) {
	c.jsonLogs = fn
}
