package commands

import "github.com/spf13/cobra"

func (c *CLI) newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install [paths...]",
		Short: "Install IPs into the cache, or the locked dependencies when no path is given",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Install(cmd.Context(), args)
		},
	}
}

func (c *CLI) newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <name>[:<version>]",
		Short: "Remove an IP from the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Uninstall(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed IPs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString("output")
			return c.app.List(cmd.Context(), output)
		},
	}
	cmd.Flags().StringP("output", "o", "auto", "Output mode: auto, styled, or plain")
	return cmd
}
