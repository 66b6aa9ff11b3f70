package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/weft/internal/app"
)

func (c *CLI) newLockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Resolve dependencies against the cache and write ip.lock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dev, _ := cmd.Flags().GetBool("dev")
			_, err := c.app.Lock(cmd.Context(), app.LockOptions{Dev: dev})
			return err
		},
	}
	cmd.Flags().Bool("dev", false, "Include dev-dependencies")
	return cmd
}

func (c *CLI) newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the resolved dependency tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dev, _ := cmd.Flags().GetBool("dev")
			ascii, _ := cmd.Flags().GetBool("ascii")
			return c.app.Tree(cmd.Context(), app.TreeOptions{Dev: dev, ASCII: ascii})
		},
	}
	cmd.Flags().Bool("dev", false, "Include dev-dependencies")
	cmd.Flags().Bool("ascii", false, "Draw the tree with ASCII characters")
	return cmd
}
