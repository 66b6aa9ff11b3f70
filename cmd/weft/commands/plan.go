package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/weft/internal/app"
)

func addPlanFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("top", "t", "", "Top unit as [library.]name[(architecture)]; inferred when empty")
	cmd.Flags().Bool("strict", false, "Fail when any source file could not be scanned")
	cmd.Flags().Bool("dev", false, "Include dev-dependencies")
}

func planOptions(cmd *cobra.Command) app.PlanOptions {
	top, _ := cmd.Flags().GetString("top")
	strict, _ := cmd.Flags().GetBool("strict")
	dev, _ := cmd.Flags().GetBool("dev")
	return app.PlanOptions{Top: top, Strict: strict, Dev: dev}
}

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Order the sources of the top unit and write target/blueprint.tsv",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := planOptions(cmd)
			opts.JSON, _ = cmd.Flags().GetBool("json")

			if watch, _ := cmd.Flags().GetBool("watch"); watch {
				return c.app.Watch(cmd.Context(), opts)
			}
			_, err := c.app.Plan(cmd.Context(), opts)
			return err
		},
	}
	addPlanFlags(cmd)
	cmd.Flags().Bool("json", false, "Print the blueprint entries as JSON")
	cmd.Flags().BoolP("watch", "w", false, "Re-plan whenever a source or the manifest changes")
	return cmd
}

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [-- command...]",
		Short: "Plan the IP and run the backend command over the blueprint",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Build(cmd.Context(), app.BuildOptions{
				PlanOptions: planOptions(cmd),
				Command:     args,
			})
		},
	}
	addPlanFlags(cmd)
	return cmd
}
