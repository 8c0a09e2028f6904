package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newFinalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finalize",
		Short: "Run the full pipeline described by the finalize plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			return c.app.Finalize(cmd.Context(), configPath)
		},
	}
}
