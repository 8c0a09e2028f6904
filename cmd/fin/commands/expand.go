package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newExpandCmd() *cobra.Command {
	var (
		label  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "expand [fragments...]",
		Short: "Expand manifest fragments into a deduplicated flat manifest",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Expand(cmd.Context(), args, label, output)
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Default provenance label for entries without one")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path of the flat manifest to write")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
