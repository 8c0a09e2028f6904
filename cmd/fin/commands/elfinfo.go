package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newElfInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "elfinfo [files...]",
		Short: "Dump the ELF metadata of the given files as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.ElfInfo(args, cmd.OutOrStdout())
		},
	}
}
