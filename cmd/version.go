package cmd

import (
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tarefista version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("tarefista version %s\n", version)
		},
	}
}
