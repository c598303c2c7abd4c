package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tarefista/tarefista/internal/ui"
)

func newPhraseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phrase",
		Short: "Show the motivational phrase of the day",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			text, err := app.client.Phrase(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Print(ui.Phrase(text))
			return nil
		},
	}

	return cmd
}
