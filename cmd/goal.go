package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tarefista/tarefista/internal/api"
	"github.com/tarefista/tarefista/internal/ui"
)

func newGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage goals",
		Long: `Goals are long-running intentions tagged with a repetition frequency.
Unlike tasks they are not filtered by date; the list always shows all of
them, grouped by periodicity. Goals require a logged-in account.`,
	}

	cmd.AddCommand(newGoalAddCmd())
	cmd.AddCommand(newGoalListCmd())
	cmd.AddCommand(newGoalRmCmd())

	return cmd
}

// goalUserID resolves the authenticated user id goals are scoped by.
func goalUserID(cmd *cobra.Command, app *app) (string, error) {
	ident, err := app.session.Identity(cmd.Context())
	if err != nil {
		return "", err
	}
	if ident.UserID == "" {
		return "", fmt.Errorf("goals require an account, run \"tarefista login\" first")
	}
	return ident.UserID, nil
}

func newGoalAddCmd() *cobra.Command {
	var periodicity string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Create a goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			userID, err := goalUserID(cmd, app)
			if err != nil {
				return err
			}

			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return fmt.Errorf("goal text cannot be empty")
			}

			goal, err := app.client.CreateGoal(cmd.Context(), api.GoalInput{
				Text:        text,
				Periodicity: api.Periodicity(periodicity),
				UserID:      userID,
			})
			if err != nil {
				return err
			}

			cmd.Printf("Created %s goal %s\n", goal.Periodicity, goal.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&periodicity, "periodicity", string(api.PeriodicityWeekly),
		fmt.Sprintf("repetition frequency (%s)", periodicityList()))

	return cmd
}

func periodicityList() string {
	names := make([]string, len(api.Periodicities))
	for i, p := range api.Periodicities {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func newGoalListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List goals grouped by periodicity",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			userID, err := goalUserID(cmd, app)
			if err != nil {
				return err
			}

			goals, err := app.client.Goals(cmd.Context(), userID)
			if err != nil {
				return err
			}

			cmd.Print(ui.GoalList(goals))
			return nil
		},
	}

	return cmd
}

func newGoalRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <goal-id>",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			if _, err := goalUserID(cmd, app); err != nil {
				return err
			}

			if err := app.client.DeleteGoal(cmd.Context(), args[0]); err != nil {
				return err
			}

			cmd.Printf("Goal %s deleted\n", args[0])
			return nil
		},
	}

	return cmd
}
