package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tarefista/tarefista/internal/api"
	"github.com/tarefista/tarefista/internal/logging"
	"github.com/tarefista/tarefista/internal/tracker"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(newTaskAddCmd())
	cmd.AddCommand(newTaskDoneCmd())
	cmd.AddCommand(newTaskEditCmd())
	cmd.AddCommand(newTaskRmCmd())

	return cmd
}

func newTaskAddCmd() *cobra.Command {
	var (
		recurring bool
		pattern   string
		startFlag string
		endFlag   string
	)

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Create a task",
		Long: `Creates a one-time task due today, or with --recurring a repeating task.
Recurring tasks default to the daily pattern over an open-ended range
starting today; --start and --end narrow the range.

Tasks can be created before logging in. The first anonymous task
establishes a device-local identity that scopes later fetches.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return fmt.Errorf("task text cannot be empty")
			}

			ident, err := app.session.EnsureTempUserID(ctx)
			if err != nil {
				return err
			}

			// The counter only moves once the backend accepts the task,
			// so a failed create never eats into the daily cap.
			counter := app.newTracker()
			capped, err := counter.CapReached()
			if err != nil {
				return err
			}
			if capped {
				return fmt.Errorf("daily task limit of %d reached, try again tomorrow", app.cfg.Tasks.DailyCap)
			}

			in := api.TaskInput{
				Text:     text,
				Identity: ident,
			}

			if recurring {
				rec, err := buildRecurrence(pattern, startFlag, endFlag)
				if err != nil {
					return err
				}
				in.Recurrence = rec
			}

			created, err := app.client.CreateTask(ctx, in)
			if err != nil {
				return err
			}

			count, err := counter.Increment()
			if err != nil && !errors.Is(err, tracker.ErrDailyCapReached) {
				// The task exists at this point, so a counter write
				// problem is only worth a warning.
				app.logger.Warn("failed to record created-task count", logging.KeyError, err.Error())
			}

			// The backend may hand out its own anonymous id; keep it so
			// future fetches see this task.
			if created.TempUserID != "" {
				if adoptErr := app.session.AdoptTempUserID(created.TempUserID); adoptErr != nil {
					app.logger.Warn("failed to persist assigned anonymous id", logging.KeyError, adoptErr.Error())
				}
			}

			cmd.Printf("Created task %s (%d today)\n", created.ID, count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&recurring, "recurring", false, "make the task repeat")
	cmd.Flags().StringVar(&pattern, "pattern", string(api.PatternDaily), "recurrence pattern (daily, weekdays, weekly, monthly, yearly, custom)")
	cmd.Flags().StringVar(&startFlag, "start", "", "first day of the recurrence range (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&endFlag, "end", "", "last day of the recurrence range (YYYY-MM-DD, default: open)")

	return cmd
}

func buildRecurrence(pattern, startFlag, endFlag string) (*api.Recurrence, error) {
	p := api.Pattern(pattern)
	switch p {
	case api.PatternDaily, api.PatternWeekdays, api.PatternWeekly,
		api.PatternMonthly, api.PatternYearly, api.PatternCustom:
	default:
		return nil, fmt.Errorf("unknown recurrence pattern %q", pattern)
	}

	start := time.Now()
	if startFlag != "" {
		parsed, err := time.ParseInLocation(dateFlagLayout, startFlag, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid --start %q: expected YYYY-MM-DD", startFlag)
		}
		start = parsed
	}

	rec := &api.Recurrence{Pattern: p, Start: start}

	if endFlag != "" {
		end, err := time.ParseInLocation(dateFlagLayout, endFlag, time.Local)
		if err != nil {
			return nil, fmt.Errorf("invalid --end %q: expected YYYY-MM-DD", endFlag)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("--end %s is before --start %s", endFlag, start.Format(dateFlagLayout))
		}
		rec.End = end
	}

	return rec, nil
}

func newTaskDoneCmd() *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			if err := app.client.SetCompleted(cmd.Context(), args[0], !undo); err != nil {
				return err
			}

			if undo {
				cmd.Printf("Task %s reopened\n", args[0])
			} else {
				cmd.Printf("Task %s completed\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "mark the task as not completed instead")

	return cmd
}

func newTaskEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <task-id> <text>",
		Short: "Change a task's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			text := strings.TrimSpace(strings.Join(args[1:], " "))
			if text == "" {
				return fmt.Errorf("task text cannot be empty")
			}

			ident, err := app.session.Identity(ctx)
			if err != nil {
				return err
			}
			if ident.IsZero() {
				return fmt.Errorf("no tasks exist yet on this device")
			}

			// Updates send the whole task, so fetch the current state and
			// change only the text.
			tasks, err := app.client.Tasks(ctx, ident)
			if err != nil {
				return err
			}

			var current *api.Task
			for i := range tasks {
				if tasks[i].ID == args[0] {
					current = &tasks[i]
					break
				}
			}
			if current == nil {
				return fmt.Errorf("task %s not found", args[0])
			}

			if _, err := app.client.UpdateTask(ctx, args[0], api.TaskInput{
				Text:       text,
				Completed:  current.Completed,
				Recurrence: current.Recurrence,
				Identity:   ident,
			}); err != nil {
				return err
			}

			cmd.Printf("Task %s updated\n", args[0])
			return nil
		},
	}

	return cmd
}

func newTaskRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			if err := app.client.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}

			cmd.Printf("Task %s deleted\n", args[0])
			return nil
		},
	}

	return cmd
}
