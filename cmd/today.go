package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tarefista/tarefista/internal/api"
	"github.com/tarefista/tarefista/internal/logging"
	"github.com/tarefista/tarefista/internal/ui"
	"github.com/tarefista/tarefista/internal/visibility"
)

const dateFlagLayout = "2006-01-02"

func newTodayCmd() *cobra.Command {
	var dateFlag string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the tasks visible on a date (default: today)",
		Long: `Fetches your tasks and shows the ones due on the selected date:
one-time tasks on the day they were created, recurring daily tasks on
every day inside their date range.

When the backend is unreachable, the last successfully fetched list is
shown from the local mirror.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			selected := time.Now()
			if dateFlag != "" {
				selected, err = time.ParseInLocation(dateFlagLayout, dateFlag, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", dateFlag)
				}
			}

			ctx := cmd.Context()
			ident, err := app.session.Identity(ctx)
			if err != nil {
				// An opaque cached token resolves through one backend
				// round trip. If that fails on transport, a read-only
				// view degrades to "no identity yet" rather than erroring.
				var apiErr *api.Error
				if !errors.As(err, &apiErr) || !apiErr.Temporary() {
					return err
				}
				app.logger.Warn("could not resolve identity, continuing without one", logging.KeyError, err.Error())
				ident = api.Identity{}
			}

			if ident.IsZero() {
				// Nothing was ever created or logged in on this device.
				cmd.Print(ui.TaskList(nil, selected))
				return nil
			}

			tasks, offline, fetchedAt, err := fetchWithMirror(ctx, app, ident)
			if err != nil {
				return err
			}

			if offline {
				cmd.Print(ui.Offline(fetchedAt))
			}
			cmd.Print(ui.TaskList(visibility.Filter(tasks, selected), selected))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "date to show tasks for (YYYY-MM-DD, default: today)")

	return cmd
}

// fetchWithMirror fetches the task list, keeping the local mirror fresh on
// success and falling back to it when the backend is unreachable.
func fetchWithMirror(ctx context.Context, app *app, ident api.Identity) (tasks []api.Task, offline bool, fetchedAt time.Time, err error) {
	tasks, err = app.client.Tasks(ctx, ident)
	if err == nil {
		if store, mirrorErr := app.openMirror(); mirrorErr == nil {
			if replaceErr := store.Replace(ctx, ident, tasks); replaceErr != nil {
				app.logger.Warn("failed to update local task mirror", logging.KeyError, replaceErr.Error())
			}
		}
		return tasks, false, time.Time{}, nil
	}

	var apiErr *api.Error
	if !errors.As(err, &apiErr) || !apiErr.Temporary() {
		return nil, false, time.Time{}, err
	}

	store, mirrorErr := app.openMirror()
	if mirrorErr != nil {
		return nil, false, time.Time{}, err
	}

	tasks, mirrorErr = store.Tasks(ctx, ident)
	if mirrorErr != nil {
		return nil, false, time.Time{}, err
	}

	fetchedAt, _ = store.FetchedAt(ctx, ident)
	return tasks, true, fetchedAt, nil
}
