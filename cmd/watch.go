package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/tarefista/tarefista/internal/api"
	"github.com/tarefista/tarefista/internal/config"
	"github.com/tarefista/tarefista/internal/instrumentation"
	"github.com/tarefista/tarefista/internal/logging"
	"github.com/tarefista/tarefista/internal/refresh"
	"github.com/tarefista/tarefista/internal/server"
	"github.com/tarefista/tarefista/internal/session"
	"github.com/tarefista/tarefista/internal/visibility"
)

func newWatchCmd() *cobra.Command {
	var (
		intervalFlag     time.Duration
		reminderFlag     string
		healthAddrFlag   string
		metricsAddrFlag  string
		disableReminders bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run a continuous refresh loop with health and metrics endpoints",
		Long: `Keeps the local task mirror fresh by refetching on an interval, fires a
daily reminder listing pending tasks, and exposes liveness/readiness
probes plus a Prometheus metrics endpoint. Intended for running under a
process supervisor or as a sidecar on an always-on machine.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			cfg := app.cfg
			if intervalFlag > 0 {
				cfg.Watch.Interval = config.Duration(intervalFlag)
			}
			if reminderFlag != "" {
				cfg.Watch.ReminderTime = reminderFlag
			}
			if healthAddrFlag != "" {
				cfg.Watch.HealthAddr = healthAddrFlag
			}
			if metricsAddrFlag != "" {
				cfg.Watch.MetricsAddr = metricsAddrFlag
			}

			reminderSpec := ""
			if !disableReminders {
				reminderSpec, err = config.ParseReminderTime(cfg.Watch.ReminderTime)
				if err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, app, reminderSpec)
		},
	}

	cmd.Flags().DurationVar(&intervalFlag, "interval", 0, "refresh interval (default from config)")
	cmd.Flags().StringVar(&reminderFlag, "reminder-time", "", "daily reminder time HH:MM (default from config)")
	cmd.Flags().StringVar(&healthAddrFlag, "health-addr", "", "probe endpoint listen address (default from config)")
	cmd.Flags().StringVar(&metricsAddrFlag, "metrics-addr", "", "metrics endpoint listen address (default from config)")
	cmd.Flags().BoolVar(&disableReminders, "no-reminder", false, "disable the daily reminder")

	return cmd
}

// watchState holds the latest applied snapshot for the reminder job.
type watchState struct {
	mu    sync.Mutex
	tasks []api.Task
}

func (s *watchState) set(tasks []api.Task) {
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
}

func (s *watchState) pendingToday(now time.Time) []api.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []api.Task
	for _, t := range visibility.Filter(s.tasks, now) {
		if !t.Completed {
			pending = append(pending, t)
		}
	}
	return pending
}

// countFailedResolves wraps identity resolution so cycles that end before
// the fetch still land in the refresh cycle counter.
func countFailedResolves(metrics *instrumentation.Metrics, resolve func(context.Context) (api.Identity, error)) func(context.Context) (api.Identity, error) {
	return func(ctx context.Context) (api.Identity, error) {
		ident, err := resolve(ctx)
		if err != nil {
			metrics.RecordRefreshCycle(ctx, instrumentation.StatusError)
		}
		return ident, err
	}
}

func runWatch(ctx context.Context, app *app, reminderSpec string) error {
	instConfig := instrumentation.DefaultConfig()
	instConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instConfig)
	if err != nil {
		return fmt.Errorf("initialize instrumentation: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			app.logger.Warn("instrumentation shutdown failed", logging.KeyError, err.Error())
		}
	}()

	// Rebuild the API client with metrics and tracing wired in.
	client := api.NewClient(app.client.BaseURL(),
		api.WithHTTPClient(&http.Client{Timeout: app.cfg.API.Timeout.Std()}),
		api.WithLogger(app.logger),
		api.WithMetrics(provider.Metrics()),
		api.WithTracer(provider.Tracer()),
	)
	cache := session.NewCache(session.NewStore(app.dir), client, session.WithLogger(app.logger))

	mirrorStore, err := app.openMirror()
	if err != nil {
		return err
	}

	health := server.NewHealthChecker(app.cfg.Watch.HealthAddr)
	go func() {
		if err := health.Start(); err != nil && err != http.ErrServerClosed {
			app.logger.Error("health server failed", logging.KeyError, err.Error())
		}
	}()

	var metricsServer *server.MetricsServer
	if provider.PrometheusEnabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    app.cfg.Watch.MetricsAddr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return err
		}
		go func() {
			if err := metricsServer.Start(); err != nil && err != http.ErrServerClosed {
				app.logger.Error("metrics server failed", logging.KeyError, err.Error())
			}
		}()
	}

	state := &watchState{}
	metrics := provider.Metrics()

	runner := &refresh.Runner{
		Interval:    app.cfg.Watch.Interval.Std(),
		Coordinator: &refresh.Coordinator{},
		Logger:      app.logger,
		Resolve:     countFailedResolves(metrics, cache.Identity),
		Fetch: func(ctx context.Context, ident api.Identity) ([]api.Task, error) {
			tasks, err := client.Tasks(ctx, ident)
			if err != nil {
				metrics.RecordRefreshCycle(ctx, instrumentation.StatusError)
				return nil, err
			}
			if err := mirrorStore.Replace(ctx, ident, tasks); err != nil {
				app.logger.Warn("failed to update local task mirror", logging.KeyError, err.Error())
			}
			return tasks, nil
		},
		Apply: func(ident api.Identity, tasks []api.Task) {
			state.set(tasks)
			health.SetReady(true)

			visible := visibility.Filter(tasks, time.Now())
			metrics.RecordRefreshCycle(ctx, instrumentation.StatusSuccess)
			metrics.RecordVisibleTasks(ctx, len(visible))

			app.logger.Debug("refreshed tasks",
				"total", len(tasks),
				"visible_today", len(visible),
			)
		},
	}

	var reminder *cron.Cron
	if reminderSpec != "" {
		reminder = cron.New()
		if _, err := reminder.AddFunc(reminderSpec, func() {
			pending := state.pendingToday(time.Now())
			if len(pending) == 0 {
				app.logger.Info("daily reminder: all tasks done")
				return
			}
			app.logger.Info("daily reminder", "pending_tasks", len(pending))
			for _, t := range pending {
				app.logger.Info("pending task", logging.KeyTaskID, t.ID, "text", t.Text)
			}
		}); err != nil {
			return fmt.Errorf("schedule daily reminder: %w", err)
		}
		reminder.Start()
	}

	app.logger.Info("watch started",
		"interval", app.cfg.Watch.Interval.Std().String(),
		"health_addr", health.Addr(),
	)

	runErr := runner.Run(ctx)
	if errors.Is(runErr, context.Canceled) || ctx.Err() != nil {
		runErr = nil
	}

	// Graceful teardown: probes flip to not-ready first so traffic drains.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()

	if reminder != nil {
		reminderCtx := reminder.Stop()
		select {
		case <-reminderCtx.Done():
		case <-shutdownCtx.Done():
		}
	}
	if err := health.Shutdown(shutdownCtx); err != nil {
		app.logger.Warn("health server shutdown failed", logging.KeyError, err.Error())
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			app.logger.Warn("metrics server shutdown failed", logging.KeyError, err.Error())
		}
	}

	app.logger.Info("watch stopped")
	return runErr
}
