package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/tarefista/tarefista/internal/api"
	"github.com/tarefista/tarefista/internal/config"
	"github.com/tarefista/tarefista/internal/logging"
	"github.com/tarefista/tarefista/internal/mirror"
	"github.com/tarefista/tarefista/internal/session"
	"github.com/tarefista/tarefista/internal/tracker"
)

// app bundles the wiring shared by every command: configuration, the API
// client, the session cache and the local state files.
type app struct {
	cfg     *config.Config
	client  *api.Client
	session *session.Cache
	logger  logging.Logger
	dir     string
}

// newApp loads configuration and builds the shared dependencies. The local
// state directory is created lazily by the components that write to it.
func newApp() (*app, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	configPath := flagConfigPath
	if configPath == "" {
		configPath = config.DefaultPath(dir)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := newLogger(flagVerbose)

	baseURL := cfg.API.BaseURL
	if flagAPIURL != "" {
		baseURL = flagAPIURL
	}

	client := api.NewClient(baseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout.Std()}),
		api.WithLogger(logger),
	)

	store := session.NewStore(dir)
	cache := session.NewCache(store, client, session.WithLogger(logger))

	return &app{
		cfg:     cfg,
		client:  client,
		session: cache,
		logger:  logger,
		dir:     dir,
	}, nil
}

func newLogger(verbose bool) logging.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return logging.NewSlogAdapter(slog.New(handler))
}

// openMirror opens the local task mirror. Mirror failures are soft; the
// caller decides whether to continue without one.
func (a *app) openMirror() (*mirror.Store, error) {
	store, err := mirror.Open(mirror.DefaultPath(a.dir))
	if err != nil {
		return nil, fmt.Errorf("open local task mirror: %w", err)
	}
	return store, nil
}

// newTracker builds the daily created-task counter with the configured cap.
func (a *app) newTracker() *tracker.Tracker {
	return tracker.New(tracker.DefaultPath(a.dir), tracker.WithCap(a.cfg.Tasks.DailyCap))
}
