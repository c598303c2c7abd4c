// Package refresh sequences task fetches so stale results never overwrite
// fresh ones.
//
// Every fetch cycle takes a generation number from a Coordinator. When the
// user changes the selected date, logs in, or logs out, the caller bumps
// the generation; any in-flight cycle started under an older generation
// finds itself stale on completion and drops its result instead of
// applying it.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tarefista/tarefista/internal/api"
	"github.com/tarefista/tarefista/internal/logging"
)

// Coordinator hands out fetch generations.
type Coordinator struct {
	generation atomic.Uint64
}

// Next bumps and returns the current generation. Call it when starting a
// fetch cycle, and again whenever prior in-flight fetches must be
// invalidated.
func (c *Coordinator) Next() uint64 {
	return c.generation.Add(1)
}

// Stale reports whether a fetch started at gen has been superseded.
func (c *Coordinator) Stale(gen uint64) bool {
	return c.generation.Load() != gen
}

// ErrStale is returned by a cycle whose result was superseded before it
// could be applied.
var ErrStale = errors.New("refresh superseded")

// Runner periodically resolves the current identity, fetches its tasks and
// hands them to Apply. Identity resolution always precedes the fetch so a
// login or logout between ticks is reflected in the very next cycle.
type Runner struct {
	Interval    time.Duration
	Coordinator *Coordinator
	Logger      logging.Logger

	Resolve func(ctx context.Context) (api.Identity, error)
	Fetch   func(ctx context.Context, ident api.Identity) ([]api.Task, error)
	Apply   func(ident api.Identity, tasks []api.Task)
}

// Run fetches once immediately, then on every interval tick until ctx is
// cancelled. Individual cycle failures are logged and do not stop the loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.Interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", r.Interval)
	}
	if r.Resolve == nil || r.Fetch == nil || r.Apply == nil {
		return errors.New("refresh runner is missing a Resolve, Fetch or Apply func")
	}

	r.cycle(ctx)

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.cycle(ctx)
		}
	}
}

// Cycle runs a single resolve-fetch-apply pass. Exposed so one-shot
// commands and tests can share the sequencing with the loop.
func (r *Runner) Cycle(ctx context.Context) error {
	return r.cycleErr(ctx)
}

func (r *Runner) cycle(ctx context.Context) {
	if err := r.cycleErr(ctx); err != nil && !errors.Is(err, ErrStale) && !errors.Is(err, context.Canceled) {
		if r.Logger != nil {
			r.Logger.Error("refresh cycle failed", logging.Err(err))
		}
	}
}

func (r *Runner) cycleErr(ctx context.Context) error {
	gen := r.Coordinator.Next()

	ident, err := r.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}

	// An unresolved identity means there is nothing to fetch yet. The
	// visible list is empty, not an error.
	if ident.IsZero() {
		if r.Coordinator.Stale(gen) {
			return ErrStale
		}
		r.Apply(ident, nil)
		return nil
	}

	tasks, err := r.Fetch(ctx, ident)
	if err != nil {
		return fmt.Errorf("fetch tasks: %w", err)
	}

	if r.Coordinator.Stale(gen) {
		return ErrStale
	}

	r.Apply(ident, tasks)
	return nil
}
