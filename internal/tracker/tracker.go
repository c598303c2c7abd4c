// Package tracker counts how many tasks were created today.
//
// The count lives in a small JSON file next to the rest of the local state
// and resets automatically when the stored date no longer matches the
// current day. An optional daily cap turns task creation away once reached.
package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const dateLayout = "2006-01-02"

// ErrDailyCapReached is returned by Increment when the configured cap is
// already met for the current day.
var ErrDailyCapReached = errors.New("daily task limit reached")

type state struct {
	Count int    `json:"count"`
	Date  string `json:"date"`
}

// Tracker persists the per-day created-task counter.
type Tracker struct {
	path string
	cap  int
	now  func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithCap sets the maximum number of tasks that may be created per day.
// Zero or negative means unlimited.
func WithCap(n int) Option {
	return func(t *Tracker) {
		t.cap = n
	}
}

func withClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// New returns a Tracker backed by the file at path.
func New(path string, opts ...Option) *Tracker {
	t := &Tracker{
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// DefaultPath returns the counter file path inside dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, "task_count.json")
}

// Count returns how many tasks were created today. A stored count from a
// previous day reads as zero.
func (t *Tracker) Count() (int, error) {
	st, err := t.load()
	if err != nil {
		return 0, err
	}
	if st.Date != t.today() {
		return 0, nil
	}
	return st.Count, nil
}

// CapReached reports whether the configured cap is already met for the
// current day. With no cap configured it always reports false.
func (t *Tracker) CapReached() (bool, error) {
	if t.cap <= 0 {
		return false, nil
	}
	count, err := t.Count()
	if err != nil {
		return false, err
	}
	return count >= t.cap, nil
}

// Increment records one more task created today and returns the new count.
// When a cap is configured and already reached, it returns
// ErrDailyCapReached without changing the stored count.
func (t *Tracker) Increment() (int, error) {
	st, err := t.load()
	if err != nil {
		return 0, err
	}

	today := t.today()
	if st.Date != today {
		st = state{Date: today}
	}

	if t.cap > 0 && st.Count >= t.cap {
		return st.Count, ErrDailyCapReached
	}

	st.Count++
	if err := t.save(st); err != nil {
		return 0, err
	}
	return st.Count, nil
}

// Reset clears the counter for the current day.
func (t *Tracker) Reset() error {
	return t.save(state{Date: t.today()})
}

func (t *Tracker) today() string {
	return t.now().Format(dateLayout)
}

func (t *Tracker) load() (state, error) {
	data, err := os.ReadFile(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return state{}, nil
	}
	if err != nil {
		return state{}, fmt.Errorf("read task counter: %w", err)
	}

	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		// A corrupt counter file is not worth failing task creation over.
		return state{}, nil
	}
	return st, nil
}

func (t *Tracker) save(st state) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode task counter: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0o700); err != nil {
		return fmt.Errorf("create counter dir: %w", err)
	}
	if err := os.WriteFile(t.path, data, 0o600); err != nil {
		return fmt.Errorf("write task counter: %w", err)
	}
	return nil
}
