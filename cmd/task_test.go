package cmd

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarefista/tarefista/internal/api"
	"github.com/tarefista/tarefista/internal/tracker"
)

func TestBuildRecurrence(t *testing.T) {
	rec, err := buildRecurrence("daily", "2026-03-01", "2026-03-31")
	require.NoError(t, err)

	assert.Equal(t, api.PatternDaily, rec.Pattern)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local), rec.Start)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.Local), rec.End)
}

func TestBuildRecurrenceDefaultsStartToNow(t *testing.T) {
	before := time.Now()
	rec, err := buildRecurrence("weekly", "", "")
	require.NoError(t, err)

	assert.Equal(t, api.PatternWeekly, rec.Pattern)
	assert.False(t, rec.Start.Before(before))
	assert.True(t, rec.End.IsZero(), "no --end means an open-ended range")
}

func TestBuildRecurrenceRejectsUnknownPattern(t *testing.T) {
	_, err := buildRecurrence("fortnightly", "", "")
	assert.ErrorContains(t, err, "unknown recurrence pattern")
}

func TestBuildRecurrenceRejectsBadDates(t *testing.T) {
	_, err := buildRecurrence("daily", "March 1st", "")
	assert.Error(t, err)

	_, err = buildRecurrence("daily", "2026-03-01", "yesterday")
	assert.Error(t, err)
}

func TestBuildRecurrenceRejectsEndBeforeStart(t *testing.T) {
	_, err := buildRecurrence("daily", "2026-03-31", "2026-03-01")
	assert.ErrorContains(t, err, "before")
}

func runTaskAdd(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newTaskAddCmd()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func todayCount(t *testing.T, dir string) int {
	t.Helper()
	count, err := tracker.New(tracker.DefaultPath(dir)).Count()
	require.NoError(t, err)
	return count
}

func TestTaskAddCountsOnlySuccessfulCreates(t *testing.T) {
	dir := testStateDir(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"t1","text":"buy milk"}`)
	}))
	defer srv.Close()
	testAPIURL(t, srv.URL)

	require.NoError(t, runTaskAdd(t, "buy milk"))
	assert.Equal(t, 1, todayCount(t, dir))
}

func TestTaskAddFailedCreateLeavesCountUntouched(t *testing.T) {
	dir := testStateDir(t)

	// Nothing listens on this port, so the create cannot succeed.
	testAPIURL(t, "http://127.0.0.1:1")

	require.Error(t, runTaskAdd(t, "buy milk"))
	assert.Equal(t, 0, todayCount(t, dir))
}

func TestTaskAddAtCapRejectsWithoutContactingBackend(t *testing.T) {
	dir := testStateDir(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[tasks]\ndaily-cap = 1\n"), 0o600))
	counter := fmt.Sprintf(`{"count":1,"date":%q}`, time.Now().Format("2006-01-02"))
	require.NoError(t, os.WriteFile(tracker.DefaultPath(dir), []byte(counter), 0o600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected %s %s after the daily limit", r.Method, r.URL.Path)
	}))
	defer srv.Close()
	testAPIURL(t, srv.URL)

	err := runTaskAdd(t, "one too many")
	assert.ErrorContains(t, err, "daily task limit")
	assert.Equal(t, 1, todayCount(t, dir))
}
