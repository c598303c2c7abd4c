package tracker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTracker(t *testing.T, opts ...Option) *Tracker {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "task_count.json"), opts...)
}

func TestCountStartsAtZero(t *testing.T) {
	tr := testTracker(t)

	count, err := tr.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestIncrement(t *testing.T) {
	tr := testTracker(t)

	for want := 1; want <= 3; want++ {
		got, err := tr.Increment()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	count, err := tr.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCountResetsOnNewDay(t *testing.T) {
	day1 := time.Date(2026, 5, 1, 23, 30, 0, 0, time.UTC)
	clock := day1
	tr := testTracker(t, withClock(func() time.Time { return clock }))

	_, err := tr.Increment()
	require.NoError(t, err)
	_, err = tr.Increment()
	require.NoError(t, err)

	clock = day1.Add(time.Hour)

	count, err := tr.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count, "count should reset at midnight")

	got, err := tr.Increment()
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestDailyCap(t *testing.T) {
	tr := testTracker(t, WithCap(2))

	_, err := tr.Increment()
	require.NoError(t, err)
	_, err = tr.Increment()
	require.NoError(t, err)

	got, err := tr.Increment()
	assert.ErrorIs(t, err, ErrDailyCapReached)
	assert.Equal(t, 2, got)
}

func TestCapResetsOnNewDay(t *testing.T) {
	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tr := testTracker(t, WithCap(1), withClock(func() time.Time { return clock }))

	_, err := tr.Increment()
	require.NoError(t, err)
	_, err = tr.Increment()
	require.ErrorIs(t, err, ErrDailyCapReached)

	clock = clock.AddDate(0, 0, 1)

	got, err := tr.Increment()
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestCapReached(t *testing.T) {
	tr := testTracker(t, WithCap(2))

	capped, err := tr.CapReached()
	require.NoError(t, err)
	assert.False(t, capped)

	_, err = tr.Increment()
	require.NoError(t, err)
	_, err = tr.Increment()
	require.NoError(t, err)

	capped, err = tr.CapReached()
	require.NoError(t, err)
	assert.True(t, capped)
}

func TestCapReachedResetsOnNewDay(t *testing.T) {
	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tr := testTracker(t, WithCap(1), withClock(func() time.Time { return clock }))

	_, err := tr.Increment()
	require.NoError(t, err)

	capped, err := tr.CapReached()
	require.NoError(t, err)
	assert.True(t, capped)

	clock = clock.AddDate(0, 0, 1)

	capped, err = tr.CapReached()
	require.NoError(t, err)
	assert.False(t, capped)
}

func TestCapReachedWithoutCap(t *testing.T) {
	tr := testTracker(t)

	for i := 0; i < 10; i++ {
		_, err := tr.Increment()
		require.NoError(t, err)
	}

	capped, err := tr.CapReached()
	require.NoError(t, err)
	assert.False(t, capped)
}

func TestZeroCapMeansUnlimited(t *testing.T) {
	tr := testTracker(t)

	for i := 0; i < 25; i++ {
		_, err := tr.Increment()
		require.NoError(t, err)
	}

	count, err := tr.Count()
	require.NoError(t, err)
	assert.Equal(t, 25, count)
}

func TestReset(t *testing.T) {
	tr := testTracker(t)

	_, err := tr.Increment()
	require.NoError(t, err)
	require.NoError(t, tr.Reset())

	count, err := tr.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCorruptFileReadsAsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task_count.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	tr := New(path)

	count, err := tr.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	got, err := tr.Increment()
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}
