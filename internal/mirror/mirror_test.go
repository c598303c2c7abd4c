package mirror

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarefista/tarefista/internal/api"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	return store
}

func TestReplaceAndReadBack(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	ident := api.Identity{UserID: "user-1"}

	created := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tasks := []api.Task{
		{ID: "a", Text: "buy milk", CreatedAt: created, UserID: "user-1"},
		{
			ID:        "b",
			Text:      "stretch",
			Completed: true,
			CreatedAt: created,
			UserID:    "user-1",
			Recurrence: &api.Recurrence{
				Pattern: api.PatternDaily,
				Start:   created,
				End:     created.AddDate(0, 1, 0),
			},
		},
	}

	require.NoError(t, store.Replace(ctx, ident, tasks))

	got, err := store.Tasks(ctx, ident)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "buy milk", got[0].Text)
	assert.Nil(t, got[0].Recurrence)
	assert.True(t, created.Equal(got[0].CreatedAt))

	require.NotNil(t, got[1].Recurrence)
	assert.Equal(t, api.PatternDaily, got[1].Recurrence.Pattern)
	assert.True(t, created.Equal(got[1].Recurrence.Start))
	assert.True(t, got[1].Completed)
}

func TestReplaceSwapsWholesale(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	ident := api.Identity{TempUserID: "temp-9"}

	require.NoError(t, store.Replace(ctx, ident, []api.Task{
		{ID: "old-1", Text: "stale"},
		{ID: "old-2", Text: "stale"},
	}))
	require.NoError(t, store.Replace(ctx, ident, []api.Task{
		{ID: "new-1", Text: "fresh"},
	}))

	got, err := store.Tasks(ctx, ident)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new-1", got[0].ID)
}

func TestScopesAreIsolated(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	alice := api.Identity{UserID: "alice"}
	temp := api.Identity{TempUserID: "temp-1"}

	require.NoError(t, store.Replace(ctx, alice, []api.Task{{ID: "a1"}}))
	require.NoError(t, store.Replace(ctx, temp, []api.Task{{ID: "t1"}}))

	got, err := store.Tasks(ctx, alice)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)

	got, err = store.Tasks(ctx, temp)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
}

func TestEmptyMirrorReturnsEmptySlice(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Tasks(context.Background(), api.Identity{UserID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClearRemovesScope(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	ident := api.Identity{UserID: "user-2"}

	require.NoError(t, store.Replace(ctx, ident, []api.Task{{ID: "x"}}))
	require.NoError(t, store.Clear(ctx, ident))

	got, err := store.Tasks(ctx, ident)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchedAt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	ident := api.Identity{UserID: "user-3"}

	at, err := store.FetchedAt(ctx, ident)
	require.NoError(t, err)
	assert.True(t, at.IsZero())

	before := time.Now().Add(-time.Second)
	require.NoError(t, store.Replace(ctx, ident, []api.Task{{ID: "x"}}))

	at, err = store.FetchedAt(ctx, ident)
	require.NoError(t, err)
	assert.True(t, at.After(before))
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "deeper", "tasks.db")
	store, err := Open(dsn)
	require.NoError(t, err)
	require.NotNil(t, store)

	require.NoError(t, store.Replace(context.Background(), api.Identity{UserID: "u"}, nil))
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
