package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	got, err := store.Get(KeyAuthToken)
	require.NoError(t, err)
	assert.Empty(t, got, "unset key reads as empty")

	require.NoError(t, store.Set(KeyAuthToken, "tok-123"))

	got, err = store.Get(KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", got)

	require.NoError(t, store.Delete(KeyAuthToken))
	got, err = store.Get(KeyAuthToken)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Deleting twice is fine.
	require.NoError(t, store.Delete(KeyAuthToken))
}

func TestStoreCreatesDirectoryLazily(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "tarefista")
	store := NewStore(dir)

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Set(KeyTempUserID, "temp-9"))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStoreTokenFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	store := NewStore(t.TempDir())
	require.NoError(t, store.Set(KeyAuthToken, "tok-123"))

	info, err := os.Stat(filepath.Join(store.Dir(), KeyAuthToken))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
