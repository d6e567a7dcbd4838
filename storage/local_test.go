package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	store, err := NewLocalStorage(base, DefaultKeyPrefix)
	require.NoError(t, err)

	id := uuid.New()
	key, err := store.Upload(ctx, id, "Acme SBC.PDF", strings.NewReader("%PDF-1.7"), WithChecksum("abc"))
	require.NoError(t, err)
	assert.Equal(t, DefaultKeyPrefix+"/"+id.String()+".pdf", key)
	assert.Equal(t, key, store.URL(key))
	assert.FileExists(t, filepath.Join(base, DefaultKeyPrefix, id.String()+".pdf"))

	rc, err := store.Download(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(body))

	require.NoError(t, store.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(base, key))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, key))
}

func TestLocalStorageDownloadMissing(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = store.Download(context.Background(), uuid.NewString()+".pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	for _, key := range []string{"", "../secret", "a/../../secret", "/etc/passwd"} {
		_, err := store.Download(context.Background(), key)
		assert.Error(t, err, key)
		assert.NotErrorIs(t, err, ErrObjectNotFound, key)
	}
}

func TestLocalStorageDistinctKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), DefaultKeyPrefix)
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		key, err := store.Upload(context.Background(), uuid.New(), "same.pdf", bytes.NewReader([]byte("x")))
		require.NoError(t, err)
		assert.False(t, seen[key], key)
		seen[key] = true
	}
}
