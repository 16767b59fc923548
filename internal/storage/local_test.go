package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ecochain/token-catalog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_StoreAndDelete(t *testing.T) {
	base := t.TempDir()
	s, err := NewLocalStorage(config.LocalMediaConfig{BasePath: base, BaseURL: "/uploads/", Permissions: "0600"})
	require.NoError(t, err)

	file, err := s.Store(context.Background(), Upload{
		Filename:    "Logo.PNG",
		ContentType: "image/png",
		Body:        strings.NewReader("png-bytes"),
	}, "tokens", "t1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(file.Key, "tokens/t1/"))
	assert.True(t, strings.HasSuffix(file.Key, ".png"))
	assert.Equal(t, "/uploads/"+file.Key, file.URL)
	assert.Equal(t, int64(9), file.Size)
	assert.Equal(t, "local", file.StorageType)

	data, err := os.ReadFile(filepath.Join(base, filepath.FromSlash(file.Key)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.Delete(context.Background(), file.Key))
	assert.ErrorIs(t, s.Delete(context.Background(), file.Key), ErrNotFound)
}

func TestLocalStorage_DefaultExtension(t *testing.T) {
	s, err := NewLocalStorage(config.LocalMediaConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	file, err := s.Store(context.Background(), Upload{Filename: "logo", Body: strings.NewReader("x")}, "tokens", "t1")

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(file.Key, ".bin"))
}

func TestLocalStorage_RejectsBadPermissions(t *testing.T) {
	_, err := NewLocalStorage(config.LocalMediaConfig{BasePath: t.TempDir(), Permissions: "rw"})
	assert.Error(t, err)
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("image/svg+xml"))
	assert.False(t, IsImage("application/pdf"))
}
