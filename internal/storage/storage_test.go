// internal/storage/storage_test.go
package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateObjectName(t *testing.T) {
	a := GenerateObjectName("Photo.PNG")
	b := GenerateObjectName("photo.png")
	assert.True(t, strings.HasPrefix(a, ImagePrefix))
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.NotEqual(t, a, b)
}

func TestCleanKey(t *testing.T) {
	for _, bad := range []string{"", ".", "../etc/passwd", "file/../../x", "file//x"} {
		_, err := cleanKey(bad)
		assert.Error(t, err, bad)
	}
	key, err := cleanKey("file/images/a.png")
	require.NoError(t, err)
	assert.Equal(t, "file/images/a.png", key)
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, err := NewLocalStore(root, "/media/")
	require.NoError(t, err)

	key := "file/images/x.png"
	require.NoError(t, s.Put(ctx, key, strings.NewReader("png-bytes"), 9, "image/png"))
	_, err = os.Stat(filepath.Join(root, "file", "images", "x.png"))
	require.NoError(t, err)

	rc, err := s.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	url, err := s.URL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "/media/file/images/x.png", url)

	assert.Error(t, s.Put(ctx, key, strings.NewReader("again"), 5, "image/png"), "keys are never overwritten")

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Open(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.NoError(t, s.Delete(ctx, key), "deleting twice is fine")

	_, err = s.Open(ctx, "../secret")
	assert.Error(t, err)
}
