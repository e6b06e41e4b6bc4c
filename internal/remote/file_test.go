package remote

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	_, _, err = s.Fetch(ctx, "inventory.json")
	assert.True(t, IsNotFound(err))

	v1, err := s.Replace(ctx, "inventory.json", []byte(`{"products":[]}`), "")
	require.NoError(t, err)

	content, v, err := s.Fetch(ctx, "inventory.json")
	require.NoError(t, err)
	assert.Equal(t, v1, v)
	assert.JSONEq(t, `{"products":[]}`, string(content))

	_, err = os.Stat(filepath.Join(dir, "inventory.json"))
	assert.NoError(t, err)
}

func TestFileStore_ExternalEditConflicts(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	v1, err := s.Replace(ctx, "inventory.json", []byte(`{"n":1}`), "")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "inventory.json"), []byte(`{"n":99}`), 0o644))

	_, err = s.Replace(ctx, "inventory.json", []byte(`{"n":2}`), v1)
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	content, _, err := s.Fetch(ctx, "inventory.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":99}`, string(content))
}

func TestFileStore_RejectsEscapingPath(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Fetch(context.Background(), "../secrets.json")
	assert.Error(t, err)
}

func TestFileStore_List(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = s.Replace(ctx, "2024.json", []byte(`{}`), "")
	require.NoError(t, err)
	_, err = s.Replace(ctx, "2025.json", []byte(`{}`), "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644))

	files, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "2024.json", files[0].Path)
	assert.Equal(t, "2025.json", files[1].Path)
	assert.Equal(t, int64(2), files[0].Size)
}
