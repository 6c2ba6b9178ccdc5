package filekv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "identity.yaml")
	s := New(path)

	_, ok, err := s.Get(ctx, "anonymous_id")
	require.NoError(t, err)
	assert.False(t, ok, "missing file is an empty store")

	require.NoError(t, s.Set(ctx, "anonymous_id", "anon_1_abc"))
	require.NoError(t, s.Set(ctx, "voter_id", "voter_2_def"))

	// a fresh store on the same file sees the values
	s2 := New(path)
	v, ok, err := s2.Get(ctx, "anonymous_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "anon_1_abc", v)

	v, ok, err = s2.Get(ctx, "voter_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "voter_2_def", v)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestStore_emptyAndCorruptFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, ok, err := New(empty).Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, New(empty).Set(ctx, "k", "v"))

	corrupt := filepath.Join(dir, "corrupt.yaml")
	require.NoError(t, os.WriteFile(corrupt, []byte("- not\n- a map\n"), 0o600))
	_, _, err = New(corrupt).Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, New(corrupt).Set(ctx, "k", "v"))
}
