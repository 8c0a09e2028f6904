package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fin/internal/adapters/fs"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestHashFile_Deterministic(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("content"))
	b := writeFile(t, dir, "b", []byte("content"))

	hasher := fs.NewHasher()
	hashA, err := hasher.HashFile(a)
	require.NoError(t, err)
	hashB, err := hasher.HashFile(b)
	require.NoError(t, err)
	assert.Equal(t, hashA, hashB)
}

func TestHashFile_Missing(t *testing.T) {
	_, err := fs.NewHasher().HashFile(filepath.Join(t.TempDir(), "gone"))
	require.Error(t, err)
}

func TestContentEqual(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a", []byte("same bytes"))
	b := writeFile(t, dir, "b", []byte("same bytes"))
	c := writeFile(t, dir, "c", []byte("other data"))
	d := writeFile(t, dir, "d", []byte("short"))

	hasher := fs.NewHasher()

	equal, err := hasher.ContentEqual(a, b)
	require.NoError(t, err)
	assert.True(t, equal)

	equal, err = hasher.ContentEqual(a, c)
	require.NoError(t, err)
	assert.False(t, equal)

	// Size mismatch short-circuits before any hashing.
	equal, err = hasher.ContentEqual(a, d)
	require.NoError(t, err)
	assert.False(t, equal)

	_, err = hasher.ContentEqual(a, filepath.Join(dir, "gone"))
	require.Error(t, err)
}
