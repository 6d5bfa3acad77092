package sink

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutCreatesParents(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "out")
	s, err := New(dest)
	require.NoError(t, err)
	defer s.Close()

	wrote, err := s.Put("levels/one/map.dat", []byte("map"))
	require.NoError(t, err)
	assert.True(t, wrote)

	got, err := os.ReadFile(filepath.Join(dest, "levels", "one", "map.dat"))
	require.NoError(t, err)
	assert.Equal(t, "map", string(got))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Join(dest, "levels", "one"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPutOverwrite(t *testing.T) {
	t.Parallel()

	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "a.txt"), []byte("old"), 0o644))

	keep, err := New(dest, WithOverwrite(false))
	require.NoError(t, err)
	defer keep.Close()
	wrote, err := keep.Put("a.txt", []byte("new"))
	require.NoError(t, err)
	assert.False(t, wrote)
	got, _ := os.ReadFile(filepath.Join(dest, "a.txt"))
	assert.Equal(t, "old", string(got))

	replace, err := New(dest)
	require.NoError(t, err)
	defer replace.Close()
	wrote, err = replace.Put("a.txt", []byte("new"))
	require.NoError(t, err)
	assert.True(t, wrote)
	got, _ = os.ReadFile(filepath.Join(dest, "a.txt"))
	assert.Equal(t, "new", string(got))
}

func TestPutRejectsTraversal(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	dest := filepath.Join(parent, "dest")
	s, err := New(dest)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Put("../pwned.txt", []byte("x"))
	var pathErr *fs.PathError
	require.ErrorAs(t, err, &pathErr)
	require.ErrorIs(t, err, fs.ErrInvalid)

	_, statErr := os.Stat(filepath.Join(parent, "pwned.txt"))
	require.Error(t, statErr)
}

func TestCleanName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a/b/c.txt", CleanName("/a//b/./c.txt"))
	assert.Equal(t, "dir/file", CleanName(`dir\file`))
	assert.Equal(t, "", CleanName("/"))
	assert.Equal(t, "../x", CleanName("../x"))
}
