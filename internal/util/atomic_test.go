package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.h")

	require.NoError(t, WriteFileAtomic(path, []byte("first\n"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("second\n"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.h")
	err := WriteFileAtomic(path, []byte("x"), 0o644)
	assert.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStageFileCommitAndDiscard(t *testing.T) {
	dir := t.TempDir()
	kept := filepath.Join(dir, "a.h")
	dropped := filepath.Join(dir, "b.cpp")
	require.NoError(t, os.WriteFile(dropped, []byte("old\n"), 0o644))

	a, err := StageFile(kept, []byte("new a\n"), 0o644)
	require.NoError(t, err)
	b, err := StageFile(dropped, []byte("new b\n"), 0o644)
	require.NoError(t, err)

	_, err = os.Stat(kept)
	assert.True(t, os.IsNotExist(err), "nothing visible before commit")

	require.NoError(t, a.Commit())
	b.Discard()

	data, err := os.ReadFile(kept)
	require.NoError(t, err)
	assert.Equal(t, "new a\n", string(data))
	data, err = os.ReadFile(dropped)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}
