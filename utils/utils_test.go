package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecondsBetween(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 1.5, SecondsBetween(start, start.Add(1500*time.Millisecond)))
	assert.Equal(t, 0.0, SecondsBetween(start, start.Add(-time.Second)))
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.json")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestReadFileIfExists(t *testing.T) {
	dir := t.TempDir()

	data, err := ReadFileIfExists(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Nil(t, data)

	path := filepath.Join(dir, "present.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	data, err = ReadFileIfExists(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
