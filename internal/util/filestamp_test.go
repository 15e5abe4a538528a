package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0644))

	first, err := StatFile(path)
	require.NoError(t, err)
	assert.False(t, first.IsZero())
	assert.Equal(t, int64(7), first.Size)
	assert.Len(t, first.Fingerprint, 8)

	again, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// Replace through a rename, the way the store writes.
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, []byte(`{"a":2}`), 0644))
	require.NoError(t, os.Rename(tmp, path))

	replaced, err := StatFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, first, replaced)
	assert.NotEqual(t, first.Fingerprint, replaced.Fingerprint)
}

func TestStatFile_Missing(t *testing.T) {
	_, err := StatFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestCalculateFileFingerprint_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	fp, err := CalculateFileFingerprint(path)
	require.NoError(t, err)
	assert.Equal(t, "00000000", fp)
}
