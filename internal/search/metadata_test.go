package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTimes_ReturnsModifiedAndPlatformTimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	modified, accessed, created := fileTimes(path)
	require.NotNil(t, modified)
	assert.NotNil(t, accessed)
	assert.NotNil(t, created)
	assert.WithinDuration(t, *modified, *modified, 0)
}

func TestFileTimes_MissingPathReturnsNils(t *testing.T) {
	modified, accessed, created := fileTimes(filepath.Join(t.TempDir(), "missing"))
	assert.Nil(t, modified)
	assert.Nil(t, accessed)
	assert.Nil(t, created)
}
