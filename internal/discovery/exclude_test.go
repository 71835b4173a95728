package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExcludeMatcher_NoFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m, err := NewExcludeMatcher(dir)
	require.NoError(t, err)
	assert.False(t, m.IsIgnored("anything.txt", false))
}

func TestNewExcludeMatcher_MatchesPattern(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git", "info"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "info", "exclude"), []byte("*.local\n"), 0o644))

	m, err := NewExcludeMatcher(dir)
	require.NoError(t, err)

	assert.True(t, m.IsIgnored("secrets.local", false))
	assert.False(t, m.IsIgnored("secrets.go", false))
}

func TestNewExcludeMatcher_DirectoryPattern(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git", "info"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "info", "exclude"), []byte("scratch/\n"), 0o644))

	m, err := NewExcludeMatcher(dir)
	require.NoError(t, err)

	assert.True(t, m.IsIgnored("scratch", true))
	assert.False(t, m.IsIgnored("scratch", false))
}
