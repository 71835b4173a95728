package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultServerConfig_Values verifies DefaultServerConfig returns values
// matching the upstream search-session design's constants exactly.
func TestDefaultServerConfig_Values(t *testing.T) {
	t.Parallel()

	s := DefaultServerConfig()
	require.NotNil(t, s)

	assert.Equal(t, 10_000, s.DefaultMaxResults)
	assert.Equal(t, 100_000, s.MaxResultsCeiling)
	assert.Equal(t, 5_000, s.FirstResultWaitMs)
	assert.Equal(t, 50, s.ResultBufferSize)
	assert.Equal(t, 100, s.MaxDetailedErrors)
	assert.Equal(t, 100, s.LastReadThrottleMs)
	assert.Equal(t, 50, s.LastReadThrottleMatches)
	assert.Equal(t, 60, s.SweepIntervalSecs)
	assert.Equal(t, 300, s.ActiveRetentionSecs)
	assert.Equal(t, 30, s.CompletedRetentionSecs)
	assert.Equal(t, 0, s.WalkConcurrency)
	assert.False(t, s.NoIgnore)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
}

// TestDefaultServerConfig_IsFreshCopy verifies each call returns an
// independent value so mutations in one caller do not affect others.
func TestDefaultServerConfig_IsFreshCopy(t *testing.T) {
	t.Parallel()

	s1 := DefaultServerConfig()
	s2 := DefaultServerConfig()

	s1.DefaultMaxResults = 1
	s1.LogLevel = "debug"

	assert.Equal(t, 10_000, s2.DefaultMaxResults, "mutation of s1 must not affect s2")
	assert.Equal(t, "info", s2.LogLevel)
}

// TestDefaultServerConfig_SatisfiesItsOwnValidation verifies the built-in
// defaults never trip ValidateServerConfig's error checks.
func TestDefaultServerConfig_SatisfiesItsOwnValidation(t *testing.T) {
	t.Parallel()

	errs := ValidateServerConfig(DefaultServerConfig())
	assert.False(t, HasErrors(errs), "defaults must be internally valid: %+v", errs)
}
