package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConfig_ZeroValue verifies that the zero value of Config is usable.
func TestConfig_ZeroValue(t *testing.T) {
	t.Parallel()

	var cfg Config
	assert.Equal(t, ServerConfig{}, cfg.Server)
}

// TestServerConfig_FieldsAreIndependentlySettable verifies that setting some
// ServerConfig fields leaves the others at their zero value.
func TestServerConfig_FieldsAreIndependentlySettable(t *testing.T) {
	t.Parallel()

	s := ServerConfig{
		DefaultMaxResults: 1,
		MaxResultsCeiling: 2,
		WalkConcurrency:   3,
		LogLevel:          "debug",
	}

	assert.Equal(t, 1, s.DefaultMaxResults)
	assert.Equal(t, 2, s.MaxResultsCeiling)
	assert.Equal(t, 3, s.WalkConcurrency)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, 0, s.ResultBufferSize, "unset fields remain zero")
}
