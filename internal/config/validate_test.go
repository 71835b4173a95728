package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateServerConfig_DefaultsAreValid(t *testing.T) {
	t.Parallel()

	errs := ValidateServerConfig(DefaultServerConfig())
	assert.False(t, HasErrors(errs))
}

func TestValidateServerConfig_DefaultMaxResults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   int
		wantErr bool
	}{
		{"positive", 1000, false},
		{"zero", 0, true},
		{"negative", -5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := DefaultServerConfig()
			s.DefaultMaxResults = tt.value

			errs := ValidateServerConfig(s)
			assert.Equal(t, tt.wantErr, hasField(errs, "server.default_max_results"))
		})
	}
}

func TestValidateServerConfig_MaxResultsCeiling(t *testing.T) {
	t.Parallel()

	s := DefaultServerConfig()
	s.MaxResultsCeiling = 0

	errs := ValidateServerConfig(s)
	assert.True(t, hasField(errs, "server.max_results_ceiling"))
}

func TestValidateServerConfig_DefaultExceedsCeiling(t *testing.T) {
	t.Parallel()

	s := DefaultServerConfig()
	s.DefaultMaxResults = 200000
	s.MaxResultsCeiling = 100000

	errs := ValidateServerConfig(s)
	require.True(t, hasField(errs, "server.default_max_results"))
	assert.True(t, HasErrors(errs))
}

func TestValidateServerConfig_FirstResultWaitMs_Negative(t *testing.T) {
	t.Parallel()

	s := DefaultServerConfig()
	s.FirstResultWaitMs = -1

	errs := ValidateServerConfig(s)
	assert.True(t, hasField(errs, "server.first_result_wait_ms"))
}

func TestValidateServerConfig_ResultBufferSize_NonPositive(t *testing.T) {
	t.Parallel()

	s := DefaultServerConfig()
	s.ResultBufferSize = 0

	errs := ValidateServerConfig(s)
	assert.True(t, hasField(errs, "server.result_buffer_size"))
}

func TestValidateServerConfig_MaxDetailedErrors_Negative(t *testing.T) {
	t.Parallel()

	s := DefaultServerConfig()
	s.MaxDetailedErrors = -1

	errs := ValidateServerConfig(s)
	assert.True(t, hasField(errs, "server.max_detailed_errors"))
}

func TestValidateServerConfig_ThrottleValues_Negative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mod  func(*ServerConfig)
	}{
		{"throttle ms negative", func(s *ServerConfig) { s.LastReadThrottleMs = -1 }},
		{"throttle matches negative", func(s *ServerConfig) { s.LastReadThrottleMatches = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := DefaultServerConfig()
			tt.mod(s)

			errs := ValidateServerConfig(s)
			assert.True(t, hasField(errs, "server.last_read_throttle_ms"))
		})
	}
}

func TestValidateServerConfig_RetentionSecs_NonPositive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		mod   func(*ServerConfig)
		field string
	}{
		{"sweep interval", func(s *ServerConfig) { s.SweepIntervalSecs = 0 }, "server.sweep_interval_secs"},
		{"active retention", func(s *ServerConfig) { s.ActiveRetentionSecs = 0 }, "server.active_retention_secs"},
		{"completed retention", func(s *ServerConfig) { s.CompletedRetentionSecs = 0 }, "server.completed_retention_secs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := DefaultServerConfig()
			tt.mod(s)

			errs := ValidateServerConfig(s)
			assert.True(t, hasField(errs, tt.field))
		})
	}
}

func TestValidateServerConfig_CompletedExceedsActiveRetention_Warns(t *testing.T) {
	t.Parallel()

	s := DefaultServerConfig()
	s.ActiveRetentionSecs = 60
	s.CompletedRetentionSecs = 120

	errs := ValidateServerConfig(s)
	require.True(t, hasField(errs, "server.completed_retention_secs"))
	assert.False(t, HasErrors(errs), "retention ordering mismatch is a warning, not an error")
}

func TestValidateServerConfig_WalkConcurrency_Negative(t *testing.T) {
	t.Parallel()

	s := DefaultServerConfig()
	s.WalkConcurrency = -1

	errs := ValidateServerConfig(s)
	assert.True(t, hasField(errs, "server.walk_concurrency"))
}

func TestValidateServerConfig_WalkConcurrency_ZeroIsValid(t *testing.T) {
	t.Parallel()

	s := DefaultServerConfig()
	s.WalkConcurrency = 0

	errs := ValidateServerConfig(s)
	assert.False(t, hasField(errs, "server.walk_concurrency"), "0 means GOMAXPROCS, not an error")
}

func TestValidateServerConfig_LogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"error", false},
		{"", false},
		{"trace", true},
		{"INFO", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()

			s := DefaultServerConfig()
			s.LogLevel = tt.level

			errs := ValidateServerConfig(s)
			assert.Equal(t, tt.wantErr, hasField(errs, "server.log_level"))
		})
	}
}

func TestValidateServerConfig_LogFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format  string
		wantErr bool
	}{
		{"text", false},
		{"json", false},
		{"", false},
		{"yaml", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			s := DefaultServerConfig()
			s.LogFormat = tt.format

			errs := ValidateServerConfig(s)
			assert.Equal(t, tt.wantErr, hasField(errs, "server.log_format"))
		})
	}
}

func TestHasErrors_OnlyWarnings(t *testing.T) {
	t.Parallel()

	errs := []ValidationError{
		{Severity: "warning", Field: "server.completed_retention_secs", Message: "ordering"},
	}
	assert.False(t, HasErrors(errs))
}

func TestHasErrors_Empty(t *testing.T) {
	t.Parallel()

	assert.False(t, HasErrors(nil))
}

func TestHasErrors_MixedSeverity(t *testing.T) {
	t.Parallel()

	errs := []ValidationError{
		{Severity: "warning", Field: "a"},
		{Severity: "error", Field: "b"},
	}
	assert.True(t, HasErrors(errs))
}

// hasField reports whether errs contains an entry for the given field name.
func hasField(errs []ValidationError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}
