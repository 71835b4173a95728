package config

import (
	"os"
	"strconv"
)

// Environment variable name constants for FSSEARCHD_ prefixed overrides.
const (
	EnvDefaultMaxResults = "FSSEARCHD_DEFAULT_MAX_RESULTS"
	EnvMaxResultsCeiling = "FSSEARCHD_MAX_RESULTS_CEILING"
	EnvNoIgnore          = "FSSEARCHD_NO_IGNORE"
	EnvWalkConcurrency   = "FSSEARCHD_WALK_CONCURRENCY"
	EnvLogLevel          = "FSSEARCHD_LOG_LEVEL"
	EnvLogFormat         = "FSSEARCHD_LOG_FORMAT"
)

// buildEnvMap reads FSSEARCHD_* environment variables and returns a flat map
// suitable for use with a koanf confmap provider. Only non-empty env vars
// that parse successfully are included. Invalid numeric/boolean values are
// silently skipped so that a bad env var does not block the entire
// resolution pipeline.
func buildEnvMap() map[string]any {
	m := make(map[string]any)

	if v := os.Getenv(EnvDefaultMaxResults); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			m["default_max_results"] = n
		}
	}
	if v := os.Getenv(EnvMaxResultsCeiling); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			m["max_results_ceiling"] = n
		}
	}
	if v := os.Getenv(EnvNoIgnore); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			m["no_ignore"] = b
		}
	}
	if v := os.Getenv(EnvWalkConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			m["walk_concurrency"] = n
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		m["log_level"] = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		m["log_format"] = v
	}

	return m
}
