package config

import "fmt"

// ValidateServerConfig checks a resolved ServerConfig for internally
// inconsistent or out-of-range values and returns every problem found
// rather than stopping at the first one, so a caller can report the full
// set in one pass (e.g. `fssearchd config show`).
func ValidateServerConfig(s *ServerConfig) []ValidationError {
	var errs []ValidationError

	if s.DefaultMaxResults <= 0 {
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "server.default_max_results",
			Message:  "must be positive",
			Suggest:  "set server.default_max_results to a positive integer, e.g. 10000",
		})
	}

	if s.MaxResultsCeiling <= 0 {
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "server.max_results_ceiling",
			Message:  "must be positive",
			Suggest:  "set server.max_results_ceiling to a positive integer, e.g. 100000",
		})
	}

	if s.DefaultMaxResults > 0 && s.MaxResultsCeiling > 0 && s.DefaultMaxResults > s.MaxResultsCeiling {
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "server.default_max_results",
			Message:  fmt.Sprintf("default (%d) exceeds ceiling (%d)", s.DefaultMaxResults, s.MaxResultsCeiling),
			Suggest:  "lower default_max_results or raise max_results_ceiling",
		})
	}

	if s.FirstResultWaitMs < 0 {
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "server.first_result_wait_ms",
			Message:  "must not be negative",
		})
	}

	if s.ResultBufferSize <= 0 {
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "server.result_buffer_size",
			Message:  "must be positive",
			Suggest:  "the upstream design uses 50",
		})
	}

	if s.MaxDetailedErrors < 0 {
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "server.max_detailed_errors",
			Message:  "must not be negative",
		})
	}

	if s.LastReadThrottleMs < 0 || s.LastReadThrottleMatches < 0 {
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "server.last_read_throttle_ms",
			Message:  "throttle values must not be negative",
		})
	}

	if s.SweepIntervalSecs <= 0 {
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "server.sweep_interval_secs",
			Message:  "must be positive",
		})
	}

	if s.ActiveRetentionSecs <= 0 {
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "server.active_retention_secs",
			Message:  "must be positive",
		})
	}

	if s.CompletedRetentionSecs <= 0 {
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "server.completed_retention_secs",
			Message:  "must be positive",
		})
	}

	if s.CompletedRetentionSecs > s.ActiveRetentionSecs {
		errs = append(errs, ValidationError{
			Severity: "warning",
			Field:    "server.completed_retention_secs",
			Message:  "completed-session retention exceeds active-session retention",
			Suggest:  "a finished session normally gets swept sooner than a running one",
		})
	}

	if s.WalkConcurrency < 0 {
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "server.walk_concurrency",
			Message:  "must not be negative (0 means GOMAXPROCS)",
		})
	}

	switch s.LogLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "server.log_level",
			Message:  fmt.Sprintf("invalid value %q", s.LogLevel),
			Suggest:  "allowed: debug, info, warn, error",
		})
	}

	switch s.LogFormat {
	case "", "text", "json":
		// valid
	default:
		errs = append(errs, ValidationError{
			Severity: "error",
			Field:    "server.log_format",
			Message:  fmt.Sprintf("invalid value %q", s.LogFormat),
			Suggest:  "allowed: text, json",
		})
	}

	return errs
}

// HasErrors reports whether any entry in errs has Severity "error" (as
// opposed to only "warning" entries, which do not block startup).
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}
