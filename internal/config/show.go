package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ShowOptions controls the rendering of a resolved server configuration.
type ShowOptions struct {
	// Server is the fully resolved configuration to display.
	Server *ServerConfig

	// Sources maps flat field names to their origin layer.
	Sources SourceMap
}

// showField pairs a TOML key with a renderable value for ordered output.
type showField struct {
	key   string
	value string
}

// ShowServerConfig renders a resolved server configuration as annotated
// TOML. Each field is printed with an inline comment indicating which
// configuration layer provided its value. The output is human-readable and
// approximately valid TOML (inline comments are not part of the TOML spec
// but are widely supported by editors and tooling).
func ShowServerConfig(opts ShowOptions) string {
	s := opts.Server
	fields := []showField{
		{"default_max_results", fmt.Sprintf("%d", s.DefaultMaxResults)},
		{"max_results_ceiling", fmt.Sprintf("%d", s.MaxResultsCeiling)},
		{"first_result_wait_ms", fmt.Sprintf("%d", s.FirstResultWaitMs)},
		{"result_buffer_size", fmt.Sprintf("%d", s.ResultBufferSize)},
		{"max_detailed_errors", fmt.Sprintf("%d", s.MaxDetailedErrors)},
		{"last_read_throttle_ms", fmt.Sprintf("%d", s.LastReadThrottleMs)},
		{"last_read_throttle_matches", fmt.Sprintf("%d", s.LastReadThrottleMatches)},
		{"sweep_interval_secs", fmt.Sprintf("%d", s.SweepIntervalSecs)},
		{"active_retention_secs", fmt.Sprintf("%d", s.ActiveRetentionSecs)},
		{"completed_retention_secs", fmt.Sprintf("%d", s.CompletedRetentionSecs)},
		{"walk_concurrency", fmt.Sprintf("%d", s.WalkConcurrency)},
		{"no_ignore", fmt.Sprintf("%t", s.NoIgnore)},
		{"log_level", fmt.Sprintf("%q", s.LogLevel)},
		{"log_format", fmt.Sprintf("%q", s.LogFormat)},
	}

	var b strings.Builder
	b.WriteString("[server]\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "%-28s = %-12s # %s\n", f.key, f.value, sourceLabel(opts.Sources, f.key))
	}
	return b.String()
}

// ShowServerConfigJSON serializes the resolved server configuration to
// indented JSON. An error is returned only if marshalling fails, which
// should not happen for well-formed ServerConfig values.
func ShowServerConfigJSON(s *ServerConfig) (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal server config to JSON: %w", err)
	}
	return string(data), nil
}

// sourceLabel returns the Source.String() for a given flat key, defaulting
// to "default" when the key is absent from the SourceMap.
func sourceLabel(src SourceMap, key string) string {
	if s, ok := src[key]; ok {
		return s.String()
	}
	return "default"
}
