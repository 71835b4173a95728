package config

// DefaultServerConfig returns a new ServerConfig populated with the built-in
// defaults matching the upstream search-session design's constants. It is
// used as the base layer of Resolve when no fssearchd.toml is present and as
// the fallback for any field a config file or flag leaves unset.
//
// Callers receive a fresh copy each time; mutating the returned value does
// not affect subsequent calls.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		DefaultMaxResults:       10_000,
		MaxResultsCeiling:       100_000,
		FirstResultWaitMs:       5_000,
		ResultBufferSize:        50,
		MaxDetailedErrors:       100,
		LastReadThrottleMs:      100,
		LastReadThrottleMatches: 50,
		SweepIntervalSecs:       60,
		ActiveRetentionSecs:     300,
		CompletedRetentionSecs:  30,
		WalkConcurrency:         0,
		NoIgnore:                false,
		LogLevel:                "info",
		LogFormat:               "text",
	}
}
