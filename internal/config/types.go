package config

// Config is the top-level configuration type parsed from a fssearchd.toml
// file. Unlike the teacher's named-profile model, a search server has one
// resolved limits object per process, so Config embeds ServerConfig
// directly under the top-level "server" table.
type Config struct {
	// Server holds the resolved server limits and behavior knobs. Access
	// via cfg.Server.
	Server ServerConfig `toml:"server"`
}

// ServerConfig defines every tunable limit and behavior knob for the search
// session core and its RPC surface. During resolution DefaultServerConfig is
// loaded as the lowest layer; a key set by any higher layer, even to zero,
// replaces the default.
type ServerConfig struct {
	// DefaultMaxResults is the result cap applied when a caller does not
	// specify max_results on start_search.
	DefaultMaxResults int `toml:"default_max_results"`

	// MaxResultsCeiling is the hard ceiling a caller-specified max_results
	// is clamped to, regardless of how high they ask.
	MaxResultsCeiling int `toml:"max_results_ceiling"`

	// FirstResultWaitMs bounds how long start_search blocks waiting for
	// either the first result or search completion before returning
	// whatever is available so far (ignored when sort_by is set, in which
	// case start_search always waits for full completion).
	FirstResultWaitMs int `toml:"first_result_wait_ms"`

	// ResultBufferSize is the number of results a single walk worker
	// accumulates locally before flushing into the shared result set.
	ResultBufferSize int `toml:"result_buffer_size"`

	// MaxDetailedErrors caps how many per-entry/per-file errors are stored
	// with full detail on a session; additional errors still increment the
	// error counter but are not retained individually.
	MaxDetailedErrors int `toml:"max_detailed_errors"`

	// LastReadThrottleMs and LastReadThrottleMatches together throttle how
	// often a busy walk updates a session's last-read timestamp: at most
	// once per LastReadThrottleMs milliseconds, or immediately once
	// LastReadThrottleMatches matches have accumulated since the last
	// update, whichever comes first.
	LastReadThrottleMs      int `toml:"last_read_throttle_ms"`
	LastReadThrottleMatches int `toml:"last_read_throttle_matches"`

	// SweepIntervalSecs is how often the background retention sweep runs.
	SweepIntervalSecs int `toml:"sweep_interval_secs"`

	// ActiveRetentionSecs and CompletedRetentionSecs are the no-read
	// eviction windows for still-running and finished sessions
	// respectively. Completed sessions are swept much sooner since no
	// further results are coming.
	ActiveRetentionSecs    int `toml:"active_retention_secs"`
	CompletedRetentionSecs int `toml:"completed_retention_secs"`

	// WalkConcurrency bounds the number of parallel directory-walk workers.
	// Zero means "use GOMAXPROCS".
	WalkConcurrency int `toml:"walk_concurrency"`

	// NoIgnore, when true, disables all five ignore sources uniformly by
	// default for sessions that do not explicitly override it.
	NoIgnore bool `toml:"no_ignore"`

	// LogLevel and LogFormat configure the ambient logger. Valid LogLevel
	// values: "debug", "info", "warn", "error". Valid LogFormat values:
	// "text", "json".
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}
