package config

// Source identifies which configuration layer provided a value.
// Higher values indicate higher precedence.
type Source int

const (
	// SourceDefault is the built-in fallback (lowest precedence).
	SourceDefault Source = iota
	// SourceGlobal is the user's global config (~/.config/fssearchd/config.toml).
	SourceGlobal
	// SourceRepo is the project-local fssearchd.toml in the target directory.
	SourceRepo
	// SourceEnv is an FSSEARCHD_* environment variable override.
	SourceEnv
	// SourceFlag is an explicit CLI flag (highest precedence).
	SourceFlag
)

// String returns the human-readable name of the source.
func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceGlobal:
		return "global"
	case SourceRepo:
		return "repo"
	case SourceEnv:
		return "env"
	case SourceFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// SourceMap tracks where each ServerConfig field value originated.
// Keys are flat field names like "default_max_results", "log_level".
type SourceMap map[string]Source
