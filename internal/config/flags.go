package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// FlagValues collects all parsed global flag values from the CLI. This
// struct is populated by BindFlags and passed to Resolve as the highest
// precedence configuration layer.
type FlagValues struct {
	ConfigFile      string
	Dir             string
	DefaultMaxResults int
	MaxResultsCeiling int
	NoIgnore        bool
	WalkConcurrency int
	LogLevel        string
	LogFormat       string
	Verbose         bool
	Quiet           bool
}

// BindFlags registers all global persistent flags on the given Cobra command
// and returns a FlagValues pointer that will be populated when the command is
// executed. Callers should access the returned struct after flag parsing.
func BindFlags(cmd *cobra.Command) *FlagValues {
	fv := &FlagValues{}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&fv.ConfigFile, "config", "c", "", "path to fssearchd.toml (defaults to discovery in --dir)")
	pf.StringVarP(&fv.Dir, "dir", "d", ".", "directory to search for fssearchd.toml when --config is not set")
	pf.IntVar(&fv.DefaultMaxResults, "default-max-results", 0, "result cap applied when a caller omits max_results")
	pf.IntVar(&fv.MaxResultsCeiling, "max-results-ceiling", 0, "hard ceiling a caller-specified max_results is clamped to")
	pf.BoolVar(&fv.NoIgnore, "no-ignore", false, "disable all ignore sources by default")
	pf.IntVar(&fv.WalkConcurrency, "walk-concurrency", 0, "parallel walk workers (0 = GOMAXPROCS)")
	pf.StringVar(&fv.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&fv.LogFormat, "log-format", "", "log output format: text, json")
	pf.BoolVarP(&fv.Verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&fv.Quiet, "quiet", "q", false, "suppress all output except errors")

	return fv
}

// ValidateFlags checks the parsed flag values for correctness and mutual
// exclusion. Call this from PersistentPreRunE after Cobra has parsed the
// flags.
func ValidateFlags(fv *FlagValues, cmd *cobra.Command) error {
	if fv.Verbose && fv.Quiet {
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	}

	if fv.LogLevel != "" {
		switch fv.LogLevel {
		case "debug", "info", "warn", "error":
			// valid
		default:
			return fmt.Errorf("--log-level: invalid value %q (allowed: debug, info, warn, error)", fv.LogLevel)
		}
	}

	if fv.LogFormat != "" {
		switch fv.LogFormat {
		case "text", "json":
			// valid
		default:
			return fmt.Errorf("--log-format: invalid value %q (allowed: text, json)", fv.LogFormat)
		}
	}

	if fv.ConfigFile != "" {
		info, err := os.Stat(fv.ConfigFile)
		if err != nil {
			return fmt.Errorf("--config: %w", err)
		}
		if info.IsDir() {
			return fmt.Errorf("--config: %s is a directory", fv.ConfigFile)
		}
	}

	return nil
}

// ToCLIFlagMap converts the explicitly-set flags in fv into a flat map
// suitable for Resolve's CLIFlags option. Only flags the user actually
// passed (per cmd.Flags().Changed) are included, so unset flags fall
// through to lower-precedence layers instead of clobbering them with zero
// values.
func ToCLIFlagMap(fv *FlagValues, cmd *cobra.Command) map[string]any {
	m := make(map[string]any)
	changed := cmd.Flags().Changed

	if changed("default-max-results") {
		m["default_max_results"] = fv.DefaultMaxResults
	}
	if changed("max-results-ceiling") {
		m["max_results_ceiling"] = fv.MaxResultsCeiling
	}
	if changed("no-ignore") {
		m["no_ignore"] = fv.NoIgnore
	}
	if changed("walk-concurrency") {
		m["walk_concurrency"] = fv.WalkConcurrency
	}
	if changed("log-level") {
		m["log_level"] = fv.LogLevel
	}
	if changed("log-format") {
		m["log_format"] = fv.LogFormat
	}
	if fv.Verbose {
		m["log_level"] = "debug"
	}
	if fv.Quiet {
		m["log_level"] = "error"
	}

	return m
}
