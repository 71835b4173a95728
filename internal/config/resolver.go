package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/confmap"
	koanf "github.com/knadh/koanf/v2"
)

// ResolveOptions configures the multi-source configuration resolution.
type ResolveOptions struct {
	// ConfigFile is an explicit fssearchd.toml path (--config flag). When
	// set, TargetDir-based discovery is skipped.
	ConfigFile string

	// TargetDir is the directory to search for fssearchd.toml when
	// ConfigFile is empty. Defaults to "." if empty.
	TargetDir string

	// GlobalConfigPath overrides the default ~/.config/fssearchd/config.toml.
	// Useful for testing.
	GlobalConfigPath string

	// CLIFlags holds explicit CLI flag overrides (highest precedence).
	// Keys are flat ServerConfig field names: "default_max_results",
	// "log_level", etc.
	CLIFlags map[string]any
}

// ResolvedConfig is the result of multi-source configuration resolution.
type ResolvedConfig struct {
	// Server is the final merged server configuration.
	Server *ServerConfig

	// Sources tracks which layer each field value came from.
	Sources SourceMap
}

// Resolve runs the 5-layer configuration resolution pipeline:
//  1. Built-in defaults
//  2. Global config (~/.config/fssearchd/config.toml)
//  3. Repository config (fssearchd.toml in TargetDir, or ConfigFile)
//  4. Environment variables (FSSEARCHD_* prefix)
//  5. CLI flags (highest precedence)
//
// Missing config files are silently ignored. Invalid files return errors.
func Resolve(opts ResolveOptions) (*ResolvedConfig, error) {
	slog.Debug("resolving config",
		"targetDir", opts.TargetDir,
		"configFile", opts.ConfigFile,
	)

	k := koanf.New(".")
	sources := make(SourceMap)

	// ── Layer 1: built-in defaults ─────────────────────────────────────────
	defaults := DefaultServerConfig()
	if err := loadLayer(k, serverToFlatMap(defaults), sources, SourceDefault); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// ── Layer 2: global config ─────────────────────────────────────────────
	globalPath := opts.GlobalConfigPath
	if globalPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath = filepath.Join(home, ".config", "fssearchd", "config.toml")
		}
	}
	if globalPath != "" {
		if err := loadFileLayer(k, globalPath, sources, SourceGlobal); err != nil {
			return nil, err
		}
	}

	// ── Layer 3: repo config OR explicit config file ───────────────────────
	repoPath := opts.ConfigFile
	if repoPath == "" {
		targetDir := opts.TargetDir
		if targetDir == "" {
			targetDir = "."
		}
		discovered, err := DiscoverRepoConfig(targetDir)
		if err != nil {
			return nil, fmt.Errorf("discovering repo config: %w", err)
		}
		repoPath = discovered
	}
	if repoPath != "" {
		if err := loadFileLayer(k, repoPath, sources, SourceRepo); err != nil {
			return nil, err
		}
	}

	// ── Layer 4: environment variables ─────────────────────────────────────
	envMap := buildEnvMap()
	if len(envMap) > 0 {
		if err := loadLayer(k, envMap, sources, SourceEnv); err != nil {
			return nil, fmt.Errorf("loading env vars: %w", err)
		}
	}

	// ── Layer 5: CLI flags ──────────────────────────────────────────────────
	if len(opts.CLIFlags) > 0 {
		if err := loadLayer(k, opts.CLIFlags, sources, SourceFlag); err != nil {
			return nil, fmt.Errorf("loading CLI flags: %w", err)
		}
	}

	final := flatMapToServer(k)

	slog.Debug("config resolved",
		"defaultMaxResults", final.DefaultMaxResults,
		"maxResultsCeiling", final.MaxResultsCeiling,
		"logLevel", final.LogLevel,
	)

	return &ResolvedConfig{
		Server:  final,
		Sources: sources,
	}, nil
}

// loadFileLayer loads the "server" table from a TOML config file, merges its
// explicitly-set fields into k, and records source attribution. A missing
// file is silently skipped. Parse errors and I/O errors are returned.
func loadFileLayer(k *koanf.Koanf, path string, sources SourceMap, src Source) error {
	flat, err := extractServerFlat(path)
	if err != nil {
		return fmt.Errorf("loading config %s: %w", path, err)
	}
	if flat == nil {
		return nil
	}

	slog.Debug("loading server config", "path", path, "source", src.String())
	return loadLayer(k, flat, sources, src)
}

// extractServerFlat parses a TOML config file into a raw Go map and returns a
// flat koanf-compatible map containing only the fields explicitly present in
// the TOML's [server] table. Returns nil if the file does not exist or has
// no [server] table.
func extractServerFlat(path string) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			slog.Debug("config file not found, skipping", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	serverRaw, ok := raw["server"].(map[string]interface{})
	if !ok {
		slog.Debug("no [server] section in config", "path", path)
		return nil, nil
	}

	return flattenServerRaw(serverRaw), nil
}

// flattenServerRaw converts a raw TOML [server] map (as decoded by
// BurntSushi/toml into map[string]interface{}) into a flat koanf-compatible
// map. Only fields explicitly present in the raw map are included.
func flattenServerRaw(raw map[string]interface{}) map[string]any {
	flat := make(map[string]any)

	intKeys := []string{
		"default_max_results", "max_results_ceiling", "first_result_wait_ms",
		"result_buffer_size", "max_detailed_errors", "last_read_throttle_ms",
		"last_read_throttle_matches", "sweep_interval_secs",
		"active_retention_secs", "completed_retention_secs", "walk_concurrency",
	}
	for _, key := range intKeys {
		if v, ok := raw[key]; ok {
			flat[key] = toInt(v)
		}
	}

	boolKeys := []string{"no_ignore"}
	for _, key := range boolKeys {
		if v, ok := raw[key]; ok {
			flat[key] = v
		}
	}

	stringKeys := []string{"log_level", "log_format"}
	for _, key := range stringKeys {
		if v, ok := raw[key]; ok {
			flat[key] = v
		}
	}

	return flat
}

// toInt normalizes a raw TOML-decoded numeric value (BurntSushi/toml decodes
// integers as int64 in raw maps) to int.
func toInt(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

// loadLayer merges a flat map into k and marks every key in the map as
// originating from src. This approach correctly attributes source even when
// a later layer provides the same value as a prior layer (e.g. CLI flag
// setting the same value as an env var).
func loadLayer(k *koanf.Koanf, m map[string]any, sources SourceMap, src Source) error {
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return fmt.Errorf("merge layer %s: %w", src.String(), err)
	}
	for key := range m {
		sources[key] = src
	}
	return nil
}

// serverToFlatMap converts a ServerConfig to a flat map for koanf's confmap
// provider. All fields are included (used for the defaults layer, where
// every field has an authoritative default value).
func serverToFlatMap(s *ServerConfig) map[string]any {
	return map[string]any{
		"default_max_results":        s.DefaultMaxResults,
		"max_results_ceiling":        s.MaxResultsCeiling,
		"first_result_wait_ms":       s.FirstResultWaitMs,
		"result_buffer_size":         s.ResultBufferSize,
		"max_detailed_errors":        s.MaxDetailedErrors,
		"last_read_throttle_ms":      s.LastReadThrottleMs,
		"last_read_throttle_matches": s.LastReadThrottleMatches,
		"sweep_interval_secs":        s.SweepIntervalSecs,
		"active_retention_secs":      s.ActiveRetentionSecs,
		"completed_retention_secs":   s.CompletedRetentionSecs,
		"walk_concurrency":           s.WalkConcurrency,
		"no_ignore":                  s.NoIgnore,
		"log_level":                  s.LogLevel,
		"log_format":                 s.LogFormat,
	}
}

// flatMapToServer converts the current koanf state into a ServerConfig.
func flatMapToServer(k *koanf.Koanf) *ServerConfig {
	return &ServerConfig{
		DefaultMaxResults:       k.Int("default_max_results"),
		MaxResultsCeiling:       k.Int("max_results_ceiling"),
		FirstResultWaitMs:       k.Int("first_result_wait_ms"),
		ResultBufferSize:        k.Int("result_buffer_size"),
		MaxDetailedErrors:       k.Int("max_detailed_errors"),
		LastReadThrottleMs:      k.Int("last_read_throttle_ms"),
		LastReadThrottleMatches: k.Int("last_read_throttle_matches"),
		SweepIntervalSecs:       k.Int("sweep_interval_secs"),
		ActiveRetentionSecs:     k.Int("active_retention_secs"),
		CompletedRetentionSecs:  k.Int("completed_retention_secs"),
		WalkConcurrency:         k.Int("walk_concurrency"),
		NoIgnore:                k.Bool("no_ignore"),
		LogLevel:                k.String("log_level"),
		LogFormat:               k.String("log_format"),
	}
}

// availableServerKeys lists every known ServerConfig TOML key. Nothing in
// the package calls it at present.
func availableServerKeys() []string {
	keys := make([]string, 0, len(serverToFlatMap(&ServerConfig{})))
	for k := range serverToFlatMap(&ServerConfig{}) {
		keys = append(keys, k)
	}
	return keys
}
