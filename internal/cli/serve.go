package cli

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fssearchd/fssearchd/internal/buildinfo"
	"github.com/fssearchd/fssearchd/internal/config"
	"github.com/fssearchd/fssearchd/internal/mcpserver"
	"github.com/fssearchd/fssearchd/internal/pipeline"
	"github.com/fssearchd/fssearchd/internal/search"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP search server over stdio",
	Long: `Resolve configuration from every layer (defaults, global config,
repository config, environment, flags), start the session registry's
retention sweep, and serve start_search/get_search_results/stop_search/
list_searches over the Model Context Protocol on stdio until the process
receives an interrupt.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	resolved, err := config.Resolve(config.ResolveOptions{
		ConfigFile: flagValues.ConfigFile,
		TargetDir:  flagValues.Dir,
		CLIFlags:   config.ToCLIFlagMap(flagValues, cmd),
	})
	if err != nil {
		return pipeline.NewError("resolving configuration", err)
	}
	if problems := config.ValidateServerConfig(resolved.Server); config.HasErrors(problems) {
		return pipeline.NewError("invalid configuration", joinValidationErrors(problems))
	}

	registry := search.NewRegistry(registryConfigFrom(resolved.Server))
	defer registry.Close()

	server := mcpserver.New(registry, "fssearchd", buildinfo.Version)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		return pipeline.NewError("mcp server exited", err)
	}
	return nil
}

func joinValidationErrors(problems []config.ValidationError) error {
	errs := make([]error, len(problems))
	for i, p := range problems {
		errs[i] = p
	}
	return errors.Join(errs...)
}

func registryConfigFrom(s *config.ServerConfig) search.RegistryConfig {
	return search.RegistryConfig{
		DefaultMaxResults:       s.DefaultMaxResults,
		MaxResultsCeiling:       s.MaxResultsCeiling,
		FirstResultWaitMs:       s.FirstResultWaitMs,
		ResultBufferSize:        s.ResultBufferSize,
		MaxDetailedErrors:       s.MaxDetailedErrors,
		LastReadThrottleMs:      s.LastReadThrottleMs,
		LastReadThrottleMatches: s.LastReadThrottleMatches,
		SweepIntervalSecs:       s.SweepIntervalSecs,
		ActiveRetentionSecs:     s.ActiveRetentionSecs,
		CompletedRetentionSecs:  s.CompletedRetentionSecs,
		WalkConcurrency:         s.WalkConcurrency,
	}
}
