package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fssearchd/fssearchd/internal/config"
	"github.com/fssearchd/fssearchd/internal/pipeline"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect fssearchd configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the fully resolved server configuration",
	Long: `Resolve configuration from every layer (defaults, global config,
repository config, environment variables, CLI flags) and print the result
as annotated TOML, with each field labelled by the layer that set it.`,
	RunE: runConfigShow,
}

func init() {
	configShowCmd.Flags().Bool("json", false, "output resolved configuration as JSON")
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	resolved, err := config.Resolve(config.ResolveOptions{
		ConfigFile: flagValues.ConfigFile,
		TargetDir:  flagValues.Dir,
		CLIFlags:   config.ToCLIFlagMap(flagValues, cmd),
	})
	if err != nil {
		return pipeline.NewError("resolving configuration", err)
	}

	jsonFlag, _ := cmd.Flags().GetBool("json")
	if jsonFlag {
		out, err := config.ShowServerConfigJSON(resolved.Server)
		if err != nil {
			return pipeline.NewError("rendering configuration", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), config.ShowServerConfig(config.ShowOptions{
		Server:  resolved.Server,
		Sources: resolved.Sources,
	}))

	if problems := config.ValidateServerConfig(resolved.Server); len(problems) > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		for _, p := range problems {
			fmt.Fprintln(cmd.OutOrStdout(), p.Error())
		}
	}
	return nil
}
