package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/fssearchd/fssearchd/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandUse(t *testing.T) {
	assert.Equal(t, "fssearchd", rootCmd.Use)
}

func TestRootCommandShort(t *testing.T) {
	assert.Equal(t, "Streaming multi-session filesystem search core.", rootCmd.Short)
}

func TestRootCommandSilenceUsage(t *testing.T) {
	assert.True(t, rootCmd.SilenceUsage, "SilenceUsage must be true to avoid printing usage on errors")
}

func TestRootCommandSilenceErrors(t *testing.T) {
	assert.True(t, rootCmd.SilenceErrors, "SilenceErrors must be true for manual error handling")
}

func TestRootCommandHasVerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag, "root command must have --verbose persistent flag")
	assert.Equal(t, "v", flag.Shorthand)
}

func TestRootCommandHasQuietFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("quiet")
	require.NotNil(t, flag, "root command must have --quiet persistent flag")
	assert.Equal(t, "q", flag.Shorthand)
}

func TestRootCommandHasDirFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("dir")
	require.NotNil(t, flag, "root command must have --dir persistent flag")
	assert.Equal(t, "d", flag.Shorthand)
	assert.Equal(t, ".", flag.DefValue)
}

func TestRootCommandHasConfigFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag, "root command must have --config persistent flag")
	assert.Equal(t, "c", flag.Shorthand)
}

func TestRootCommandHasDefaultMaxResultsFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("default-max-results")
	require.NotNil(t, flag, "root command must have --default-max-results persistent flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRootCommandHasMaxResultsCeilingFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("max-results-ceiling")
	require.NotNil(t, flag, "root command must have --max-results-ceiling persistent flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRootCommandHasNoIgnoreFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("no-ignore")
	require.NotNil(t, flag, "root command must have --no-ignore persistent flag")
	assert.Equal(t, "false", flag.DefValue)
}

func TestRootCommandHasWalkConcurrencyFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("walk-concurrency")
	require.NotNil(t, flag, "root command must have --walk-concurrency persistent flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRootCommandHasLogLevelFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, flag, "root command must have --log-level persistent flag")
	assert.Equal(t, "", flag.DefValue)
}

func TestRootCommandHasLogFormatFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("log-format")
	require.NotNil(t, flag, "root command must have --log-format persistent flag")
	assert.Equal(t, "", flag.DefValue)
}

func TestExecuteWithHelp(t *testing.T) {
	// Running with --help should succeed (exit 0).
	rootCmd.SetArgs([]string{"--help"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	assert.Equal(t, int(pipeline.ExitSuccess), code)
	assert.Contains(t, buf.String(), "long-lived search core")
}

func TestExecuteHelpShowsAllFlags(t *testing.T) {
	rootCmd.SetArgs([]string{"--help"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	assert.Equal(t, int(pipeline.ExitSuccess), code)

	output := buf.String()
	expectedFlags := []string{
		"--config", "--dir", "--default-max-results", "--max-results-ceiling",
		"--no-ignore", "--walk-concurrency", "--log-level", "--log-format",
		"--verbose", "--quiet",
	}
	for _, flag := range expectedFlags {
		assert.Contains(t, output, flag, "help output should show %s flag", flag)
	}
}

func TestExecuteWithNoArgs(t *testing.T) {
	// Running with no args should print help and succeed.
	rootCmd.SetArgs([]string{})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	code := Execute()
	assert.Equal(t, int(pipeline.ExitSuccess), code)
}

func TestExecuteWithUnknownFlag(t *testing.T) {
	// Running with an unknown flag should return a non-zero exit code.
	rootCmd.SetArgs([]string{"--nonexistent-flag"})
	defer rootCmd.SetArgs(nil)

	buf := new(bytes.Buffer)
	rootCmd.SetErr(buf)
	defer rootCmd.SetErr(nil)

	code := Execute()
	assert.Equal(t, int(pipeline.ExitError), code)
}

func TestRootCmdReturnsCommand(t *testing.T) {
	cmd := RootCmd()
	require.NotNil(t, cmd)
	assert.Equal(t, "fssearchd", cmd.Use)
}

func TestRootCommandLongDescription(t *testing.T) {
	assert.Contains(t, rootCmd.Long, "search core")
}

func TestGlobalFlagsReturnsValues(t *testing.T) {
	fv := GlobalFlags()
	require.NotNil(t, fv, "GlobalFlags() should return non-nil FlagValues")
}

func TestExtractExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error returns ExitSuccess",
			err:  nil,
			want: int(pipeline.ExitSuccess),
		},
		{
			name: "generic error returns ExitError",
			err:  errors.New("something went wrong"),
			want: int(pipeline.ExitError),
		},
		{
			name: "SearchError with ExitError code",
			err:  pipeline.NewError("fatal error", errors.New("cause")),
			want: int(pipeline.ExitError),
		},
		{
			name: "not found error returns ExitError",
			err:  pipeline.NewNotFoundError("session not found"),
			want: int(pipeline.ExitError),
		},
		{
			name: "wrapped SearchError preserves exit code",
			err:  fmt.Errorf("command failed: %w", pipeline.NewError("wrapped", nil)),
			want: int(pipeline.ExitError),
		},
		{
			name: "deeply wrapped SearchError preserves exit code",
			err:  fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", pipeline.NewError("deep", nil))),
			want: int(pipeline.ExitError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := extractExitCode(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractExitCode_NilReturnsZero(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, extractExitCode(nil))
}

func TestExtractExitCode_GenericErrorReturnsOne(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1, extractExitCode(errors.New("generic")))
}

func TestExtractExitCode_WrappedGenericErrorReturnsOne(t *testing.T) {
	t.Parallel()

	// A generic error wrapped with fmt.Errorf (no SearchError in the chain)
	// should still return ExitError (1).
	wrappedGeneric := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", errors.New("root")))
	assert.Equal(t, 1, extractExitCode(wrappedGeneric))
}

func TestExtractExitCode_NotFoundErrorReturnsOne(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, extractExitCode(pipeline.NewNotFoundError("session not found")))
}
