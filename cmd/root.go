// Package cmd contains the CLI commands for the lessonlint application.
package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd *cobra.Command

// Global flag state shared by every subcommand.
var (
	verbose    bool
	jsonOutput bool
	rootDir    string
	configPath string
)

func init() {
	rootCmd = BuildCommandTree(nil, nil)
}

// GetVerbose returns the current verbose flag state.
func GetVerbose() bool {
	return verbose
}

// GetJSON reports whether machine-readable output was requested.
func GetJSON() bool {
	return jsonOutput
}

// GetRoot returns the --root flag value, empty when unset.
func GetRoot() string {
	return rootDir
}

// GetConfig returns the --config flag value, empty when unset.
func GetConfig() string {
	return configPath
}

// NewRootCmd creates a new root command instance.
// This is useful for testing to get a fresh command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lessonlint",
		Short: "Validate a curriculum index and its lesson documents",
		Long: "lessonlint checks that a curriculum index and the Markdown lessons it references " +
			"are consistent and well-formed before the curriculum is published.",
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.PersistentFlags().StringVar(&rootDir, "root", "", "Project directory (default: nearest directory with index.json or .lessonlint.yaml)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (default: <root>/.lessonlint.yaml)")

	return cmd
}

// ExecuteContext runs the CLI against the real filesystem with the given
// context.
func ExecuteContext(ctx context.Context) error {
	return ExecuteContextImpl(ctx, os.Getwd, os.Stderr)
}

// ExecuteContextImpl runs the project command tree and flushes the project
// logger once the command returns.
func ExecuteContextImpl(ctx context.Context, getwd func() (string, error), stderr io.Writer) error {
	p := &projectWiring{getwd: getwd, stderr: stderr}
	defer p.Sync()
	return BuildCommandTree(p, p).ExecuteContext(ctx)
}

// NewProjectCmd builds a command tree wired to the project found from getwd
// and the global flags. Diagnostics are logged to stderr.
func NewProjectCmd(getwd func() (string, error), stderr io.Writer) *cobra.Command {
	p := &projectWiring{getwd: getwd, stderr: stderr}
	return BuildCommandTree(p, p)
}
