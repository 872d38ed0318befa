package cmd

import "github.com/spf13/cobra"

// BuildCommandTree creates the root command with every subcommand wired to
// the given runner and watcher. Nil values produce commands that return
// ErrNotInProject.
func BuildCommandTree(runner CheckRunner, watcher ChangeWatcher) *cobra.Command {
	root := NewRootCmd()
	root.AddCommand(NewCheckCmd(runner))
	root.AddCommand(NewWatchCmd(runner, watcher))
	return root
}
