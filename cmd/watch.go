package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ChangeWatcher delivers batches of changed project paths until ctx is done.
type ChangeWatcher interface {
	Watch(ctx context.Context, onChange func(paths []string)) error
}

// NewWatchCmd creates the watch command. It validates once, then again
// after every batch of changes to the index or lesson documents.
func NewWatchCmd(runner CheckRunner, watcher ChangeWatcher) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "watch",
		Short:        "Re-validate whenever the index or a lesson changes",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil || watcher == nil {
				return ErrNotInProject
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			asJSON := GetJSON()

			run := func() {
				result, err := runner.Check(ctx)
				if err != nil {
					fmt.Fprint(errOut, FormatError(err))
					return
				}
				// Findings are reported; they do not stop the loop.
				_ = report(out, result, asJSON)
			}

			run()
			err := watcher.Watch(ctx, func(paths []string) {
				if !asJSON {
					fmt.Fprintf(out, "\nChanged: %s\n\n", strings.Join(paths, ", "))
				}
				run()
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	return cmd
}
