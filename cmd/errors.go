package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	ExitOK = 0
	// ExitFailure covers error-level findings and any other failure.
	ExitFailure = 1
	// ExitIndexUnreadable means the index could not be loaded, so no
	// report was produced.
	ExitIndexUnreadable = 2
)

// ErrNotInProject is returned by commands that were built without a project.
var ErrNotInProject = errors.New("no curriculum project configured")

// FindingsDetectedError is returned when check reports at least one error.
type FindingsDetectedError struct {
	Errors   int
	Warnings int
}

// Error implements the error interface.
func (e *FindingsDetectedError) Error() string {
	return fmt.Sprintf("check found %d errors, %d warnings", e.Errors, e.Warnings)
}

// ExitCode returns the exit code for failed validation (always 1).
func (e *FindingsDetectedError) ExitCode() int {
	return ExitFailure
}

// IndexLoadError is returned when the index cannot be read or parsed. No
// report is produced.
type IndexLoadError struct {
	Err error
}

// Error implements the error interface.
func (e *IndexLoadError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying load error.
func (e *IndexLoadError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code for an unloadable index (always 2).
func (e *IndexLoadError) ExitCode() int {
	return ExitIndexUnreadable
}

// ExitCoder is implemented by errors that carry a specific process exit code.
type ExitCoder interface {
	ExitCode() int
}

// ExitCodeFromError returns the appropriate exit code for an error.
// nil returns 0, ExitCoder errors return their code, all others return 1.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitOK
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitFailure
}

// ContextError adds operation and path context to an underlying error.
type ContextError struct {
	Op   string
	Path string
	Err  error
}

// Error returns the formatted error string with context.
func (e *ContextError) Error() string {
	if e.Op != "" && e.Path != "" {
		return e.Op + ": " + e.Path + ": " + e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + e.Err.Error()
	}
	if e.Path != "" {
		return e.Path + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ContextError) Unwrap() error {
	return e.Err
}

// FormatError formats an error with the "lessonlint: " prefix and trailing
// newline.
func FormatError(err error) string {
	return fmt.Sprintf("lessonlint: %s\n", err.Error())
}

// RunCLI executes the command with the given args, writing output to stdout
// and errors to stderr. It returns the appropriate exit code.
func RunCLI(cmd *cobra.Command, args []string, stdout io.Writer, stderr io.Writer) int {
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err != nil {
		fmt.Fprint(stderr, FormatError(err))
		return ExitCodeFromError(err)
	}
	return ExitOK
}
