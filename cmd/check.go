package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// Severity represents the severity level of a check finding.
type Severity string

const (
	// SeverityError represents an error-level finding.
	SeverityError Severity = "error"
	// SeverityWarning represents a warning-level finding.
	SeverityWarning Severity = "warning"
)

// CheckFinding represents a single finding from the check command.
type CheckFinding struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Path     string   `json:"path"`
}

// CheckResult holds the outcome of a check run.
type CheckResult struct {
	Lessons  int
	Findings []CheckFinding
}

// CheckRunner defines the interface for running curriculum checks.
type CheckRunner interface {
	Check(ctx context.Context) (*CheckResult, error)
}

// runCheckAndReport runs the checker and formats findings as JSON or
// human-readable text.
func runCheckAndReport(cmd *cobra.Command, runner CheckRunner, asJSON bool) error {
	result, err := runner.Check(cmd.Context())
	if err != nil {
		return err
	}
	return report(cmd.OutOrStdout(), result, asJSON)
}

// NewCheckCmd creates the check command with the given runner.
func NewCheckCmd(runner CheckRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "check",
		Aliases:      []string{"validate"},
		Short:        "Validate the curriculum index and lesson documents",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return ErrNotInProject
			}
			return runCheckAndReport(cmd, runner, GetJSON())
		},
	}

	return cmd
}
