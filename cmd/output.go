package cmd

import (
	"encoding/json"
	"fmt"
	"io"
)

// writeJSON encodes v as one line of JSON to w. HTML escaping is off so
// Markdown snippets in messages come through unchanged.
func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(w, "{\"error\":%q}\n", err.Error())
	}
}

// checkJSONResponse is the JSON output structure for the check command.
type checkJSONResponse struct {
	Lessons  int            `json:"lessons"`
	Findings []CheckFinding `json:"findings"`
	Summary  struct {
		Errors   int `json:"errors"`
		Warnings int `json:"warnings"`
	} `json:"summary"`
}

// countBySeverity counts errors and warnings in a slice of findings.
func countBySeverity(findings []CheckFinding) (errCount, warnCount int) {
	for _, f := range findings {
		if f.Severity == SeverityError {
			errCount++
		} else {
			warnCount++
		}
	}
	return
}

// formatCheckJSON writes the result as JSON to w.
func formatCheckJSON(w io.Writer, result *CheckResult, errCount, warnCount int) {
	findings := result.Findings
	if findings == nil {
		findings = []CheckFinding{}
	}
	out := checkJSONResponse{Lessons: result.Lessons, Findings: findings}
	out.Summary.Errors = errCount
	out.Summary.Warnings = warnCount
	writeJSON(w, out)
}

// formatCheckHuman writes the counts followed by the error and warning
// blocks. Each block is omitted when empty.
func formatCheckHuman(w io.Writer, result *CheckResult, errCount, warnCount int) {
	fmt.Fprintf(w, "Lessons: %d\n", result.Lessons)
	fmt.Fprintf(w, "Errors: %d\n", errCount)
	fmt.Fprintf(w, "Warnings: %d\n", warnCount)

	writeBlock := func(title string, sev Severity, n int) {
		if n == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s:\n", title)
		for _, f := range result.Findings {
			if f.Severity == sev {
				fmt.Fprintf(w, "- %s\n", f.Message)
			}
		}
	}
	writeBlock("Errors", SeverityError, errCount)
	writeBlock("Warnings", SeverityWarning, warnCount)
}

// report formats a result and returns a FindingsDetectedError when it
// contains errors. Warnings alone do not fail the run.
func report(w io.Writer, result *CheckResult, asJSON bool) error {
	errCount, warnCount := countBySeverity(result.Findings)

	if asJSON {
		formatCheckJSON(w, result, errCount, warnCount)
	} else {
		formatCheckHuman(w, result, errCount, warnCount)
	}

	if errCount > 0 {
		return &FindingsDetectedError{Errors: errCount, Warnings: warnCount}
	}
	return nil
}

