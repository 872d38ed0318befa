package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// mockCheckRunner is a test double for CheckRunner.
type mockCheckRunner struct {
	result *CheckResult
	err    error
	calls  int
}

func (m *mockCheckRunner) Check(ctx context.Context) (*CheckResult, error) {
	m.calls++
	return m.result, m.err
}

// checkJSONOutput is a test-only type for parsing JSON output from check --json.
type checkJSONOutput struct {
	Lessons  int                `json:"lessons"`
	Findings []checkJSONFinding `json:"findings"`
	Summary  struct {
		Errors   int `json:"errors"`
		Warnings int `json:"warnings"`
	} `json:"summary"`
}

type checkJSONFinding struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Path     string `json:"path"`
}

func mixedResult() *CheckResult {
	return &CheckResult{
		Lessons: 3,
		Findings: []CheckFinding{
			{Type: "missing_file", Severity: SeverityError, Message: "git/basics (chapters/02.md): referenced file not found.", Path: "chapters/02.md"},
			{Type: "link_label", Severity: SeverityWarning, Message: "git/intro (chapters/01.md): link text should match lesson title ([Basics](./02)) at line 4.", Path: "chapters/01.md"},
			{Type: "duplicate_id", Severity: SeverityError, Message: "Duplicate lesson id `intro`: a, b", Path: "chapters/01.md"},
		},
	}
}

func executeRoot(t *testing.T, runner CheckRunner, args ...string) (string, error) {
	t.Helper()
	root := BuildCommandTree(runner, nil)
	out := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckCmd_RegisteredWithRoot(t *testing.T) {
	found := false
	for _, sub := range rootCmd.Commands() {
		if sub.Name() == "check" {
			found = true
			break
		}
	}
	if !found {
		t.Error("check command not registered with root")
	}
}

func TestCheckCmd_NoFindings(t *testing.T) {
	runner := &mockCheckRunner{result: &CheckResult{Lessons: 2}}

	out, err := executeRoot(t, runner, "check")

	if err != nil {
		t.Fatalf("expected no error for clean check, got %v", err)
	}
	want := "Lessons: 2\nErrors: 0\nWarnings: 0\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestCheckCmd_ValidateAlias(t *testing.T) {
	runner := &mockCheckRunner{result: &CheckResult{}}

	if _, err := executeRoot(t, runner, "validate"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runner.calls != 1 {
		t.Errorf("runner called %d times, want 1", runner.calls)
	}
}

func TestCheckCmd_HumanReport(t *testing.T) {
	runner := &mockCheckRunner{result: mixedResult()}

	out, err := executeRoot(t, runner, "check")

	var fde *FindingsDetectedError
	if !errors.As(err, &fde) {
		t.Fatalf("expected FindingsDetectedError, got %v", err)
	}
	if fde.Errors != 2 || fde.Warnings != 1 {
		t.Errorf("counts = %d/%d, want 2/1", fde.Errors, fde.Warnings)
	}

	want := "Lessons: 3\n" +
		"Errors: 2\n" +
		"Warnings: 1\n" +
		"\nErrors:\n" +
		"- git/basics (chapters/02.md): referenced file not found.\n" +
		"- Duplicate lesson id `intro`: a, b\n" +
		"\nWarnings:\n" +
		"- git/intro (chapters/01.md): link text should match lesson title ([Basics](./02)) at line 4.\n"
	if out != want {
		t.Errorf("output =\n%s\nwant\n%s", out, want)
	}
}

func TestCheckCmd_WarningsOnlySucceeds(t *testing.T) {
	runner := &mockCheckRunner{result: &CheckResult{
		Lessons: 1,
		Findings: []CheckFinding{
			{Type: "fence_language", Severity: SeverityWarning, Message: "w"},
		},
	}}

	out, err := executeRoot(t, runner, "check")

	if err != nil {
		t.Fatalf("warnings alone should not fail, got %v", err)
	}
	if strings.Contains(out, "\nErrors:\n") {
		t.Errorf("errors block should be omitted, got:\n%s", out)
	}
	if !strings.Contains(out, "\nWarnings:\n- w\n") {
		t.Errorf("warnings block missing, got:\n%s", out)
	}
}

func TestCheckCmd_JSON(t *testing.T) {
	runner := &mockCheckRunner{result: mixedResult()}

	out, err := executeRoot(t, runner, "check", "--json")
	if ExitCodeFromError(err) != 1 {
		t.Fatalf("exit code = %d, want 1", ExitCodeFromError(err))
	}

	var got checkJSONOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if got.Lessons != 3 {
		t.Errorf("lessons = %d, want 3", got.Lessons)
	}
	if len(got.Findings) != 3 {
		t.Fatalf("findings = %d, want 3", len(got.Findings))
	}
	if got.Findings[0].Type != "missing_file" || got.Findings[0].Severity != "error" || got.Findings[0].Path != "chapters/02.md" {
		t.Errorf("first finding = %+v", got.Findings[0])
	}
	if got.Summary.Errors != 2 || got.Summary.Warnings != 1 {
		t.Errorf("summary = %+v, want 2 errors, 1 warning", got.Summary)
	}
}

func TestCheckCmd_JSON_EmptyFindingsIsArray(t *testing.T) {
	runner := &mockCheckRunner{result: &CheckResult{}}

	out, err := executeRoot(t, runner, "check", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"findings":[]`) {
		t.Errorf("expected empty findings array, got %s", out)
	}
}

func TestCheckCmd_RunnerError(t *testing.T) {
	loadErr := &IndexLoadError{Err: errors.New("failed to load index.json: not found")}
	runner := &mockCheckRunner{err: loadErr}

	out, err := executeRoot(t, runner, "check")

	if !errors.Is(err, loadErr) {
		t.Fatalf("error = %v, want load error", err)
	}
	if ExitCodeFromError(err) != 2 {
		t.Errorf("exit code = %d, want 2", ExitCodeFromError(err))
	}
	if out != "" {
		t.Errorf("no report expected on load failure, got %q", out)
	}
}

func TestCheckCmd_NilRunner(t *testing.T) {
	_, err := executeRoot(t, nil, "check")
	if !errors.Is(err, ErrNotInProject) {
		t.Errorf("error = %v, want ErrNotInProject", err)
	}
}

func TestCheckCmd_RejectsArguments(t *testing.T) {
	runner := &mockCheckRunner{result: &CheckResult{}}

	if _, err := executeRoot(t, runner, "check", "extra"); err == nil {
		t.Error("expected error for positional argument")
	}
	if runner.calls != 0 {
		t.Error("runner should not run when arguments are rejected")
	}
}

func TestCountBySeverity(t *testing.T) {
	errs, warns := countBySeverity(mixedResult().Findings)
	if errs != 2 || warns != 1 {
		t.Errorf("countBySeverity() = %d, %d; want 2, 1", errs, warns)
	}
}
