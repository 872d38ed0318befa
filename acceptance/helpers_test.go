package acceptance_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// runLessonlint executes the binary in dir and returns stdout, stderr, and
// exit code.
func runLessonlint(t *testing.T, dir string, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(lessonlintBinary, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("failed to run lessonlint: %v", err)
		}
		exitCode = exitErr.ExitCode()
	}
	return stdout.String(), stderr.String(), exitCode
}

// checkJSON runs check --json and decodes the report.
func checkJSON(t *testing.T, dir string, wantExit int) report {
	t.Helper()
	stdout, stderr, exitCode := runLessonlint(t, dir, "check", "--json")
	if exitCode != wantExit {
		t.Fatalf("exit code = %d, want %d\nstdout: %s\nstderr: %s", exitCode, wantExit, stdout, stderr)
	}
	var r report
	if err := json.Unmarshal([]byte(stdout), &r); err != nil {
		t.Fatalf("failed to parse check JSON: %v\noutput: %s", err, stdout)
	}
	return r
}

type report struct {
	Lessons  int `json:"lessons"`
	Findings []struct {
		Type     string `json:"type"`
		Severity string `json:"severity"`
		Message  string `json:"message"`
		Path     string `json:"path"`
	} `json:"findings"`
	Summary struct {
		Errors   int `json:"errors"`
		Warnings int `json:"warnings"`
	} `json:"summary"`
}

// messages returns the messages of findings with the given severity.
func (r report) messages(severity string) []string {
	var out []string
	for _, f := range r.Findings {
		if f.Severity == severity {
			out = append(out, f.Message)
		}
	}
	return out
}

// lesson describes one item in a generated project.
type lesson struct {
	id, title, file string
	assignment      bool
	prerequisites   []string
	body            string
}

// newProject writes index.json and one document per lesson under
// chapters/. A lesson with an empty body gets a conforming document.
func newProject(t *testing.T, lessons ...lesson) string {
	t.Helper()
	dir := t.TempDir()

	type item struct {
		ID               string   `json:"id"`
		Title            string   `json:"title"`
		Path             string   `json:"path"`
		EstimatedMinutes int      `json:"estimatedMinutes"`
		PracticeMinutes  int      `json:"practiceMinutes"`
		HasAssignment    bool     `json:"hasAssignment"`
		Difficulty       string   `json:"difficulty"`
		Type             string   `json:"type"`
		Tags             []string `json:"tags"`
		Prerequisites    []string `json:"prerequisites"`
	}
	items := make([]item, 0, len(lessons))
	for _, l := range lessons {
		prereqs := l.prerequisites
		if prereqs == nil {
			prereqs = []string{}
		}
		items = append(items, item{
			ID: l.id, Title: l.title, Path: "chapters/" + l.file,
			EstimatedMinutes: 30, PracticeMinutes: 10, HasAssignment: l.assignment,
			Difficulty: "beginner", Type: "lesson", Tags: []string{"git"},
			Prerequisites: prereqs,
		})

		body := l.body
		if body == "" {
			body = conformingDoc(l.title, l.file, l.assignment)
		}
		writeFile(t, dir, filepath.Join("chapters", l.file), body)
	}

	index := map[string]any{
		"chapters": []any{
			map[string]any{"id": "git", "title": "Git", "items": items},
		},
	}
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		t.Fatalf("marshal index: %v", err)
	}
	writeFile(t, dir, "index.json", string(data))
	return dir
}

// conformingDoc returns a document that passes every document rule.
func conformingDoc(title, file string, assignment bool) string {
	var b strings.Builder
	b.WriteString("# " + title + "\n\n")
	for _, h := range []string{"前提", "この章でできるようになること", "AIに聞いてみよう", "演習", "ふりかえり", "次の章"} {
		b.WriteString("## " + h + "\n\ntext\n\n")
	}
	if assignment {
		b.WriteString("## 課題提出\n\nPush to `feature/" + strings.TrimSuffix(file, ".md") + "`.\n")
	} else {
		b.WriteString("## 完了記録\n\nDone.\n")
	}
	return b.String()
}

// writeFile creates a file with the given content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

// snapshotFiles returns a map of relative path to content for every file
// under dir.
func snapshotFiles(t *testing.T, dir string) map[string]string {
	t.Helper()
	snap := make(map[string]string)
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, p)
		snap[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot %s: %v", dir, err)
	}
	return snap
}

// assertSnapshotUnchanged compares current files against a snapshot.
func assertSnapshotUnchanged(t *testing.T, dir string, snap map[string]string) {
	t.Helper()
	current := snapshotFiles(t, dir)
	if len(current) != len(snap) {
		t.Fatalf("file count changed: had %d, now %d", len(snap), len(current))
	}
	for name, oldContent := range snap {
		if current[name] != oldContent {
			t.Fatalf("file %s changed", name)
		}
	}
}
