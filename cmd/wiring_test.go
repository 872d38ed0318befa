package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fixtureIndex = `{
  "chapters": [
    {
      "id": "git",
      "title": "Git",
      "items": [
        {
          "id": "intro",
          "title": "Introduction",
          "path": "chapters/01-intro.md",
          "estimatedMinutes": 10,
          "practiceMinutes": 0,
          "hasAssignment": false,
          "difficulty": "beginner",
          "type": "guide",
          "tags": ["git"],
          "prerequisites": []
        },
        {
          "id": "basics",
          "title": "Basics",
          "path": "chapters/02-basics.md",
          "estimatedMinutes": 30,
          "practiceMinutes": 15,
          "hasAssignment": true,
          "difficulty": "beginner",
          "type": "hands-on",
          "tags": ["git", "cli"],
          "prerequisites": ["intro"]
        }
      ]
    }
  ]
}
`

const fixtureIntro = "# Introduction\n\n## 完了記録\n\nDone. Next: [Basics](./02-basics.md)\n"

const fixtureBasics = "# Basics\n\n```bash\ngit status\n```\n\n## 課題提出\n\nPush to `feature/02-basics`.\n"

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func cleanProject(t *testing.T) string {
	return writeProject(t, map[string]string{
		"index.json":           fixtureIndex,
		"chapters/01-intro.md": fixtureIntro,
		"chapters/02-basics.md": fixtureBasics,
	})
}

func runProject(t *testing.T, cwd string, args ...string) (string, string, int) {
	t.Helper()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd := NewProjectCmd(func() (string, error) { return cwd, nil }, stderr)
	code := RunCLI(cmd, args, stdout, stderr)
	return stdout.String(), stderr.String(), code
}

func TestBuildCommandTree_RegistersSubcommands(t *testing.T) {
	root := BuildCommandTree(nil, nil)

	want := []string{"check", "watch"}
	var got []string
	for _, sub := range root.Commands() {
		got = append(got, sub.Name())
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("subcommands = %v, want %v", got, want)
	}
}

func TestProject_CleanFixtureHasNoErrors(t *testing.T) {
	root := cleanProject(t)

	out, stderr, code := runProject(t, root, "check")

	if code != 0 {
		t.Fatalf("exit code = %d, want 0\nstdout:\n%s\nstderr:\n%s", code, out, stderr)
	}
	if !strings.HasPrefix(out, "Lessons: 2\nErrors: 0\n") {
		t.Errorf("unexpected report:\n%s", out)
	}
}

func TestProject_FindsRootFromContentDirectory(t *testing.T) {
	root := cleanProject(t)

	out, _, code := runProject(t, filepath.Join(root, "chapters"), "check")

	if code != 0 || !strings.HasPrefix(out, "Lessons: 2\n") {
		t.Errorf("code = %d, output:\n%s", code, out)
	}
}

func TestProject_RootFlag(t *testing.T) {
	root := cleanProject(t)

	out, _, code := runProject(t, t.TempDir(), "check", "--root", root, "--json")

	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	var got checkJSONOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Lessons != 2 || got.Summary.Errors != 0 {
		t.Errorf("lessons = %d, errors = %d", got.Lessons, got.Summary.Errors)
	}
}

func TestProject_ErrorsExitOne(t *testing.T) {
	root := writeProject(t, map[string]string{
		"index.json":           fixtureIndex,
		"chapters/01-intro.md": fixtureIntro,
		"chapters/02-basics.md": "# Basics\n\nNo submission section.\n",
	})

	out, _, code := runProject(t, root, "check")

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out, "Errors: 1\n") {
		t.Errorf("expected exactly one error:\n%s", out)
	}
	if !strings.Contains(out, "- git/basics (chapters/02-basics.md): missing required section `## 課題提出`.") {
		t.Errorf("missing section error not reported:\n%s", out)
	}
}

func TestProject_LoadFailureExitsTwo(t *testing.T) {
	tests := []struct {
		name    string
		index   string
		wantMsg string
	}{
		{"malformed JSON", "{", "lessonlint: failed to load index.json:"},
		{"missing chapters", `{"units": []}`, "top-level `chapters` array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeProject(t, map[string]string{"index.json": tt.index})

			out, stderr, code := runProject(t, root, "check")

			if code != 2 {
				t.Errorf("exit code = %d, want 2", code)
			}
			if out != "" {
				t.Errorf("no report expected, got:\n%s", out)
			}
			if !strings.Contains(stderr, tt.wantMsg) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantMsg)
			}
		})
	}
}

func TestProject_MissingIndexExitsTwo(t *testing.T) {
	_, stderr, code := runProject(t, t.TempDir(), "check")

	if code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
	if !strings.Contains(stderr, "failed to load index.json") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestProject_ConfigFile(t *testing.T) {
	root := writeProject(t, map[string]string{
		".lessonlint.yaml": "index: course.json\ncontentDir: lessons\nsections:\n  completion: Done\n  expected: []\norphans:\n  ignore: [\"lessons/_*.md\"]\n",
		"course.json": strings.ReplaceAll(fixtureIndex, "chapters/", "lessons/"),
		"lessons/01-intro.md": strings.ReplaceAll(
			strings.ReplaceAll(fixtureIntro, "完了記録", "Done"), "chapters/", "lessons/"),
		"lessons/02-basics.md":  fixtureBasics,
		"lessons/_template.md":  "# Template\n",
		"lessons/99-unused.md":  "# Unused\n",
	})

	out, stderr, code := runProject(t, root, "check")

	if code != 0 {
		t.Fatalf("exit code = %d\nstdout:\n%s\nstderr:\n%s", code, out, stderr)
	}
	if !strings.Contains(out, "Unreferenced lesson files: lessons/99-unused.md\n") {
		t.Errorf("expected orphan warning for unused file only:\n%s", out)
	}
	if strings.Contains(out, "_template.md") {
		t.Errorf("ignored file reported:\n%s", out)
	}
}

func TestProject_InvalidConfig(t *testing.T) {
	root := writeProject(t, map[string]string{
		".lessonlint.yaml": "contentDirectory: lessons\n",
		"index.json":       fixtureIndex,
	})

	_, stderr, code := runProject(t, root, "check")

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "lessonlint: config:") || !strings.Contains(stderr, "contentDirectory") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestProject_ExplicitConfigMustExist(t *testing.T) {
	root := cleanProject(t)

	_, stderr, code := runProject(t, root, "check", "--config", filepath.Join(root, "missing.yaml"))

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "missing.yaml") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestProject_VerboseLogsToStderr(t *testing.T) {
	root := cleanProject(t)

	_, stderr, code := runProject(t, root, "check", "--verbose")

	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(stderr, "index loaded") {
		t.Errorf("expected debug log on stderr, got %q", stderr)
	}
}

func TestProjectWiring_WiresOnce(t *testing.T) {
	calls := 0
	p := &projectWiring{
		getwd: func() (string, error) {
			calls++
			return "", errors.New("no cwd")
		},
		stderr: new(bytes.Buffer),
	}
	NewRootCmd()

	_, err1 := p.load()
	_, err2 := p.load()

	if err1 == nil || err1 != err2 {
		t.Errorf("errors = %v, %v; want the same error twice", err1, err2)
	}
	if calls != 1 {
		t.Errorf("getwd called %d times, want 1", calls)
	}
}

func TestProjectWiring_SyncBeforeAndAfterWiring(t *testing.T) {
	root := cleanProject(t)
	stderr := new(bytes.Buffer)
	p := &projectWiring{
		getwd:  func() (string, error) { return root, nil },
		stderr: stderr,
	}
	NewRootCmd()

	p.Sync()

	if _, err := p.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	p.Sync()

	if p.project == nil || p.project.log == nil {
		t.Fatal("expected the project logger to be wired")
	}
}
