// Package config loads the optional .lessonlint.yaml project file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eykd/lessonlint/internal/pattern"
)

// DefaultFile is the configuration file looked up in the project root.
const DefaultFile = ".lessonlint.yaml"

// Sections names the level-two headings lesson documents are checked for.
type Sections struct {
	Submission string   `yaml:"submission"`
	Completion string   `yaml:"completion"`
	Expected   []string `yaml:"expected"`
}

// Orphans configures the unreferenced-file scan.
type Orphans struct {
	Ignore []string `yaml:"ignore"`
}

// Watch configures the watch command.
type Watch struct {
	Debounce Duration `yaml:"debounce"`
}

// Config is the decoded project configuration.
type Config struct {
	Index        string   `yaml:"index"`
	ContentDir   string   `yaml:"contentDir"`
	BranchPrefix string   `yaml:"branchPrefix"`
	Sections     Sections `yaml:"sections"`
	Orphans      Orphans  `yaml:"orphans"`
	LockFile     string   `yaml:"lockFile"`
	Watch        Watch    `yaml:"watch"`
}

// Duration is a time.Duration written as a Go duration string ("300ms").
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("line %d: duration must be a string like \"300ms\"", node.Line)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Index:        "index.json",
		ContentDir:   "chapters",
		BranchPrefix: "feature/",
		Sections: Sections{
			Submission: "課題提出",
			Completion: "完了記録",
			Expected: []string{
				"前提",
				"この章でできるようになること",
				"AIに聞いてみよう",
				"演習",
				"ふりかえり",
				"次の章",
			},
		},
		Watch: Watch{Debounce: Duration(300 * time.Millisecond)},
	}
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Decode reads YAML from r over the defaults. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the configuration at filename. When required is false a
// missing file yields the defaults.
func Load(filename string, required bool) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

// Validate checks the values a run depends on.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Index) == "" {
		problems = append(problems, "index must not be empty")
	}
	switch dir := c.ContentDir; {
	case strings.TrimSpace(dir) == "":
		problems = append(problems, "contentDir must not be empty")
	case path.IsAbs(dir) || path.Clean(dir) == ".." || strings.HasPrefix(path.Clean(dir), "../"):
		problems = append(problems, "contentDir must be a relative path inside the project")
	}
	if strings.TrimSpace(c.Sections.Submission) == "" {
		problems = append(problems, "sections.submission must not be empty")
	}
	if strings.TrimSpace(c.Sections.Completion) == "" {
		problems = append(problems, "sections.completion must not be empty")
	}
	for i, h := range c.Sections.Expected {
		if strings.TrimSpace(h) == "" {
			problems = append(problems, fmt.Sprintf("sections.expected[%d] must not be empty", i))
		}
	}
	if _, err := pattern.Compile(c.Orphans.Ignore); err != nil {
		problems = append(problems, "orphans.ignore: "+err.Error())
	}
	if c.Watch.Debounce < 0 {
		problems = append(problems, "watch.debounce must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// ContentDirClean returns the content directory without a trailing slash.
func (c Config) ContentDirClean() string {
	return path.Clean(c.ContentDir)
}
