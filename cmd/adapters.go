package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/eykd/lessonlint/internal/check"
	"github.com/eykd/lessonlint/internal/config"
	"github.com/eykd/lessonlint/internal/domain"
	"github.com/eykd/lessonlint/internal/fs"
	"github.com/eykd/lessonlint/internal/index"
	"github.com/eykd/lessonlint/internal/lock"
	"github.com/eykd/lessonlint/internal/logging"
	"github.com/eykd/lessonlint/internal/pattern"
	"github.com/eykd/lessonlint/internal/watch"
)

// checkServicer abstracts the check.Service method used by adapters.
type checkServicer interface {
	Check(ctx context.Context) (*check.Result, error)
}

// --- checkAdapter ---

type checkAdapter struct {
	svc checkServicer
}

func (a *checkAdapter) Check(ctx context.Context) (*CheckResult, error) {
	svcResult, err := a.svc.Check(ctx)
	if err != nil {
		var loadErr *index.LoadError
		if errors.As(err, &loadErr) {
			return nil, &IndexLoadError{Err: loadErr}
		}
		if errors.Is(err, lock.ErrAlreadyLocked) {
			return nil, &ContextError{Op: "check", Err: err}
		}
		return nil, err
	}

	findings := make([]CheckFinding, len(svcResult.Findings))
	for i, f := range svcResult.Findings {
		findings[i] = convertFinding(f)
	}
	return &CheckResult{Lessons: svcResult.Lessons, Findings: findings}, nil
}

// convertFinding converts a domain.Finding to a cmd.CheckFinding.
func convertFinding(f domain.Finding) CheckFinding {
	return CheckFinding{
		Type:     f.Type,
		Severity: Severity(f.Severity),
		Message:  f.Message,
		Path:     f.Path,
	}
}

// --- projectWiring ---

// project is a fully wired curriculum project.
type project struct {
	root   string
	cfg    config.Config
	ignore pattern.Set
	log    *logging.Logger
	svc    checkServicer
}

// projectWiring resolves the project from the global flags on first use
// and serves both check and watch. Wiring is deferred until a command runs
// so that flags have been parsed.
type projectWiring struct {
	getwd  func() (string, error)
	stderr io.Writer

	once    sync.Once
	project *project
	err     error
}

func (p *projectWiring) load() (*project, error) {
	p.once.Do(func() {
		p.project, p.err = wireProject(p.getwd, p.stderr)
	})
	return p.project, p.err
}

// Sync flushes the project logger. It does nothing when no command wired
// the project.
func (p *projectWiring) Sync() {
	if p.project != nil {
		p.project.log.Sync()
	}
}

func (p *projectWiring) Check(ctx context.Context) (*CheckResult, error) {
	proj, err := p.load()
	if err != nil {
		return nil, err
	}
	return (&checkAdapter{svc: proj.svc}).Check(ctx)
}

func (p *projectWiring) Watch(ctx context.Context, onChange func([]string)) error {
	proj, err := p.load()
	if err != nil {
		return err
	}

	w, err := watch.New(proj.root, time.Duration(proj.cfg.Watch.Debounce), onChange,
		watch.WithExclude(proj.ignore),
		watch.WithLogger(proj.log),
	)
	if err != nil {
		return &ContextError{Op: "watch", Err: err}
	}
	defer w.Close()

	paths := []string{proj.cfg.Index, proj.cfg.ContentDirClean()}
	if err := w.Watch(paths); err != nil {
		return &ContextError{Op: "watch", Path: proj.root, Err: err}
	}
	proj.log.Info("watching for changes", "root", proj.root, "paths", paths)

	<-ctx.Done()
	return ctx.Err()
}

// resolveRoot returns the --root directory, or the nearest ancestor of the
// working directory holding a project marker, or the working directory.
func resolveRoot(getwd func() (string, error)) (string, error) {
	if r := GetRoot(); r != "" {
		return filepath.Abs(r)
	}
	cwd, err := getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	root, err := fs.FindProjectRootImpl(cwd, config.DefaultFile, "index.json")
	if errors.Is(err, fs.ErrNoProject) {
		return cwd, nil
	}
	return root, err
}

// loadConfig reads --config when given, otherwise the optional default
// file in root.
func loadConfig(root string) (config.Config, error) {
	if c := GetConfig(); c != "" {
		return config.Load(c, true)
	}
	return config.Load(filepath.Join(root, config.DefaultFile), false)
}

// wireProject builds the check service for the project selected by the
// global flags.
func wireProject(getwd func() (string, error), stderr io.Writer) (*project, error) {
	if stderr == nil {
		stderr = os.Stderr
	}
	log := logging.New(GetVerbose(), stderr)

	root, err := resolveRoot(getwd)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, &ContextError{Op: "config", Err: err}
	}
	ignore, err := pattern.Compile(cfg.Orphans.Ignore)
	if err != nil {
		return nil, &ContextError{Op: "config", Err: err}
	}
	log.Debug("project resolved", "root", root, "index", cfg.Index, "contentDir", cfg.ContentDirClean())

	slugs := fs.SlugAdapter{}
	opts := []check.Option{
		check.WithRules(rulesFromConfig(cfg)),
		check.WithSlugifier(slugs),
		check.WithNormalizer(slugs),
		check.WithLogger(log),
	}
	if ignore.Len() > 0 {
		opts = append(opts, check.WithOrphanFilter(ignore))
	}
	if cfg.LockFile != "" {
		opts = append(opts, check.WithLocker(lock.NewFromPath(filepath.Join(root, cfg.LockFile))))
	}

	svc := check.NewService(
		&fs.OSContentReader{Root: root},
		&fs.OSReader{Root: root},
		opts...,
	)
	return &project{root: root, cfg: cfg, ignore: ignore, log: log, svc: svc}, nil
}

// rulesFromConfig maps the configuration onto the check service rules.
func rulesFromConfig(cfg config.Config) check.Rules {
	return check.Rules{
		IndexPath:         cfg.Index,
		ContentDir:        cfg.ContentDirClean(),
		SubmissionHeading: cfg.Sections.Submission,
		CompletionHeading: cfg.Sections.Completion,
		BranchPrefix:      cfg.BranchPrefix,
		ExpectedHeadings:  cfg.Sections.Expected,
	}
}
