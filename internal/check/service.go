// Package check provides the application service that validates a curriculum
// project: the index, the documents it references and the links between them.
package check

import (
	"context"

	"github.com/eykd/lessonlint/internal/domain"
	"github.com/eykd/lessonlint/internal/index"
)

// ContentReader abstracts reading a file relative to the project root.
type ContentReader interface {
	ReadFile(ctx context.Context, filename string) (string, error)
}

// DirectoryReader abstracts listing the regular files of a project directory.
type DirectoryReader interface {
	ReadDir(ctx context.Context, dir string) ([]string, error)
}

// Locker abstracts the shared advisory lock held for the duration of a run.
type Locker interface {
	TryLock(ctx context.Context) error
	Unlock() error
}

// Normalizer canonicalizes text before titles and labels are compared.
type Normalizer interface {
	Normalize(s string) string
}

// PathFilter matches content paths the orphan scan should ignore.
type PathFilter interface {
	Match(path string) bool
}

// Logger receives debug output about a run.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}

// Rules configures file locations and the sections documents must carry.
type Rules struct {
	IndexPath         string
	ContentDir        string
	SubmissionHeading string
	CompletionHeading string
	BranchPrefix      string
	ExpectedHeadings  []string
}

// DefaultRules returns the rules used when no configuration overrides them.
func DefaultRules() Rules {
	return Rules{
		IndexPath:         "index.json",
		ContentDir:        "chapters",
		SubmissionHeading: "課題提出",
		CompletionHeading: "完了記録",
		BranchPrefix:      "feature/",
		ExpectedHeadings: []string{
			"前提",
			"この章でできるようになること",
			"AIに聞いてみよう",
			"演習",
			"ふりかえり",
			"次の章",
		},
	}
}

// Result holds the outcome of one validation run.
type Result struct {
	Lessons  int
	Findings []domain.Finding
}

// Option configures a Service.
type Option func(*Service)

// WithRules replaces the default rules.
func WithRules(r Rules) Option {
	return func(s *Service) { s.rules = r }
}

// WithLocker makes every run hold a shared lock.
func WithLocker(l Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithSlugifier enables kebab-case suggestions for invalid identifiers.
func WithSlugifier(sl index.Slugifier) Option {
	return func(s *Service) { s.loader.Slugifier = sl }
}

// WithNormalizer sets the normalizer used for title and label comparison.
func WithNormalizer(n Normalizer) Option {
	return func(s *Service) { s.normalizer = n }
}

// WithOrphanFilter excludes matching content files from the orphan scan.
func WithOrphanFilter(f PathFilter) Option {
	return func(s *Service) { s.ignore = f }
}

// WithLogger sets the debug logger.
func WithLogger(l Logger) Option {
	return func(s *Service) { s.log = l }
}

// Service validates one curriculum project per call to Check.
type Service struct {
	reader     ContentReader
	lister     DirectoryReader
	locker     Locker
	rules      Rules
	loader     index.Loader
	normalizer Normalizer
	ignore     PathFilter
	log        Logger
}

// NewService creates a Service reading the project through reader and lister.
func NewService(reader ContentReader, lister DirectoryReader, opts ...Option) *Service {
	s := &Service{
		reader: reader,
		lister: lister,
		rules:  DefaultRules(),
		log:    nopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the rules the service validates against.
func (s *Service) Rules() Rules {
	return s.rules
}

// Check runs every validator and returns all findings. The only error
// conditions are a lock failure and an index that cannot be loaded, the
// latter returned as *index.LoadError.
func (s *Service) Check(ctx context.Context) (*Result, error) {
	if s.locker != nil {
		if err := s.locker.TryLock(ctx); err != nil {
			return nil, err
		}
		defer func() {
			if err := s.locker.Unlock(); err != nil {
				s.log.Debug("releasing lock failed", "error", err)
			}
		}()
	}

	data, err := s.reader.ReadFile(ctx, s.rules.IndexPath)
	if err != nil {
		return nil, &index.LoadError{Path: s.rules.IndexPath, Err: err}
	}

	var sink domain.Sink
	curriculum, err := s.loader.Load([]byte(data), &sink)
	if err != nil {
		return nil, &index.LoadError{Path: s.rules.IndexPath, Err: err}
	}
	s.log.Debug("index loaded", "path", s.rules.IndexPath, "units", len(curriculum.Units), "items", len(curriculum.Items))

	reg := newRegistry(curriculum.Items)
	checkIdentity(reg, curriculum.Items, &sink)
	checkPrerequisiteOrder(reg, curriculum.Items, s.rules.IndexPath, &sink)
	checkCycles(reg, &sink)

	links := compileLinkPatterns(s.rules.ContentDir)
	for _, item := range curriculum.Items {
		s.checkDocument(ctx, reg, links, item, &sink)
	}

	s.checkOrphans(ctx, curriculum.Items, &sink)

	errs, warns := sink.Counts()
	s.log.Debug("check finished", "errors", errs, "warnings", warns)

	return &Result{
		Lessons:  len(curriculum.Items),
		Findings: sink.Findings(),
	}, nil
}

// normalize applies the configured normalizer, if any.
func (s *Service) normalize(text string) string {
	if s.normalizer == nil {
		return text
	}
	return s.normalizer.Normalize(text)
}
