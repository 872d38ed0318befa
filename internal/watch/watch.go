// Package watch reports batches of changed curriculum files using fsnotify.
package watch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Matcher decides whether a slash-separated path relative to the root is
// excluded from watching.
type Matcher interface {
	Match(path string) bool
}

// Logger receives watcher diagnostics.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Option configures a Watcher.
type Option func(*Watcher)

// WithExclude skips changes whose root-relative path matches m.
func WithExclude(m Matcher) Option {
	return func(w *Watcher) { w.exclude = m }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// Watcher coalesces filesystem events into a single callback per quiet
// period.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	debounce  time.Duration
	exclude   Matcher
	log       Logger
	onChange  func([]string)

	// files are watched individually; dirs report changes to Markdown files.
	files map[string]bool
	dirs  map[string]bool

	callbackMu sync.Mutex
	pendingMu  sync.Mutex
	pending    map[string]struct{}
	timer      *time.Timer
}

// New creates a Watcher rooted at root. onChange receives the sorted
// root-relative paths that changed since the previous call.
func New(root string, debounce time.Duration, onChange func([]string), opts ...Option) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsWatcher: fsw,
		root:      abs,
		debounce:  debounce,
		log:       nopLogger{},
		onChange:  onChange,
		files:     make(map[string]bool),
		dirs:      make(map[string]bool),
		pending:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch registers root-relative paths and starts delivering events. A
// directory reports changes to the Markdown files inside it; a file is
// watched through its parent directory.
func (w *Watcher) Watch(paths []string) error {
	for _, p := range paths {
		full := filepath.Join(w.root, filepath.FromSlash(p))
		info, err := os.Stat(full)
		if err != nil {
			return err
		}
		dir := full
		if info.IsDir() {
			w.dirs[full] = true
		} else {
			w.files[full] = true
			dir = filepath.Dir(full)
		}
		if err := w.fsWatcher.Add(dir); err != nil {
			return err
		}
		w.log.Debug("watching", "path", p)
	}

	go w.run()
	return nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			rel, ok := w.relevant(event.Name)
			if !ok {
				continue
			}
			w.scheduleChange(rel)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

// relevant maps an event path to its root-relative form and reports whether
// it should trigger a callback.
func (w *Watcher) relevant(name string) (string, bool) {
	name = filepath.Clean(name)
	watched := w.files[name] ||
		(w.dirs[filepath.Dir(name)] && strings.EqualFold(filepath.Ext(name), ".md"))
	if !watched {
		return "", false
	}
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if w.exclude != nil && w.exclude.Match(rel) {
		w.log.Debug("ignoring excluded change", "path", rel)
		return "", false
	}
	return rel, true
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = struct{}{}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

// Close stops the watcher. Pending changes are dropped.
func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}
