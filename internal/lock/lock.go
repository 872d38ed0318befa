// Package lock holds a shared advisory lock on the curriculum while it is
// validated, so a tool rewriting the index under an exclusive lock is never
// observed half-written.
package lock

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrAlreadyLocked is returned when a writer holds the exclusive lock.
var ErrAlreadyLocked = errors.New("another command is modifying the curriculum")

// Flocker is the subset of flock.Flock used for shared locking.
type Flocker interface {
	TryRLock() (bool, error)
	Unlock() error
}

// Lock is a fail-fast shared lock. Any number of validation runs may hold
// it at once.
type Lock struct {
	flocker Flocker
	path    string
}

// New creates a Lock from the given Flocker.
func New(f Flocker) *Lock {
	return &Lock{flocker: f}
}

// NewFromPath creates a Lock backed by the file at path. The file is
// created on first acquisition if it does not exist.
func NewFromPath(path string) *Lock {
	return &Lock{flocker: flock.New(path), path: path}
}

// TryLock acquires the shared lock without blocking.
func (l *Lock) TryLock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ok, err := l.flocker.TryRLock()
	switch {
	case err != nil:
		return fmt.Errorf("acquiring lock%s: %w", l.at(), err)
	case !ok && l.path != "":
		return fmt.Errorf("%w (lock held on %s)", ErrAlreadyLocked, l.path)
	case !ok:
		return ErrAlreadyLocked
	}
	return nil
}

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	if err := l.flocker.Unlock(); err != nil {
		return fmt.Errorf("releasing lock%s: %w", l.at(), err)
	}
	return nil
}

func (l *Lock) at() string {
	if l.path == "" {
		return ""
	}
	return " " + l.path
}
