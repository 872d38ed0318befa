// Package index loads the curriculum index and validates its schema.
package index

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/eykd/lessonlint/internal/domain"
)

// Fatal load failures. They abort a run before any finding is recorded.
var (
	ErrMalformed    = errors.New("index is not valid JSON")
	ErrNotObject    = errors.New("index must be a JSON object")
	ErrMissingUnits = errors.New("index must contain a top-level `chapters` array")
)

// LoadError reports an index that could not be loaded at all.
type LoadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("failed to load %s: %s", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Slugifier suggests a kebab-case spelling for an invalid identifier.
type Slugifier interface {
	Slug(s string) string
}

// Loader parses index documents. The zero value is ready to use and makes
// no suggestions for invalid identifiers.
type Loader struct {
	Slugifier Slugifier
}

// Load parses data and validates every unit and item, recording schema
// violations in sink. Only a malformed document or a top-level shape other
// than an object with a "chapters" array returns an error, and in that case
// nothing is recorded.
func (l Loader) Load(data []byte, sink *domain.Sink) (*domain.Curriculum, error) {
	units, err := decodeTopLevel(data)
	if err != nil {
		return nil, err
	}

	c := &domain.Curriculum{}
	var raws []rawItem
	for _, rawU := range units {
		u := readUnit(rawU)

		unit := l.checkUnit(u, sink)
		c.Units = append(c.Units, unit)

		elems, ok := decodeArray(u.Items)
		if !ok {
			sink.Errorf(domain.FindingSchema, "", "Unit %s: missing or invalid `items` array.", unitLabel(unit.ID))
			continue
		}
		for _, e := range elems {
			raws = append(raws, readItem(e))
			c.Items = append(c.Items, domain.Item{UnitID: unit.ID, Seq: len(c.Items)})
		}
	}

	for i := range c.Items {
		l.checkItem(&c.Items[i], raws[i], sink)
	}
	return c, nil
}

// decodeTopLevel enforces the fatal gate and returns the raw unit elements.
func decodeTopLevel(data []byte) ([]json.RawMessage, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, ok := root.(map[string]any); !ok {
		return nil, ErrNotObject
	}

	units, ok := decodeArray(decodeObject(data)["chapters"])
	if !ok {
		return nil, ErrMissingUnits
	}
	return units, nil
}

// decodeArray splits a JSON array into its elements. Anything else,
// including null, reports false.
func decodeArray(b json.RawMessage) ([]json.RawMessage, bool) {
	t := bytes.TrimSpace(b)
	if len(t) == 0 || t[0] != '[' {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(t, &elems); err != nil {
		return nil, false
	}
	return elems, true
}

func (l Loader) checkUnit(u rawUnit, sink *domain.Sink) domain.Unit {
	var unit domain.Unit
	id, hasID := u.ID.nonEmpty()
	if hasID {
		unit.ID = id
	}
	label := unitLabel(unit.ID)

	switch {
	case !hasID:
		sink.Errorf(domain.FindingSchema, "", "Unit %s: missing a non-empty string `id`.", label)
	case !domain.IsKebabCase(id):
		sink.Errorf(domain.FindingSchema, "", "Unit %s: unit id must be kebab-case (got `%s`).%s", label, id, l.suggest(id))
	}

	if title, ok := u.Title.nonEmpty(); ok {
		unit.Title = title
	} else {
		sink.Errorf(domain.FindingSchema, "", "Unit %s: missing a non-empty string `title`.", label)
	}
	return unit
}

func (l Loader) checkItem(item *domain.Item, raw rawItem, sink *domain.Sink) {
	// Collect the values first so every message carries the full reference.
	if id, ok := raw.ID.nonEmpty(); ok {
		item.ID = id
	}
	if title, ok := raw.Title.nonEmpty(); ok {
		item.Title = title
	}
	if p, ok := raw.Path.nonEmpty(); ok {
		item.Path = p
	}
	ref := item.Ref()
	fail := func(format string, args ...any) {
		sink.Errorf(domain.FindingSchema, item.Path, "%s: %s", ref, fmt.Sprintf(format, args...))
	}

	if item.ID == "" {
		fail("item is missing a non-empty string `id`.")
	} else if !domain.IsKebabCase(item.ID) {
		fail("lesson id must be kebab-case (got `%s`).%s", item.ID, l.suggest(item.ID))
	}
	if item.Title == "" {
		fail("missing a non-empty string `title`.")
	}
	if item.Path == "" {
		fail("missing a non-empty string `path`.")
	}

	if raw.EstimatedMinutes.ok && raw.EstimatedMinutes.v > 0 {
		item.EstimatedMinutes = raw.EstimatedMinutes.v
	} else {
		fail("missing or invalid `estimatedMinutes` (expected number > 0).")
	}

	if raw.HasAssignment.ok {
		v := raw.HasAssignment.v
		item.HasAssignment = &v
	} else {
		fail("missing or invalid `hasAssignment` (expected boolean).")
	}

	if raw.PracticeMinutes.ok && raw.PracticeMinutes.v >= 0 {
		item.PracticeMinutes = raw.PracticeMinutes.v
	} else {
		fail("missing or invalid `practiceMinutes` (expected number >= 0).")
	}

	if t, ok := raw.Type.nonEmpty(); ok && oneOf(t, domain.ItemTypes) {
		item.Type = domain.ItemType(t)
	} else {
		fail("missing or invalid `type` (expected one of: %s).", joinValues(domain.ItemTypes))
	}

	if d, ok := raw.Difficulty.nonEmpty(); ok && oneOf(d, domain.Difficulties) {
		item.Difficulty = domain.Difficulty(d)
	} else {
		fail("missing or invalid `difficulty` (expected one of: %s).", joinValues(domain.Difficulties))
	}

	item.Tags = raw.Tags.v
	switch {
	case !raw.Tags.isArray || !raw.Tags.valid || len(raw.Tags.v) == 0:
		fail("missing or invalid `tags` (expected non-empty string[]).")
	case raw.Tags.hasDuplicates():
		fail("`tags` contains duplicates.")
	}

	item.Prerequisites = raw.Prerequisites.v
	switch {
	case !raw.Prerequisites.isArray || !raw.Prerequisites.valid:
		fail("missing or invalid `prerequisites` (expected string[]).")
	case raw.Prerequisites.hasDuplicates():
		fail("`prerequisites` contains duplicates.")
	}
}

// suggest returns a " Did you mean ...?" hint, or "" when none applies.
func (l Loader) suggest(id string) string {
	if l.Slugifier == nil {
		return ""
	}
	s := l.Slugifier.Slug(id)
	if s == "" || s == id || !domain.IsKebabCase(s) {
		return ""
	}
	return fmt.Sprintf(" Did you mean `%s`?", s)
}

func unitLabel(id string) string {
	if id == "" {
		return domain.MissingUnitID
	}
	return id
}

func oneOf[T ~string](v string, allowed []T) bool {
	for _, a := range allowed {
		if string(a) == v {
			return true
		}
	}
	return false
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
