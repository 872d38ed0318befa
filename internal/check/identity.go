package check

import (
	"strings"

	"github.com/eykd/lessonlint/internal/domain"
)

// registry indexes items by id and path, preserving first-occurrence order
// so findings come out in a deterministic order.
type registry struct {
	ids         []string
	byID        map[string][]domain.Item
	paths       []string
	byPath      map[string][]domain.Item
	titleByPath map[string]string
}

func newRegistry(items []domain.Item) *registry {
	r := &registry{
		byID:        make(map[string][]domain.Item),
		byPath:      make(map[string][]domain.Item),
		titleByPath: make(map[string]string),
	}
	for _, it := range items {
		if it.ID != "" {
			if _, seen := r.byID[it.ID]; !seen {
				r.ids = append(r.ids, it.ID)
			}
			r.byID[it.ID] = append(r.byID[it.ID], it)
		}
		if it.Path != "" {
			if _, seen := r.byPath[it.Path]; !seen {
				r.paths = append(r.paths, it.Path)
			}
			if _, titled := r.titleByPath[it.Path]; !titled && it.Title != "" {
				r.titleByPath[it.Path] = it.Title
			}
			r.byPath[it.Path] = append(r.byPath[it.Path], it)
		}
	}
	return r
}

// known reports whether id belongs to any item.
func (r *registry) known(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// first returns the first item declared with id.
func (r *registry) first(id string) (domain.Item, bool) {
	group, ok := r.byID[id]
	if !ok {
		return domain.Item{}, false
	}
	return group[0], true
}

// prerequisitesOf returns the prerequisite ids of the first item with id.
func (r *registry) prerequisitesOf(id string) []string {
	it, ok := r.first(id)
	if !ok {
		return nil
	}
	return it.Prerequisites
}

// title returns the first non-empty title registered for a canonical
// content path. Paths whose items all lack a title are not link targets.
func (r *registry) title(path string) (string, bool) {
	t, ok := r.titleByPath[path]
	return t, ok
}

// checkIdentity reports duplicate ids, duplicate paths, self-referencing
// prerequisites and prerequisites naming unknown ids.
func checkIdentity(reg *registry, items []domain.Item, sink *domain.Sink) {
	for _, id := range reg.ids {
		group := reg.byID[id]
		if len(group) < 2 {
			continue
		}
		refs := make([]string, len(group))
		for i, it := range group {
			refs[i] = it.Ref()
		}
		sink.Errorf(domain.FindingDuplicateID, group[0].Path, "Duplicate lesson id `%s`: %s", id, strings.Join(refs, ", "))
	}

	for _, p := range reg.paths {
		group := reg.byPath[p]
		if len(group) < 2 {
			continue
		}
		refs := make([]string, len(group))
		for i, it := range group {
			refs[i] = it.ShortRef()
		}
		sink.Errorf(domain.FindingDuplicatePath, p, "Lesson path `%s` is referenced by multiple items: %s", p, strings.Join(refs, ", "))
	}

	for _, it := range items {
		for _, prereq := range it.Prerequisites {
			if prereq == it.ID {
				sink.Errorf(domain.FindingSelfPrerequisite, it.Path, "%s: `prerequisites` must not contain itself.", it.Ref())
				continue
			}
			if !reg.known(prereq) {
				sink.Errorf(domain.FindingUnknownPrerequisite, it.Path, "%s: `prerequisites` references unknown id `%s`.", it.Ref(), prereq)
			}
		}
	}
}
