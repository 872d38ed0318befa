package check

import (
	"strings"

	"github.com/eykd/lessonlint/internal/domain"
)

// checkPrerequisiteOrder warns when a prerequisite is declared later in the
// index than the item that requires it.
func checkPrerequisiteOrder(reg *registry, items []domain.Item, indexName string, sink *domain.Sink) {
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		for _, prereq := range it.Prerequisites {
			dep, ok := reg.first(prereq)
			if !ok || prereq == it.ID {
				continue
			}
			if dep.Seq > it.Seq {
				sink.Warnf(domain.FindingPrerequisiteOrder, it.Path,
					"%s: prerequisite `%s` appears after this lesson in %s.", it.Ref(), prereq, indexName)
			}
		}
	}
}

// checkCycles reports every prerequisite cycle once, in traversal order.
func checkCycles(reg *registry, sink *domain.Sink) {
	for _, cycle := range domain.FindCycles(reg.ids, reg.prerequisitesOf) {
		sink.Errorf(domain.FindingPrerequisiteCycle, "", "Prerequisite cycle detected: %s", strings.Join(cycle, " -> "))
	}
}
