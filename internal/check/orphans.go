package check

import (
	"context"
	"sort"
	"strings"

	"github.com/eykd/lessonlint/internal/domain"
)

// checkOrphans warns once about Markdown files in the content directory
// that no item references. A missing directory is not reported here; the
// per-item file checks already surface it.
func (s *Service) checkOrphans(ctx context.Context, items []domain.Item, sink *domain.Sink) {
	if s.lister == nil {
		return
	}
	dir := s.rules.ContentDir
	names, err := s.lister.ReadDir(ctx, dir)
	if err != nil {
		s.log.Debug("skipping orphan scan", "dir", dir, "error", err)
		return
	}

	referenced := make(map[string]bool, len(items))
	for _, it := range items {
		if it.Path != "" {
			referenced[it.Path] = true
		}
	}

	var extra []string
	for _, name := range names {
		if !strings.HasSuffix(name, ".md") {
			continue
		}
		p := dir + "/" + name
		if referenced[p] || (s.ignore != nil && s.ignore.Match(p)) {
			continue
		}
		extra = append(extra, p)
	}
	if len(extra) == 0 {
		return
	}

	sort.Strings(extra)
	sink.Warnf(domain.FindingUnreferencedFile, dir, "Unreferenced lesson files: %s", strings.Join(extra, ", "))
}
