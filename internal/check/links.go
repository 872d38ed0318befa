package check

import (
	"path"
	"regexp"
	"strings"

	"github.com/eykd/lessonlint/internal/domain"
)

// linkPatterns holds the expressions matching internal lesson links for one
// content directory.
type linkPatterns struct {
	dir string
	// link captures the label and target of a lesson link.
	link *regexp.Regexp
	// anyLink matches lesson links with possibly empty labels, for stripping.
	anyLink *regexp.Regexp
	// raw matches a lesson path left visible in prose.
	raw *regexp.Regexp
}

func compileLinkPatterns(contentDir string) linkPatterns {
	target := `(?:\./|` + regexp.QuoteMeta(contentDir) + `/)[^)\s]+?\.md`
	return linkPatterns{
		dir:     contentDir,
		link:    regexp.MustCompile(`\[([^\]]+)\]\((` + target + `)\)`),
		anyLink: regexp.MustCompile(`\[[^\]]*\]\(` + target + `\)`),
		raw:     regexp.MustCompile(`(?:` + regexp.QuoteMeta(contentDir) + `/|\./)[^\s)]+?\.md`),
	}
}

// canonical resolves a "./x.md" or "<dir>/x.md" target to "<dir>/x.md".
func (p linkPatterns) canonical(target string) string {
	if rest, ok := strings.CutPrefix(target, "./"); ok {
		return p.dir + "/" + rest
	}
	return target
}

// checkLinks validates internal lesson links in the prose of doc. Fenced
// code is ignored.
func (s *Service) checkLinks(reg *registry, p linkPatterns, item domain.Item, doc string, sink *domain.Sink) {
	ref := item.Ref()

	for _, line := range domain.ScanLines(doc) {
		if !line.Prose() {
			continue
		}

		for _, m := range p.link.FindAllStringSubmatch(line.Text, -1) {
			label := strings.TrimSpace(m[1])
			target := strings.TrimSpace(m[2])
			canonical := p.canonical(target)
			relative := "./" + path.Base(canonical)

			title, ok := reg.title(canonical)
			if !ok {
				sink.Errorf(domain.FindingBrokenLink, item.Path,
					"%s: link target `%s` does not match any lesson path in %s at line %d.",
					ref, target, s.rules.IndexPath, line.Number)
				continue
			}
			if s.normalize(label) != s.normalize(title) {
				sink.Warnf(domain.FindingLinkLabel, item.Path,
					"%s: link text should match lesson title ([%s](%s)) at line %d.",
					ref, title, relative, line.Number)
			}
			if strings.HasPrefix(target, p.dir+"/") {
				sink.Errorf(domain.FindingLinkForm, item.Path,
					"%s: use relative links like `%s` instead of `%s` at line %d.",
					ref, relative, target, line.Number)
			}
		}

		stripped := p.anyLink.ReplaceAllString(line.Text, "")
		if raw := p.raw.FindString(stripped); raw != "" {
			sink.Warnf(domain.FindingRawPath, item.Path,
				"%s: avoid showing raw lesson path `%s` at line %d (use a title link).",
				ref, raw, line.Number)
		}
	}
}
