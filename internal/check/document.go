package check

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/eykd/lessonlint/internal/domain"
)

// checkDocument validates the Markdown document an item points at. A panic
// raised while checking one document becomes an error for that item only.
func (s *Service) checkDocument(ctx context.Context, reg *registry, links linkPatterns, item domain.Item, sink *domain.Sink) {
	if item.Path == "" {
		return
	}
	ref := item.Ref()

	defer func() {
		if r := recover(); r != nil {
			sink.Errorf(domain.FindingInternal, item.Path, "%s: internal error while checking document: %v", ref, r)
		}
	}()

	if escapesRoot(item.Path) {
		sink.Errorf(domain.FindingInvalidPath, item.Path, "%s: invalid relative path `%s`.", ref, item.Path)
		return
	}

	dir := s.rules.ContentDir
	if !strings.HasPrefix(item.Path, dir+"/") || !strings.HasSuffix(item.Path, ".md") {
		sink.Warnf(domain.FindingPathConvention, item.Path, "%s: expected path under `%s/` with `.md` extension.", ref, dir)
	}

	doc, err := s.reader.ReadFile(ctx, item.Path)
	if err != nil {
		s.log.Debug("reading document failed", "path", item.Path, "error", err)
		sink.Errorf(domain.FindingMissingFile, item.Path, "%s: referenced file not found.", ref)
		return
	}

	h1, ok := domain.FirstHeading(doc)
	if !ok {
		sink.Errorf(domain.FindingMissingHeading, item.Path, "%s: missing a top-level H1 (# ...) in Markdown.", ref)
		return
	}
	if item.Title != "" && s.normalize(h1) != s.normalize(item.Title) {
		sink.Errorf(domain.FindingTitleMismatch, item.Path, "%s: title mismatch (index: \"%s\" vs H1: \"%s\").", ref, item.Title, h1)
	}

	if first, _ := domain.FirstNonBlankLine(doc); !strings.HasPrefix(first, "# ") {
		sink.Warnf(domain.FindingHeadingPosition, item.Path, "%s: expected the first non-empty line to be a top-level H1.", ref)
	}

	if n := domain.CountTopLevelHeadings(doc); n != 1 {
		sink.Warnf(domain.FindingHeadingCount, item.Path, "%s: expected exactly one top-level H1 in Markdown (found %d).", ref, n)
	}

	for _, line := range domain.FencesWithoutLanguage(doc) {
		sink.Warnf(domain.FindingFenceLanguage, item.Path, "%s: code fence missing language tag at line %d.", ref, line)
	}
	if domain.HasUnclosedFence(doc) {
		sink.Warnf(domain.FindingUnclosedFence, item.Path, "%s: code fence is not closed (unmatched %s).", ref, domain.FenceMarker)
	}

	s.checkRequiredSections(item, doc, sink)
	s.checkLinks(reg, links, item, doc, sink)

	for _, heading := range s.rules.ExpectedHeadings {
		if !domain.HasSection(doc, heading) {
			sink.Warnf(domain.FindingExpectedHeading, item.Path, "%s: missing heading `## %s`.", ref, heading)
		}
	}
}

// checkRequiredSections enforces the submission section for items with an
// assignment and the completion section for items without one.
func (s *Service) checkRequiredSections(item domain.Item, doc string, sink *domain.Sink) {
	if item.HasAssignment == nil {
		return
	}
	ref := item.Ref()

	if !*item.HasAssignment {
		if !domain.HasSection(doc, s.rules.CompletionHeading) {
			sink.Errorf(domain.FindingMissingSection, item.Path, "%s: missing required section `## %s`.", ref, s.rules.CompletionHeading)
		}
		return
	}

	section, ok := domain.Section(doc, s.rules.SubmissionHeading)
	if !ok {
		sink.Errorf(domain.FindingMissingSection, item.Path, "%s: missing required section `## %s`.", ref, s.rules.SubmissionHeading)
		return
	}
	branch := s.rules.BranchPrefix + BranchName(item.Path)
	if !strings.Contains(section, branch) {
		sink.Errorf(domain.FindingBranchName, item.Path, "%s: `## %s` must include branch name `%s`.", ref, s.rules.SubmissionHeading, branch)
	}
}

// BranchName derives the branch suffix for a document: its base name
// without the .md extension.
func BranchName(docPath string) string {
	return strings.TrimSuffix(path.Base(docPath), ".md")
}

// escapesRoot reports whether p is absolute, on any platform, or contains
// a ".." segment.
func escapesRoot(p string) bool {
	if path.IsAbs(p) || filepath.IsAbs(p) || strings.HasPrefix(p, `\`) || hasDrivePrefix(p) {
		return true
	}
	segments := strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' })
	for _, seg := range segments {
		if seg == ".." {
			return true
		}
	}
	return false
}

// hasDrivePrefix reports whether p starts with a Windows drive such as
// "C:\" or "C:/".
func hasDrivePrefix(p string) bool {
	if len(p) < 3 || p[1] != ':' || (p[2] != '/' && p[2] != '\\') {
		return false
	}
	c := p[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
