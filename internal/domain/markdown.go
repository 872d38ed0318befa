package domain

import (
	"regexp"
	"strings"
)

// FenceMarker opens and closes a fenced code block when it starts a line.
const FenceMarker = "```"

var (
	lineBreakRegex = regexp.MustCompile(`\r?\n`)
	h1Regex        = regexp.MustCompile(`^#\s+(\S.*?)\s*$`)
)

// Line is one line of a Markdown document annotated with fence state.
type Line struct {
	// Number is 1-based.
	Number int
	Text   string
	// Marker is true when the line opens or closes a fence.
	Marker bool
	// Fenced is true for content lines inside a fence (never for markers).
	Fenced bool
}

// SplitLines splits a document on LF or CRLF line breaks.
func SplitLines(doc string) []string {
	return lineBreakRegex.Split(doc, -1)
}

// ScanLines walks the document once, toggling fence state on every marker
// line regardless of what follows the marker.
func ScanLines(doc string) []Line {
	raw := SplitLines(doc)
	lines := make([]Line, len(raw))
	inFence := false
	for i, text := range raw {
		l := Line{Number: i + 1, Text: text}
		if strings.HasPrefix(text, FenceMarker) {
			l.Marker = true
			inFence = !inFence
		} else {
			l.Fenced = inFence
		}
		lines[i] = l
	}
	return lines
}

// Prose reports whether the line is ordinary text outside any fence.
func (l Line) Prose() bool {
	return !l.Marker && !l.Fenced
}

// FirstHeading returns the text of the first "# " heading outside fenced code.
func FirstHeading(doc string) (string, bool) {
	for _, l := range ScanLines(doc) {
		if !l.Prose() {
			continue
		}
		if m := h1Regex.FindStringSubmatch(l.Text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// CountTopLevelHeadings counts "# " headings outside fenced code.
func CountTopLevelHeadings(doc string) int {
	n := 0
	for _, l := range ScanLines(doc) {
		if l.Prose() && h1Regex.MatchString(l.Text) {
			n++
		}
	}
	return n
}

// FirstNonBlankLine returns the first line containing non-whitespace text.
func FirstNonBlankLine(doc string) (string, bool) {
	for _, line := range SplitLines(doc) {
		if strings.TrimSpace(line) != "" {
			return line, true
		}
	}
	return "", false
}

// FencesWithoutLanguage returns the line numbers of opening fences that do
// not declare a language tag.
func FencesWithoutLanguage(doc string) []int {
	var lines []int
	open := false
	for _, l := range ScanLines(doc) {
		if !l.Marker {
			continue
		}
		if !open && strings.TrimSpace(l.Text[len(FenceMarker):]) == "" {
			lines = append(lines, l.Number)
		}
		open = !open
	}
	return lines
}

// HasUnclosedFence reports whether the document ends inside a fence.
func HasUnclosedFence(doc string) bool {
	open := false
	for _, l := range ScanLines(doc) {
		if l.Marker {
			open = !open
		}
	}
	return open
}

// Section returns the level-2 section titled heading: from the first line
// matching "## heading" (trailing whitespace ignored) through the line before
// the next "## " line or the end of the document.
func Section(doc, heading string) (string, bool) {
	pattern := regexp.MustCompile(`^##\s+` + regexp.QuoteMeta(heading) + `\s*$`)
	lines := SplitLines(doc)

	start := -1
	for i, line := range lines {
		if pattern.MatchString(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "## ") {
			end = i
			break
		}
	}
	return strings.Join(lines[start:end], "\n"), true
}

// HasSection reports whether a "## heading" line exists.
func HasSection(doc, heading string) bool {
	_, ok := Section(doc, heading)
	return ok
}
