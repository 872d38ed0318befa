package domain

import "fmt"

// FindingSeverity indicates how severe a finding is.
type FindingSeverity string

const (
	// SeverityError indicates a finding that blocks publication.
	SeverityError FindingSeverity = "error"
	// SeverityWarning indicates an advisory finding that should be reviewed.
	SeverityWarning FindingSeverity = "warning"
)

// Finding type constants identify the kind of issue found.
const (
	FindingSchema              = "schema"
	FindingDuplicateID         = "duplicate_id"
	FindingDuplicatePath       = "duplicate_path"
	FindingSelfPrerequisite    = "self_prerequisite"
	FindingUnknownPrerequisite = "unknown_prerequisite"
	FindingPrerequisiteOrder   = "prerequisite_order"
	FindingPrerequisiteCycle   = "prerequisite_cycle"
	FindingInvalidPath         = "invalid_path"
	FindingPathConvention      = "path_convention"
	FindingMissingFile         = "missing_file"
	FindingMissingHeading      = "missing_heading"
	FindingTitleMismatch       = "title_mismatch"
	FindingHeadingPosition     = "heading_position"
	FindingHeadingCount        = "heading_count"
	FindingFenceLanguage       = "fence_language"
	FindingUnclosedFence       = "unclosed_fence"
	FindingMissingSection      = "missing_section"
	FindingBranchName          = "branch_name"
	FindingBrokenLink          = "broken_link"
	FindingLinkLabel           = "link_label"
	FindingLinkForm            = "link_form"
	FindingRawPath             = "raw_path"
	FindingExpectedHeading     = "expected_heading"
	FindingUnreferencedFile    = "unreferenced_file"
	FindingInternal            = "internal"
)

// Finding represents a validation issue discovered during a check run.
type Finding struct {
	Type     string
	Severity FindingSeverity
	Message  string
	Path     string
}

// Sink is the append-only collector every validator writes its findings to.
// The zero value is ready to use.
type Sink struct {
	findings []Finding
}

// Errorf records an error-level finding.
func (s *Sink) Errorf(typ, path, format string, args ...any) {
	s.add(typ, SeverityError, path, fmt.Sprintf(format, args...))
}

// Warnf records a warning-level finding.
func (s *Sink) Warnf(typ, path, format string, args ...any) {
	s.add(typ, SeverityWarning, path, fmt.Sprintf(format, args...))
}

func (s *Sink) add(typ string, sev FindingSeverity, path, msg string) {
	s.findings = append(s.findings, Finding{
		Type:     typ,
		Severity: sev,
		Message:  msg,
		Path:     path,
	})
}

// Findings returns a copy of all findings in the order they were recorded.
func (s *Sink) Findings() []Finding {
	out := make([]Finding, len(s.findings))
	copy(out, s.findings)
	return out
}

// Counts returns the number of errors and warnings recorded so far.
func (s *Sink) Counts() (errs, warns int) {
	for _, f := range s.findings {
		if f.Severity == SeverityError {
			errs++
		} else {
			warns++
		}
	}
	return errs, warns
}

// OK reports whether no error-level finding has been recorded.
func (s *Sink) OK() bool {
	errs, _ := s.Counts()
	return errs == 0
}
