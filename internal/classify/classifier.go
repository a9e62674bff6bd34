// Package classify maps a finished process to the pdfproc error taxonomy.
//
// Stderr matching is best effort: phrases are tool-version specific, so they
// are data (Patterns) rather than code, and anything unmatched falls through
// to a ProcessFailed error that carries the raw stderr.
package classify

import (
	"fmt"
	"strings"

	"github.com/spherical/pdfproc/internal/domain"
)

// Patterns are the stderr phrases and exit codes recognised per error type.
// Matching is a case-insensitive substring test.
type Patterns struct {
	Password        []string `yaml:"password"`
	NotPDF          []string `yaml:"not_pdf"`
	PageRange       []string `yaml:"page_range"`
	Permission      []string `yaml:"permission"`
	PermissionCodes []int    `yaml:"permission_exit_codes"`
}

// DefaultPatterns returns the phrasing used by poppler 22.x to 24.x.
func DefaultPatterns() Patterns {
	return Patterns{
		Password:        []string{"Incorrect password"},
		NotPDF:          []string{"May not be a PDF file"},
		PageRange:       []string{"Wrong page range given"},
		Permission:      []string{"Permission Error"},
		PermissionCodes: []int{3},
	}
}

// Merge fills empty lists in p from defaults.
func (p Patterns) Merge(defaults Patterns) Patterns {
	if len(p.Password) == 0 {
		p.Password = defaults.Password
	}
	if len(p.NotPDF) == 0 {
		p.NotPDF = defaults.NotPDF
	}
	if len(p.PageRange) == 0 {
		p.PageRange = defaults.PageRange
	}
	if len(p.Permission) == 0 {
		p.Permission = defaults.Permission
	}
	if len(p.PermissionCodes) == 0 {
		p.PermissionCodes = defaults.PermissionCodes
	}
	return p
}

// Classifier turns non-zero exits into domain errors.
type Classifier struct {
	patterns Patterns
}

// New creates a classifier. Empty pattern lists fall back to DefaultPatterns.
func New(patterns Patterns) *Classifier {
	return &Classifier{patterns: patterns.Merge(DefaultPatterns())}
}

// Patterns returns the effective pattern set.
func (c *Classifier) Patterns() Patterns {
	return c.patterns
}

// Classify inspects a finished process. It returns nil for a zero exit.
// passwordGiven decides between PasswordRequired and IncorrectPassword.
func (c *Classifier) Classify(tool string, outcome *domain.Outcome, passwordGiven bool) error {
	if outcome == nil || outcome.ExitCode == 0 {
		return nil
	}

	stderr := strings.TrimSpace(string(outcome.Stderr))
	newErr := func(t domain.ErrorType, msg string) error {
		return &domain.DomainError{
			Type:     t,
			Message:  fmt.Sprintf("%s: %s", tool, msg),
			ExitCode: outcome.ExitCode,
			Stderr:   stderr,
		}
	}

	switch {
	case matchAny(stderr, c.patterns.Password):
		if passwordGiven {
			return newErr(domain.ErrorTypeIncorrectPassword, "incorrect password was provided")
		}
		return newErr(domain.ErrorTypePasswordRequired, "pdf is encrypted and no password was provided")
	case matchAny(stderr, c.patterns.NotPDF):
		return newErr(domain.ErrorTypeNotPDF, "input is not a pdf file")
	case matchAny(stderr, c.patterns.PageRange):
		return newErr(domain.ErrorTypePageOutOfRange, "requested pages are outside the document")
	case matchAny(stderr, c.patterns.Permission) || containsCode(c.patterns.PermissionCodes, outcome.ExitCode):
		return newErr(domain.ErrorTypePermissionDenied, "operation not permitted by the document")
	}

	return domain.ProcessFailedError(tool, outcome.ExitCode, stderr)
}

func matchAny(haystack string, needles []string) bool {
	if haystack == "" {
		return false
	}
	lower := strings.ToLower(haystack)
	for _, n := range needles {
		if n != "" && strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func containsCode(codes []int, code int) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
