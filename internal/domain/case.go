package domain

import (
	"strings"
	"time"
)

// Court describes the court that issued a judgment.
type Court struct {
	Name         string `json:"name"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	BenchType    string `json:"bench_type,omitempty"`
}

// Case represents one ingested judgment document. The full text is the
// single source of truth for every chunk derived from it.
type Case struct {
	ID         string
	CaseNumber string
	Title      string
	DecidedAt  time.Time
	Court      Court
	FullText   string
	Metadata   map[string]string
	CreatedAt  time.Time
}

// ValidateCase checks that a case carries everything ingestion needs.
func ValidateCase(c *Case) error {
	if c == nil {
		return NewDomainError(ErrCodeValidation, "case cannot be nil")
	}
	if c.ID == "" {
		return NewDomainError(ErrCodeValidation, "case ID is required")
	}
	if strings.TrimSpace(c.CaseNumber) == "" {
		return NewDomainError(ErrCodeValidation, "case number is required")
	}
	if strings.TrimSpace(c.Title) == "" {
		return NewDomainError(ErrCodeValidation, "case title is required")
	}
	if strings.TrimSpace(c.FullText) == "" {
		return ErrEmptyFullText
	}
	return nil
}
