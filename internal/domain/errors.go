package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeDuplicateCase    = "DUPLICATE_CASE"
	ErrCodeEmbeddingFailed  = "EMBEDDING_FAILED"
	ErrCodeIngestionFailed  = "INGESTION_FAILED"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyFullText        = NewDomainError(ErrCodeValidation, "case full text is empty")
	ErrEmptyQuery           = NewDomainError(ErrCodeValidation, "search query is empty")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrWrongVectorDimension = NewDomainError(ErrCodeValidation, "embedding has wrong dimension")
)

// Lookup and conflict errors
var (
	ErrCaseNotFound  = NewDomainError(ErrCodeNotFound, "case not found")
	ErrChunkNotFound = NewDomainError(ErrCodeNotFound, "chunk not found")
	ErrDuplicateCase = NewDomainError(ErrCodeDuplicateCase, "a case with this case number already exists")
)

// Infrastructure errors
var (
	ErrStoreUnavailable = NewDomainError(ErrCodeStoreUnavailable, "storage backend unavailable")
)

// NewIngestionError wraps a cause as an ingestion failure for one case.
func NewIngestionError(caseNumber string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeIngestionFailed,
		fmt.Sprintf("ingestion failed for case %q", caseNumber), err)
}

// NewEmbeddingError wraps a cause as an embedding generation failure.
func NewEmbeddingError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeEmbeddingFailed, "embedding generation failed", err)
}
