package service

import (
	"context"

	"github.com/caseline-ai/caseline/internal/domain"
	"github.com/caseline-ai/caseline/internal/pagination"
	"github.com/caseline-ai/caseline/internal/telemetry"
)

// CaseService handles reads and deletion of ingested cases. Writes go
// through DocumentProcessor.
type CaseService struct {
	caseRepo CaseRepositoryInterface
}

func NewCaseService(caseRepo CaseRepositoryInterface) *CaseService {
	return &CaseService{caseRepo: caseRepo}
}

// GetByID retrieves a case by ID.
func (s *CaseService) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	ctx, span := telemetry.StartSpan(ctx, "CaseService.GetByID", telemetry.SpanAttributes{
		CaseID:    id,
		Operation: "get",
	})
	defer span.End()

	return s.caseRepo.GetByID(ctx, id)
}

// GetByNumber retrieves a case by its case number.
func (s *CaseService) GetByNumber(ctx context.Context, caseNumber string) (*domain.Case, error) {
	ctx, span := telemetry.StartSpan(ctx, "CaseService.GetByNumber", telemetry.SpanAttributes{
		CaseNumber: caseNumber,
		Operation:  "get",
	})
	defer span.End()

	return s.caseRepo.GetByNumber(ctx, caseNumber)
}

// Delete removes a case and, via the cascading foreign key, all its chunks.
func (s *CaseService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "CaseService.Delete", telemetry.SpanAttributes{
		CaseID:    id,
		Operation: "delete",
	})
	defer span.End()

	return s.caseRepo.Delete(ctx, id)
}

type ListCasesInput struct {
	Cursor string
	Limit  int
}

type ListCasesOutput struct {
	Items   []*domain.Case
	Cursor  string
	HasMore bool
}

// ListCases pages through cases newest first using a keyset cursor.
func (s *CaseService) ListCases(ctx context.Context, input ListCasesInput) (*ListCasesOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "CaseService.ListCases", telemetry.SpanAttributes{
		Operation: "list",
	})
	defer span.End()

	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid cursor")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	result, err := s.caseRepo.ListWithCursor(ctx, cursor, limit)
	if err != nil {
		return nil, err
	}

	return &ListCasesOutput{
		Items:   result.Items,
		Cursor:  result.NextCursor,
		HasMore: result.HasMore,
	}, nil
}
