package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/caseline-ai/caseline/internal/api"
	"github.com/caseline-ai/caseline/internal/domain"
	"github.com/caseline-ai/caseline/internal/service"
)

type CaseIngestor interface {
	ProcessDocument(ctx context.Context, input service.IngestInput) (*domain.Case, error)
	ProcessBatch(ctx context.Context, inputs []service.IngestInput) []service.BatchResult
}

type CaseReader interface {
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	Delete(ctx context.Context, id string) error
	ListCases(ctx context.Context, input service.ListCasesInput) (*service.ListCasesOutput, error)
}

type CaseHandler struct {
	ingestor CaseIngestor
	cases    CaseReader
}

func NewCaseHandler(ingestor CaseIngestor, cases CaseReader) *CaseHandler {
	return &CaseHandler{ingestor: ingestor, cases: cases}
}

type CourtRequest struct {
	Name         string `json:"name"`
	Jurisdiction string `json:"jurisdiction"`
	BenchType    string `json:"bench_type"`
}

type IngestCaseRequest struct {
	CaseNumber string            `json:"case_number"`
	Title      string            `json:"title"`
	DecidedAt  string            `json:"decided_at"`
	Court      CourtRequest      `json:"court"`
	FullText   string            `json:"full_text"`
	Metadata   map[string]string `json:"metadata"`
}

type BatchIngestRequest struct {
	Cases []IngestCaseRequest `json:"cases"`
}

type CaseResponse struct {
	ID         string            `json:"id"`
	CaseNumber string            `json:"case_number"`
	Title      string            `json:"title"`
	DecidedAt  string            `json:"decided_at,omitempty"`
	Court      CourtRequest      `json:"court"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  string            `json:"created_at"`
}

type CaseDetailResponse struct {
	CaseResponse
	FullText string `json:"full_text"`
}

func caseToResponse(c *domain.Case) CaseResponse {
	resp := CaseResponse{
		ID:         c.ID,
		CaseNumber: c.CaseNumber,
		Title:      c.Title,
		Court: CourtRequest{
			Name:         c.Court.Name,
			Jurisdiction: c.Court.Jurisdiction,
			BenchType:    c.Court.BenchType,
		},
		Metadata:  c.Metadata,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	if !c.DecidedAt.IsZero() {
		resp.DecidedAt = c.DecidedAt.Format("2006-01-02")
	}
	return resp
}

// dateFormats are the ingestion payload date layouts accepted, most specific
// first.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"January 2, 2006",
	"2 January 2006",
}

// parseDate normalizes the decided_at payload field. Empty input is allowed;
// unparseable input is not.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range dateFormats {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (r *IngestCaseRequest) toInput() (service.IngestInput, error) {
	decidedAt, err := parseDate(r.DecidedAt)
	if err != nil {
		return service.IngestInput{}, err
	}
	return service.IngestInput{
		CaseNumber: r.CaseNumber,
		Title:      r.Title,
		DecidedAt:  decidedAt,
		Court: domain.Court{
			Name:         r.Court.Name,
			Jurisdiction: r.Court.Jurisdiction,
			BenchType:    r.Court.BenchType,
		},
		FullText: r.FullText,
		Metadata: r.Metadata,
	}, nil
}

func (h *CaseHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CaseNumber == "" {
		api.Error(w, http.StatusBadRequest, "case_number is required")
		return
	}
	if req.Title == "" {
		api.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.FullText == "" {
		api.Error(w, http.StatusBadRequest, "full_text is required")
		return
	}

	input, err := req.toInput()
	if err != nil {
		api.Error(w, http.StatusBadRequest, "unrecognized decided_at date format")
		return
	}

	c, err := h.ingestor.ProcessDocument(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, caseToResponse(c))
}

type BatchItemResponse struct {
	CaseNumber string `json:"case_number"`
	CaseID     string `json:"case_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type BatchIngestResponse struct {
	Results   []BatchItemResponse `json:"results"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

func (h *CaseHandler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchIngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Cases) == 0 {
		api.Error(w, http.StatusBadRequest, "cases is required")
		return
	}

	inputs := make([]service.IngestInput, len(req.Cases))
	for i, item := range req.Cases {
		input, err := item.toInput()
		if err != nil {
			api.Error(w, http.StatusBadRequest, "unrecognized decided_at date format for case "+item.CaseNumber)
			return
		}
		inputs[i] = input
	}

	results := h.ingestor.ProcessBatch(r.Context(), inputs)

	resp := BatchIngestResponse{Results: make([]BatchItemResponse, len(results))}
	for i, res := range results {
		item := BatchItemResponse{CaseNumber: res.CaseNumber, CaseID: res.CaseID}
		if res.Err != nil {
			item.Error = res.Err.Error()
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Results[i] = item
	}

	api.Success(w, http.StatusOK, resp)
}

func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	c, err := h.cases.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, CaseDetailResponse{
		CaseResponse: caseToResponse(c),
		FullText:     c.FullText,
	})
}

type DeleteCaseResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (h *CaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.cases.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DeleteCaseResponse{ID: id, Deleted: true})
}

type CaseListResponse struct {
	Items   []CaseResponse `json:"items"`
	Cursor  string         `json:"cursor,omitempty"`
	HasMore bool           `json:"has_more"`
}

func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	output, err := h.cases.ListCases(r.Context(), service.ListCasesInput{
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]CaseResponse, len(output.Items))
	for i, c := range output.Items {
		items[i] = caseToResponse(c)
	}

	api.Success(w, http.StatusOK, CaseListResponse{
		Items:   items,
		Cursor:  output.Cursor,
		HasMore: output.HasMore,
	})
}
