package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/caseline-ai/caseline/internal/api"
	"github.com/caseline-ai/caseline/internal/service"
)

type Searcher interface {
	Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error)
}

type SearchHandler struct {
	svc Searcher
}

func NewSearchHandler(svc Searcher) *SearchHandler {
	return &SearchHandler{svc: svc}
}

type SearchRequest struct {
	Query string `json:"query"`
	Mode  string `json:"mode"`
	TopK  int    `json:"top_k"`
}

type SearchResultResponse struct {
	ChunkID    string       `json:"chunk_id"`
	CaseID     string       `json:"case_id"`
	CaseNumber string       `json:"case_number"`
	CaseTitle  string       `json:"case_title"`
	Court      CourtRequest `json:"court"`
	Section    string       `json:"section"`
	Content    string       `json:"content"`
	Citations  []string     `json:"citations,omitempty"`
	Score      float64      `json:"score"`
}

type DegradedResponse struct {
	Vector  bool `json:"vector"`
	Lexical bool `json:"lexical"`
}

type SearchResponse struct {
	Results  []SearchResultResponse `json:"results"`
	Mode     string                 `json:"mode"`
	Degraded DegradedResponse       `json:"degraded"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	output, err := h.svc.Search(r.Context(), service.SearchInput{
		Query: req.Query,
		Mode:  service.SearchMode(req.Mode),
		TopK:  req.TopK,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	results := make([]SearchResultResponse, len(output.Results))
	for i, res := range output.Results {
		results[i] = SearchResultResponse{
			ChunkID:    res.ChunkID,
			CaseID:     res.CaseID,
			CaseNumber: res.CaseNumber,
			CaseTitle:  res.CaseTitle,
			Court: CourtRequest{
				Name:         res.CaseCourt.Name,
				Jurisdiction: res.CaseCourt.Jurisdiction,
				BenchType:    res.CaseCourt.BenchType,
			},
			Section:    string(res.Section),
			Content:    res.Content,
			Citations:  res.Citations,
			Score:      res.Score,
		}
	}

	api.Success(w, http.StatusOK, SearchResponse{
		Results: results,
		Mode:    string(output.Mode),
		Degraded: DegradedResponse{
			Vector:  output.VectorDegraded,
			Lexical: output.LexicalDegraded,
		},
	})
}
