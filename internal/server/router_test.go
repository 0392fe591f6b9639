package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/caseline-ai/caseline/internal/api/handlers"
	"github.com/caseline-ai/caseline/internal/domain"
	"github.com/caseline-ai/caseline/internal/service"
)

type MockIngestor struct {
	mock.Mock
}

func (m *MockIngestor) ProcessDocument(ctx context.Context, input service.IngestInput) (*domain.Case, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockIngestor) ProcessBatch(ctx context.Context, inputs []service.IngestInput) []service.BatchResult {
	args := m.Called(ctx, inputs)
	return args.Get(0).([]service.BatchResult)
}

type MockCaseService struct {
	mock.Mock
}

func (m *MockCaseService) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCaseService) ListCases(ctx context.Context, input service.ListCasesInput) (*service.ListCasesOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListCasesOutput), args.Error(1)
}

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, input service.SearchInput) (*service.SearchOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SearchOutput), args.Error(1)
}

func setupRouter() (http.Handler, *MockIngestor, *MockCaseService, *MockSearchService) {
	ingestor := new(MockIngestor)
	caseSvc := new(MockCaseService)
	searchSvc := new(MockSearchService)

	cfg := RouterConfig{
		CaseHandler:   handlers.NewCaseHandler(ingestor, caseSvc),
		SearchHandler: handlers.NewSearchHandler(searchSvc),
	}

	return NewRouter(cfg), ingestor, caseSvc, searchSvc
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_IngestRoute(t *testing.T) {
	router, ingestor, _, _ := setupRouter()

	created := &domain.Case{
		ID:         "case-1",
		CaseNumber: "CA-2020-0007",
		Title:      "Carlill v. Carbolic Smoke Ball Co",
		CreatedAt:  time.Now().UTC(),
	}
	ingestor.On("ProcessDocument", mock.Anything, mock.Anything).Return(created, nil)

	body := `{"case_number": "CA-2020-0007", "title": "Carlill v. Carbolic Smoke Ball Co", "full_text": "The offer was accepted by performance."}`
	req := httptest.NewRequest(http.MethodPost, "/cases", strings.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	ingestor.AssertExpectations(t)
}

func TestRouter_SearchRoute(t *testing.T) {
	router, _, _, searchSvc := setupRouter()

	searchSvc.On("Search", mock.Anything, mock.Anything).Return(&service.SearchOutput{
		Results: []service.SearchResult{},
		Mode:    service.SearchModeHybrid,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query": "consideration"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	searchSvc.AssertExpectations(t)
}

func TestRouter_CaseRoutes(t *testing.T) {
	router, _, caseSvc, _ := setupRouter()

	caseSvc.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrCaseNotFound)
	caseSvc.On("Delete", mock.Anything, "case-1").Return(nil)
	caseSvc.On("ListCases", mock.Anything, mock.Anything).Return(&service.ListCasesOutput{Items: []*domain.Case{}}, nil)

	routes := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/cases/missing", http.StatusNotFound},
		{http.MethodDelete, "/cases/case-1", http.StatusOK},
		{http.MethodGet, "/cases", http.StatusOK},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, route.want, w.Code)
		})
	}
}

func TestRouter_BodyLimit(t *testing.T) {
	router, _, _, _ := setupRouter()

	oversized := strings.Repeat("a", 26*1024*1024)
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query": "`+oversized+`"}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
