package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/caseline-ai/caseline/internal/domain"
	"github.com/caseline-ai/caseline/internal/telemetry"
)

// SearchMode selects the retrieval strategy.
type SearchMode string

const (
	SearchModeVector SearchMode = "vector"
	SearchModeHybrid SearchMode = "hybrid"
)

// SearchConfig tunes retrieval behavior.
type SearchConfig struct {
	// DefaultTopK applies when the request leaves TopK unset.
	DefaultTopK int
	// MaxTopK is the hard ceiling requests are clamped to.
	MaxTopK int
	// VectorWeight and LexicalWeight blend normalized sub-query scores.
	VectorWeight  float64
	LexicalWeight float64
	// SubQueryTimeout bounds each hybrid sub-query.
	SubQueryTimeout time.Duration
	// MinSimilarity drops vector hits below this cosine similarity.
	MinSimilarity float64
}

func (c *SearchConfig) applyDefaults() {
	if c.DefaultTopK <= 0 {
		c.DefaultTopK = 10
	}
	if c.MaxTopK <= 0 {
		c.MaxTopK = 100
	}
	if c.VectorWeight <= 0 && c.LexicalWeight <= 0 {
		c.VectorWeight = 0.6
		c.LexicalWeight = 0.4
	}
	if c.SubQueryTimeout <= 0 {
		c.SubQueryTimeout = 5 * time.Second
	}
}

// SearchInput is one retrieval request.
type SearchInput struct {
	Query string
	Mode  SearchMode
	TopK  int
}

// SearchResult is one fused retrieval hit.
type SearchResult struct {
	ChunkID    string
	CaseID     string
	CaseNumber string
	CaseTitle  string
	CaseCourt  domain.Court
	Section    domain.SectionType
	Content    string
	Citations  []string
	Score      float64
}

// SearchOutput carries results plus degradation flags: when a hybrid
// sub-query fails or times out, the response is built from the surviving one
// and the corresponding flag is set.
type SearchOutput struct {
	Results         []SearchResult
	Mode            SearchMode
	VectorDegraded  bool
	LexicalDegraded bool
}

// SearchService answers vector and hybrid retrieval queries over ingested
// case chunks.
type SearchService struct {
	chunkRepo ChunkRepositoryInterface
	embedder  EmbeddingGenerator
	cfg       SearchConfig
}

func NewSearchService(chunkRepo ChunkRepositoryInterface, embedder EmbeddingGenerator, cfg SearchConfig) *SearchService {
	cfg.applyDefaults()
	return &SearchService{
		chunkRepo: chunkRepo,
		embedder:  embedder,
		cfg:       cfg,
	}
}

// Search runs one retrieval query. Mode defaults to hybrid. TopK defaults to
// the configured value and is clamped to the ceiling.
func (s *SearchService) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	mode := input.Mode
	if mode == "" {
		mode = SearchModeHybrid
	}

	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		SearchMode: string(mode),
		Operation:  "search",
	})
	defer span.End()

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	topK := input.TopK
	if topK <= 0 {
		topK = s.cfg.DefaultTopK
	}
	if topK > s.cfg.MaxTopK {
		topK = s.cfg.MaxTopK
	}

	switch mode {
	case SearchModeVector:
		return s.vectorSearch(ctx, query, topK)
	case SearchModeHybrid:
		return s.hybridSearch(ctx, query, topK)
	default:
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "unknown search mode: "+string(mode))
	}
}

func (s *SearchService) vectorSearch(ctx context.Context, query string, topK int) (*SearchOutput, error) {
	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, domain.NewEmbeddingError(err)
	}

	matches, err := s.chunkRepo.VectorSearch(ctx, embedding, topK)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStoreUnavailable, "vector search failed", err)
	}
	matches = s.applySimilarityFloor(matches)

	// Cosine similarity lives in [-1, 1]; response scores are [0, 1], so
	// anti-correlated hits floor at zero.
	results := make([]SearchResult, 0, len(matches))
	for _, m := range matches {
		score := m.Score
		if score < 0 {
			score = 0
		}
		results = append(results, matchToResult(m, score))
	}
	sortResults(results)
	if len(results) > topK {
		results = results[:topK]
	}

	return &SearchOutput{Results: results, Mode: SearchModeVector}, nil
}

func (s *SearchService) hybridSearch(ctx context.Context, query string, topK int) (*SearchOutput, error) {
	var (
		wg         sync.WaitGroup
		vectorHits []*ChunkMatch
		vectorErr  error
		lexHits    []*ChunkMatch
		lexErr     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		subCtx, cancel := context.WithTimeout(ctx, s.cfg.SubQueryTimeout)
		defer cancel()

		embedding, err := s.embedder.GenerateEmbedding(subCtx, query)
		if err != nil {
			vectorErr = err
			return
		}
		hits, err := s.chunkRepo.VectorSearch(subCtx, embedding, topK)
		if err != nil {
			vectorErr = err
			return
		}
		vectorHits = s.applySimilarityFloor(hits)
	}()
	go func() {
		defer wg.Done()
		subCtx, cancel := context.WithTimeout(ctx, s.cfg.SubQueryTimeout)
		defer cancel()

		lexHits, lexErr = s.chunkRepo.LexicalSearch(subCtx, query, topK)
	}()
	wg.Wait()

	if vectorErr != nil && lexErr != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStoreUnavailable, "all search backends failed", vectorErr)
	}
	if vectorErr != nil {
		telemetry.CaptureError(ctx, vectorErr)
	}
	if lexErr != nil {
		telemetry.CaptureError(ctx, lexErr)
	}

	results := fuseMatches(vectorHits, lexHits, s.cfg.VectorWeight, s.cfg.LexicalWeight)
	if len(results) > topK {
		results = results[:topK]
	}

	return &SearchOutput{
		Results:         results,
		Mode:            SearchModeHybrid,
		VectorDegraded:  vectorErr != nil,
		LexicalDegraded: lexErr != nil,
	}, nil
}

func (s *SearchService) applySimilarityFloor(matches []*ChunkMatch) []*ChunkMatch {
	if s.cfg.MinSimilarity <= 0 {
		return matches
	}
	kept := matches[:0]
	for _, m := range matches {
		if m.Score >= s.cfg.MinSimilarity {
			kept = append(kept, m)
		}
	}
	return kept
}

func matchToResult(m *ChunkMatch, score float64) SearchResult {
	return SearchResult{
		ChunkID:    m.ChunkID,
		CaseID:     m.CaseID,
		CaseNumber: m.CaseNumber,
		CaseTitle:  m.CaseTitle,
		CaseCourt:  m.CaseCourt,
		Section:    m.Section,
		Content:    m.Content,
		Citations:  m.Citations,
		Score:      score,
	}
}
