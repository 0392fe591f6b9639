package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/caseline-ai/caseline/internal/chunker"
	"github.com/caseline-ai/caseline/internal/domain"
	"github.com/caseline-ai/caseline/internal/pagination"
)

// CaseRepositoryInterface defines the repository interface for case persistence
type CaseRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	GetByNumber(ctx context.Context, caseNumber string) (*domain.Case, error)
	Delete(ctx context.Context, id string) error
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*CasePageResult, error)
}

type CasePageResult struct {
	Items      []*domain.Case
	NextCursor string
	HasMore    bool
}

// ChunkRepositoryInterface defines the repository interface for chunk
// persistence and retrieval.
type ChunkRepositoryInterface interface {
	InsertChunks(ctx context.Context, chunks []domain.CaseChunk) error
	DeleteByCase(ctx context.Context, caseID string) error
	CountByCase(ctx context.Context, caseID string) (int, error)
	VectorSearch(ctx context.Context, embedding []float32, limit int) ([]*ChunkMatch, error)
	LexicalSearch(ctx context.Context, query string, limit int) ([]*ChunkMatch, error)
}

// ChunkMatch is one retrieval hit before fusion. Score semantics depend on
// the source: cosine similarity for vector hits, ts_rank_cd for lexical hits.
type ChunkMatch struct {
	ChunkID       string
	CaseID        string
	CaseNumber    string
	CaseTitle     string
	CaseCourt     domain.Court
	Section       domain.SectionType
	Content       string
	Citations     []string
	Score         float64
	CaseCreatedAt time.Time
}

// EmbeddingGenerator produces embedding vectors for text.
type EmbeddingGenerator interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// ChunkSplitter cuts judgment text into chunks.
type ChunkSplitter interface {
	Split(text string) []chunker.Chunk
	SplitCitationBlocks(text string) []chunker.Chunk
}

// CaseArchiver stores a durable copy of ingested full text.
type CaseArchiver interface {
	ArchiveCaseText(ctx context.Context, caseID string, text []byte) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}
