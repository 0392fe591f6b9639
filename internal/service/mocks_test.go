package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/caseline-ai/caseline/internal/domain"
	"github.com/caseline-ai/caseline/internal/pagination"
)

// MockCaseRepository is a mock implementation of CaseRepositoryInterface
type MockCaseRepository struct {
	mock.Mock
}

func (m *MockCaseRepository) Create(ctx context.Context, c *domain.Case) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCaseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseRepository) GetByNumber(ctx context.Context, caseNumber string) (*domain.Case, error) {
	args := m.Called(ctx, caseNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCaseRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*CasePageResult, error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CasePageResult), args.Error(1)
}

// MockChunkRepository is a mock implementation of ChunkRepositoryInterface
type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) InsertChunks(ctx context.Context, chunks []domain.CaseChunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockChunkRepository) DeleteByCase(ctx context.Context, caseID string) error {
	args := m.Called(ctx, caseID)
	return args.Error(0)
}

func (m *MockChunkRepository) CountByCase(ctx context.Context, caseID string) (int, error) {
	args := m.Called(ctx, caseID)
	return args.Int(0), args.Error(1)
}

func (m *MockChunkRepository) VectorSearch(ctx context.Context, embedding []float32, limit int) ([]*ChunkMatch, error) {
	args := m.Called(ctx, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ChunkMatch), args.Error(1)
}

func (m *MockChunkRepository) LexicalSearch(ctx context.Context, query string, limit int) ([]*ChunkMatch, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ChunkMatch), args.Error(1)
}

// stubTxRunner hands the same repositories to every transaction function.
type stubTxRunner struct {
	cases    CaseRepositoryInterface
	chunks   ChunkRepositoryInterface
	beginErr error
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	if s.beginErr != nil {
		return s.beginErr
	}
	return fn(s)
}

func (s *stubTxRunner) Cases() CaseRepositoryInterface   { return s.cases }
func (s *stubTxRunner) Chunks() ChunkRepositoryInterface { return s.chunks }

// fakeEmbedder returns deterministic vectors without network calls. Safe for
// concurrent use.
type fakeEmbedder struct {
	dims  int
	err   error
	calls int32
}

func newFakeEmbedder(dims int) *fakeEmbedder {
	return &fakeEmbedder{dims: dims}
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := f.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

func (f *fakeEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, f.dims)
		for j := range v {
			v[j] = float32(len(text)%7) * 0.1
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int {
	return f.dims
}

// seqUUIDGenerator yields predictable IDs for assertions.
type seqUUIDGenerator struct {
	n int32
}

func (g *seqUUIDGenerator) NewString() string {
	return fmt.Sprintf("uuid-%04d", atomic.AddInt32(&g.n, 1))
}
