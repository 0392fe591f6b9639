package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/caseline-ai/caseline/internal/domain"
	"github.com/caseline-ai/caseline/internal/service"
)

// ChunkRepository handles persistence and retrieval of case chunks.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// InsertChunks writes a batch of chunks. Callers run this inside a
// transaction together with the case row so a failed ingest leaves nothing
// behind.
func (r *ChunkRepository) InsertChunks(ctx context.Context, chunks []domain.CaseChunk) error {
	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO case_chunks
				(id, case_id, embedding_type, section_type, chunk_index, content, citations, token_count, has_overlap, embedding, created_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			c.ID,
			c.CaseID,
			c.EmbeddingType,
			c.SectionType,
			c.ChunkIndex,
			c.Content,
			c.Citations,
			c.TokenCount,
			c.HasOverlap,
			pgvector.NewVector(c.Embedding),
			createdAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ChunkRepository) DeleteByCase(ctx context.Context, caseID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM case_chunks WHERE case_id = $1`, caseID)
	return err
}

func (r *ChunkRepository) CountByCase(ctx context.Context, caseID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM case_chunks WHERE case_id = $1`, caseID).Scan(&count)
	return count, err
}

// VectorSearch returns the chunks nearest to the query embedding by cosine
// distance. Score is cosine similarity in [-1, 1]; ties break toward the most
// recently ingested case.
func (r *ChunkRepository) VectorSearch(ctx context.Context, embedding []float32, limit int) ([]*service.ChunkMatch, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx,
		`SELECT cc.id, cc.case_id, ca.case_number, ca.title, ca.court, cc.section_type, cc.content, cc.citations,
		        1 - (cc.embedding <=> $1) AS score, ca.created_at
		 FROM case_chunks cc
		 JOIN cases ca ON ca.id = cc.case_id
		 ORDER BY cc.embedding <=> $1 ASC, ca.created_at DESC, cc.id
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChunkMatches(rows)
}

// LexicalSearch matches chunks with English full-text search, scored by
// ts_rank_cd. Queries with no matching terms return an empty slice.
func (r *ChunkRepository) LexicalSearch(ctx context.Context, query string, limit int) ([]*service.ChunkMatch, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx,
		`SELECT cc.id, cc.case_id, ca.case_number, ca.title, ca.court, cc.section_type, cc.content, cc.citations,
		        ts_rank_cd(to_tsvector('english', cc.content), plainto_tsquery('english', $1)) AS score,
		        ca.created_at
		 FROM case_chunks cc
		 JOIN cases ca ON ca.id = cc.case_id
		 WHERE to_tsvector('english', cc.content) @@ plainto_tsquery('english', $1)
		 ORDER BY score DESC, ca.created_at DESC, cc.id
		 LIMIT $2`,
		query, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChunkMatches(rows)
}

func scanChunkMatches(rows pgx.Rows) ([]*service.ChunkMatch, error) {
	results := make([]*service.ChunkMatch, 0)
	for rows.Next() {
		var m service.ChunkMatch
		var section string
		if err := rows.Scan(&m.ChunkID, &m.CaseID, &m.CaseNumber, &m.CaseTitle, &m.CaseCourt, &section, &m.Content, &m.Citations, &m.Score, &m.CaseCreatedAt); err != nil {
			return nil, err
		}
		m.Section = domain.SectionType(section)
		results = append(results, &m)
	}
	return results, rows.Err()
}
