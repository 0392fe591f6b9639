package domain

import "time"

// EmbeddingType tags which chunking pass produced a chunk's vector.
type EmbeddingType string

const (
	EmbeddingTypeFullText  EmbeddingType = "full_text"
	EmbeddingTypeSection   EmbeddingType = "section"
	EmbeddingTypeParagraph EmbeddingType = "paragraph"
	EmbeddingTypeCitation  EmbeddingType = "citation"
	EmbeddingTypeHolding   EmbeddingType = "holding"
	EmbeddingTypeHeadnote  EmbeddingType = "headnote"
)

// SectionType classifies the legal section a chunk was cut from.
type SectionType string

const (
	SectionFacts        SectionType = "facts"
	SectionIssues       SectionType = "issues"
	SectionArguments    SectionType = "arguments"
	SectionAnalysis     SectionType = "analysis"
	SectionHolding      SectionType = "holding"
	SectionHeadnotes    SectionType = "headnotes"
	SectionUnclassified SectionType = "unclassified"
)

// CaseChunk is one retrievable unit of a case: a bounded text span plus
// the embedding vector that represents it. Chunks are immutable after
// ingestion and are removed only when the owning case is deleted.
type CaseChunk struct {
	ID            string
	CaseID        string
	EmbeddingType EmbeddingType
	SectionType   SectionType
	ChunkIndex    int
	Content       string
	Citations     []string
	TokenCount    int
	HasOverlap    bool
	Embedding     []float32
	CreatedAt     time.Time
}
