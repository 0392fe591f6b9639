package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/caseline-ai/caseline/internal/chunker"
	"github.com/caseline-ai/caseline/internal/domain"
	"github.com/caseline-ai/caseline/internal/telemetry"
)

// DuplicatePolicy decides what happens when an ingested case number already
// exists.
type DuplicatePolicy string

const (
	// DuplicateReject fails the ingest with ErrDuplicateCase.
	DuplicateReject DuplicatePolicy = "reject"
	// DuplicateReplace deletes the existing case and its chunks, then inserts
	// the new one in the same transaction.
	DuplicateReplace DuplicatePolicy = "replace"
)

// ProcessorConfig tunes ingestion behavior.
type ProcessorConfig struct {
	// EmbedConcurrency caps parallel embedding requests per case.
	EmbedConcurrency int
	// EmbedBatchSize is how many chunk texts go into one embedding request.
	EmbedBatchSize int
	// BatchWorkers caps concurrently processed cases in ProcessBatch.
	BatchWorkers int
	// DuplicatePolicy is reject or replace. Empty means reject.
	DuplicatePolicy DuplicatePolicy
}

func (c *ProcessorConfig) applyDefaults() {
	if c.EmbedConcurrency <= 0 {
		c.EmbedConcurrency = 4
	}
	if c.EmbedBatchSize <= 0 {
		c.EmbedBatchSize = 32
	}
	if c.BatchWorkers <= 0 {
		c.BatchWorkers = 4
	}
	if c.DuplicatePolicy == "" {
		c.DuplicatePolicy = DuplicateReject
	}
}

// DocumentProcessor turns raw judgment documents into a case row plus
// embedded chunks. The case and every chunk land in a single transaction, so
// a failed ingest leaves no partial state.
type DocumentProcessor struct {
	txRunner TxRunner
	caseRepo CaseRepositoryInterface
	splitter ChunkSplitter
	embedder EmbeddingGenerator
	archiver CaseArchiver
	uuidGen  UUIDGenerator
	cfg      ProcessorConfig
}

// NewDocumentProcessor creates a DocumentProcessor. archiver may be nil when
// no object storage is configured.
func NewDocumentProcessor(
	txRunner TxRunner,
	caseRepo CaseRepositoryInterface,
	splitter ChunkSplitter,
	embedder EmbeddingGenerator,
	archiver CaseArchiver,
	cfg ProcessorConfig,
) *DocumentProcessor {
	cfg.applyDefaults()
	return &DocumentProcessor{
		txRunner: txRunner,
		caseRepo: caseRepo,
		splitter: splitter,
		embedder: embedder,
		archiver: archiver,
		uuidGen:  &DefaultUUIDGenerator{},
		cfg:      cfg,
	}
}

// NewDocumentProcessorWithUUIDGen creates a DocumentProcessor with a custom
// UUID generator (for testing).
func NewDocumentProcessorWithUUIDGen(
	txRunner TxRunner,
	caseRepo CaseRepositoryInterface,
	splitter ChunkSplitter,
	embedder EmbeddingGenerator,
	archiver CaseArchiver,
	cfg ProcessorConfig,
	uuidGen UUIDGenerator,
) *DocumentProcessor {
	p := NewDocumentProcessor(txRunner, caseRepo, splitter, embedder, archiver, cfg)
	p.uuidGen = uuidGen
	return p
}

// IngestInput is one judgment document to ingest.
type IngestInput struct {
	CaseNumber string
	Title      string
	DecidedAt  time.Time
	Court      domain.Court
	FullText   string
	Metadata   map[string]string
}

// BatchResult reports the outcome for one document of a batch.
type BatchResult struct {
	CaseNumber string
	CaseID     string
	Err        error
}

// ProcessDocument ingests a single judgment: validate, chunk, embed, persist.
// Two chunking passes run per case: a section-aware pass and a citation pass
// covering chunks that carry citation expressions.
func (p *DocumentProcessor) ProcessDocument(ctx context.Context, input IngestInput) (*domain.Case, error) {
	ctx, span := telemetry.StartSpan(ctx, "DocumentProcessor.ProcessDocument", telemetry.SpanAttributes{
		CaseNumber: input.CaseNumber,
		Operation:  "ingest",
	})
	defer span.End()

	now := time.Now().UTC()
	newCase := &domain.Case{
		ID:         p.uuidGen.NewString(),
		CaseNumber: input.CaseNumber,
		Title:      input.Title,
		DecidedAt:  input.DecidedAt,
		Court:      input.Court,
		FullText:   input.FullText,
		Metadata:   input.Metadata,
		CreatedAt:  now,
	}
	if err := domain.ValidateCase(newCase); err != nil {
		return nil, err
	}

	replaceID, err := p.resolveDuplicate(ctx, input.CaseNumber)
	if err != nil {
		return nil, err
	}

	chunks, err := p.buildChunks(ctx, newCase)
	if err != nil {
		return nil, err
	}

	err = p.txRunner.WithTx(ctx, func(repos TxRepositories) error {
		if replaceID != "" {
			if err := repos.Cases().Delete(ctx, replaceID); err != nil && !errors.Is(err, domain.ErrCaseNotFound) {
				return err
			}
		}
		if err := repos.Cases().Create(ctx, newCase); err != nil {
			return err
		}
		return repos.Chunks().InsertChunks(ctx, chunks)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateCase) {
			return nil, domain.ErrDuplicateCase
		}
		return nil, domain.NewIngestionError(input.CaseNumber, err)
	}

	p.archive(ctx, newCase)

	return newCase, nil
}

// ProcessBatch ingests documents concurrently under the worker cap. Each case
// succeeds or fails on its own; the result slice matches input order.
func (p *DocumentProcessor) ProcessBatch(ctx context.Context, inputs []IngestInput) []BatchResult {
	ctx, span := telemetry.StartSpan(ctx, "DocumentProcessor.ProcessBatch", telemetry.SpanAttributes{
		Operation: "ingest_batch",
	})
	defer span.End()

	results := make([]BatchResult, len(inputs))
	sem := make(chan struct{}, p.cfg.BatchWorkers)
	var wg sync.WaitGroup

	for i, input := range inputs {
		wg.Add(1)
		go func(i int, input IngestInput) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			c, err := p.ProcessDocument(ctx, input)
			res := BatchResult{CaseNumber: input.CaseNumber, Err: err}
			if err == nil {
				res.CaseID = c.ID
			}
			results[i] = res
		}(i, input)
	}
	wg.Wait()

	return results
}

// resolveDuplicate checks for an existing case with the same number and
// applies the configured policy. Returns the ID to replace, if any.
func (p *DocumentProcessor) resolveDuplicate(ctx context.Context, caseNumber string) (string, error) {
	existing, err := p.caseRepo.GetByNumber(ctx, caseNumber)
	if err != nil {
		if errors.Is(err, domain.ErrCaseNotFound) {
			return "", nil
		}
		return "", err
	}
	if p.cfg.DuplicatePolicy == DuplicateReplace {
		return existing.ID, nil
	}
	return "", domain.ErrDuplicateCase
}

// buildChunks runs both chunking passes and embeds every chunk text with
// bounded concurrency.
func (p *DocumentProcessor) buildChunks(ctx context.Context, c *domain.Case) ([]domain.CaseChunk, error) {
	type pending struct {
		chunk         chunker.Chunk
		embeddingType domain.EmbeddingType
	}

	var all []pending
	for _, ch := range p.splitter.Split(c.FullText) {
		all = append(all, pending{chunk: ch, embeddingType: domain.EmbeddingTypeSection})
	}
	for _, ch := range p.splitter.SplitCitationBlocks(c.FullText) {
		if len(ch.Citations) == 0 {
			continue
		}
		all = append(all, pending{chunk: ch, embeddingType: domain.EmbeddingTypeCitation})
	}
	if len(all) == 0 {
		return nil, domain.ErrEmptyFullText
	}

	texts := make([]string, len(all))
	for i, pc := range all {
		texts[i] = pc.chunk.Content
	}

	embeddings, err := p.embedTexts(ctx, texts)
	if err != nil {
		return nil, domain.NewEmbeddingError(err)
	}

	chunks := make([]domain.CaseChunk, len(all))
	for i, pc := range all {
		chunks[i] = domain.CaseChunk{
			ID:            p.uuidGen.NewString(),
			CaseID:        c.ID,
			EmbeddingType: pc.embeddingType,
			SectionType:   pc.chunk.Section,
			ChunkIndex:    pc.chunk.Index,
			Content:       pc.chunk.Content,
			Citations:     pc.chunk.Citations,
			TokenCount:    pc.chunk.TokenCount,
			HasOverlap:    pc.chunk.HasOverlap,
			Embedding:     embeddings[i],
			CreatedAt:     c.CreatedAt,
		}
	}
	return chunks, nil
}

// embedTexts fans embedding batches out to at most EmbedConcurrency in-flight
// requests and reassembles results in input order.
func (p *DocumentProcessor) embedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	sem := make(chan struct{}, p.cfg.EmbedConcurrency)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for start := 0; start < len(texts); start += p.cfg.EmbedBatchSize {
		end := start + p.cfg.EmbedBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed {
				return
			}

			embeddings, err := p.embedder.GenerateEmbeddings(ctx, texts[start:end])
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			copy(out[start:end], embeddings)
		}(start, end)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// archive pushes the raw text to object storage. Failures are logged and do
// not fail the ingest; the database copy is authoritative.
func (p *DocumentProcessor) archive(ctx context.Context, c *domain.Case) {
	if p.archiver == nil {
		return
	}
	if err := p.archiver.ArchiveCaseText(ctx, c.ID, []byte(c.FullText)); err != nil {
		log.Printf("archive: failed to store full text for case %s: %v", c.ID, err)
		telemetry.CaptureError(ctx, err)
	}
}
