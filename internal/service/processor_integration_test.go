//go:build integration

package service_test

import (
	"context"
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseline-ai/caseline/internal/chunker"
	"github.com/caseline-ai/caseline/internal/domain"
	"github.com/caseline-ai/caseline/internal/repository"
	"github.com/caseline-ai/caseline/internal/service"
	"github.com/caseline-ai/caseline/internal/testutil"
)

const testDims = 1536

// hashEmbedder maps each text to a deterministic nonzero vector so similar
// texts land on identical embeddings without any network calls.
type hashEmbedder struct{}

func (hashEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New32a()
	h.Write([]byte(text))
	v := make([]float32, testDims)
	v[int(h.Sum32())%testDims] = 1
	return v, nil
}

func (e hashEmbedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (hashEmbedder) Dimensions() int { return testDims }

const judgmentFullText = `CIVIL APPEAL NO. 1421 OF 2019

BRIEF FACTS

The appellant entered into an agreement to sell dated 12 March 2014 with the
respondent for a parcel of agricultural land. The respondent failed to appear
before the registrar on the appointed date and the sale deed was never
executed. The appellant filed a suit for specific performance which the trial
court decreed.

ANALYSIS

The principle settled in Donoghue v. Stevenson and reaffirmed in 2019 SCMR
1234 requires the party seeking equitable relief to demonstrate readiness and
willingness throughout. The record shows the appellant deposited the balance
consideration in court within the time allowed.

CONCLUSION

The appeal is allowed. The judgment of the High Court is set aside and the
decree of the trial court is restored.`

type ingestEnv struct {
	processor *service.DocumentProcessor
	cases     *service.CaseService
	search    *service.SearchService
	chunkRepo *repository.ChunkRepository
}

func setupIngestEnv(ctx context.Context, t *testing.T, policy service.DuplicatePolicy) *ingestEnv {
	pc := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { pc.Terminate(ctx) })

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	t.Cleanup(pool.Close)

	caseRepo := repository.NewCaseRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	txRunner := repository.NewTxRunner(pool)
	splitter := chunker.New(chunker.Config{ChunkSize: 60, Overlap: 10, MinChunkSize: 15})
	embedder := hashEmbedder{}

	processor := service.NewDocumentProcessor(txRunner, caseRepo, splitter, embedder, nil, service.ProcessorConfig{
		DuplicatePolicy: policy,
	})
	search := service.NewSearchService(chunkRepo, embedder, service.SearchConfig{})

	return &ingestEnv{
		processor: processor,
		cases:     service.NewCaseService(caseRepo),
		search:    search,
		chunkRepo: chunkRepo,
	}
}

func TestIntegration_IngestAndRetrieve(t *testing.T) {
	ctx := context.Background()
	env := setupIngestEnv(ctx, t, service.DuplicateReject)

	created, err := env.processor.ProcessDocument(ctx, service.IngestInput{
		CaseNumber: "CA-1421-2019",
		Title:      "Appeal against decree of specific performance",
		FullText:   judgmentFullText,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	retrieved, err := env.cases.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "CA-1421-2019", retrieved.CaseNumber)
	assert.Equal(t, judgmentFullText, retrieved.FullText)

	count, err := env.chunkRepo.CountByCase(ctx, created.ID)
	require.NoError(t, err)
	assert.Greater(t, count, 0)
}

func TestIntegration_DuplicateRejected(t *testing.T) {
	ctx := context.Background()
	env := setupIngestEnv(ctx, t, service.DuplicateReject)

	input := service.IngestInput{
		CaseNumber: "CA-1421-2019",
		Title:      "First ingest",
		FullText:   judgmentFullText,
	}
	_, err := env.processor.ProcessDocument(ctx, input)
	require.NoError(t, err)

	input.Title = "Second ingest"
	_, err = env.processor.ProcessDocument(ctx, input)
	assert.ErrorIs(t, err, domain.ErrDuplicateCase)
}

func TestIntegration_DuplicateReplaced(t *testing.T) {
	ctx := context.Background()
	env := setupIngestEnv(ctx, t, service.DuplicateReplace)

	first, err := env.processor.ProcessDocument(ctx, service.IngestInput{
		CaseNumber: "CA-1421-2019",
		Title:      "First ingest",
		FullText:   judgmentFullText,
	})
	require.NoError(t, err)

	second, err := env.processor.ProcessDocument(ctx, service.IngestInput{
		CaseNumber: "CA-1421-2019",
		Title:      "Second ingest",
		FullText:   judgmentFullText,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = env.cases.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrCaseNotFound)

	retrieved, err := env.cases.GetByNumber(ctx, "CA-1421-2019")
	require.NoError(t, err)
	assert.Equal(t, "Second ingest", retrieved.Title)

	orphaned, err := env.chunkRepo.CountByCase(ctx, first.ID)
	require.NoError(t, err)
	assert.Zero(t, orphaned)
}

func TestIntegration_HybridSearchRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := setupIngestEnv(ctx, t, service.DuplicateReject)

	_, err := env.processor.ProcessDocument(ctx, service.IngestInput{
		CaseNumber: "CA-1421-2019",
		Title:      "Specific performance appeal",
		FullText:   judgmentFullText,
	})
	require.NoError(t, err)

	output, err := env.search.Search(ctx, service.SearchInput{
		Query: "specific performance readiness and willingness",
		Mode:  service.SearchModeHybrid,
		TopK:  5,
	})
	require.NoError(t, err)
	assert.False(t, output.VectorDegraded)
	assert.False(t, output.LexicalDegraded)
	require.NotEmpty(t, output.Results)
	assert.LessOrEqual(t, len(output.Results), 5)

	found := false
	for _, res := range output.Results {
		if res.CaseNumber == "CA-1421-2019" {
			found = true
		}
		assert.NotEmpty(t, res.ChunkID)
		assert.NotEmpty(t, res.Content)
	}
	assert.True(t, found)
}

const mortgageJudgment = `SUIT NO. 204 OF 2018

BRIEF FACTS

The bank sued on a finance facility secured by hypothecation of the stock in
trade. The defendant admitted execution of the finance documents but pleaded
that the markup had been miscalculated.

CONCLUSION

The suit is decreed with costs against the defendant.`

func TestIntegration_HybridRanksRareTermCase(t *testing.T) {
	ctx := context.Background()
	env := setupIngestEnv(ctx, t, service.DuplicateReject)

	_, err := env.processor.ProcessDocument(ctx, service.IngestInput{
		CaseNumber: "CA-1421-2019",
		Title:      "Specific performance appeal",
		FullText:   judgmentFullText,
	})
	require.NoError(t, err)

	target, err := env.processor.ProcessDocument(ctx, service.IngestInput{
		CaseNumber: "SUIT-204-2018",
		Title:      "Recovery suit on hypothecated stock",
		FullText:   mortgageJudgment,
	})
	require.NoError(t, err)

	// One-hot query embeddings are orthogonal to every stored chunk, so with
	// the similarity floor on, ranking for a rare verbatim term rests on the
	// full-text side alone.
	search := service.NewSearchService(env.chunkRepo, hashEmbedder{}, service.SearchConfig{
		MinSimilarity: 0.5,
	})

	output, err := search.Search(ctx, service.SearchInput{
		Query: "hypothecation",
		Mode:  service.SearchModeHybrid,
		TopK:  10,
	})
	require.NoError(t, err)
	assert.False(t, output.VectorDegraded)
	assert.False(t, output.LexicalDegraded)
	require.NotEmpty(t, output.Results)

	assert.Equal(t, target.ID, output.Results[0].CaseID)
	for _, res := range output.Results {
		assert.Equal(t, "SUIT-204-2018", res.CaseNumber,
			"cases without the term must not outrank the one containing it")
	}
}

func TestIntegration_VectorSearchRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := setupIngestEnv(ctx, t, service.DuplicateReject)

	_, err := env.processor.ProcessDocument(ctx, service.IngestInput{
		CaseNumber: "CA-1421-2019",
		Title:      "Specific performance appeal",
		FullText:   judgmentFullText,
	})
	require.NoError(t, err)

	output, err := env.search.Search(ctx, service.SearchInput{
		Query: "anything",
		Mode:  service.SearchModeVector,
		TopK:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, service.SearchModeVector, output.Mode)
	assert.LessOrEqual(t, len(output.Results), 3)
}
