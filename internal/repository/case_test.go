//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseline-ai/caseline/internal/domain"
	"github.com/caseline-ai/caseline/internal/pagination"
	"github.com/caseline-ai/caseline/internal/testutil"
)

func newTestCase(suffix string) *domain.Case {
	return &domain.Case{
		ID:         uuid.NewString(),
		CaseNumber: "CA-2021-" + suffix,
		Title:      "Appeal No. " + suffix,
		DecidedAt:  time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC),
		Court: domain.Court{
			Name:         "High Court",
			Jurisdiction: "Sindh",
			BenchType:    "division",
		},
		FullText:  "The appellant challenged the order of the trial court.",
		Metadata:  map[string]string{"reporter": "PLD"},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestCaseRepository_Create(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	caseRepo := NewCaseRepository(pool)

	c := newTestCase("0001")
	require.NoError(t, caseRepo.Create(ctx, c))

	retrieved, err := caseRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.CaseNumber, retrieved.CaseNumber)
	assert.Equal(t, c.Title, retrieved.Title)
	assert.Equal(t, c.Court, retrieved.Court)
	assert.Equal(t, c.Metadata, retrieved.Metadata)
	assert.True(t, retrieved.DecidedAt.Equal(c.DecidedAt))
	assert.Equal(t, c.FullText, retrieved.FullText)
}

func TestCaseRepository_Create_WithoutDecidedAt(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	caseRepo := NewCaseRepository(pool)

	c := newTestCase("0002")
	c.DecidedAt = time.Time{}
	require.NoError(t, caseRepo.Create(ctx, c))

	retrieved, err := caseRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, retrieved.DecidedAt.IsZero())
}

func TestCaseRepository_Create_DuplicateNumber(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	caseRepo := NewCaseRepository(pool)

	first := newTestCase("0003")
	require.NoError(t, caseRepo.Create(ctx, first))

	second := newTestCase("0003")
	err := caseRepo.Create(ctx, second)
	assert.ErrorIs(t, err, domain.ErrDuplicateCase)
}

func TestCaseRepository_GetByNumber(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	caseRepo := NewCaseRepository(pool)

	c := newTestCase("0004")
	require.NoError(t, caseRepo.Create(ctx, c))

	retrieved, err := caseRepo.GetByNumber(ctx, c.CaseNumber)
	require.NoError(t, err)
	assert.Equal(t, c.ID, retrieved.ID)

	_, err = caseRepo.GetByNumber(ctx, "CA-9999-0000")
	assert.ErrorIs(t, err, domain.ErrCaseNotFound)
}

func TestCaseRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	caseRepo := NewCaseRepository(pool)

	_, err := caseRepo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrCaseNotFound)
}

func TestCaseRepository_Delete_CascadesChunks(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	caseRepo := NewCaseRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	c := newTestCase("0005")
	require.NoError(t, caseRepo.Create(ctx, c))
	require.NoError(t, chunkRepo.InsertChunks(ctx, []domain.CaseChunk{
		newTestChunk(c.ID, 0, "The order is set aside.", 0),
	}))

	require.NoError(t, caseRepo.Delete(ctx, c.ID))

	_, err := caseRepo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrCaseNotFound)

	count, err := chunkRepo.CountByCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCaseRepository_Delete_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	caseRepo := NewCaseRepository(pool)

	err := caseRepo.Delete(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrCaseNotFound)
}

func TestCaseRepository_ListWithCursor(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	caseRepo := NewCaseRepository(pool)

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 5; i++ {
		c := newTestCase(fmt.Sprintf("%04d", 100+i))
		c.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, caseRepo.Create(ctx, c))
	}

	page1, err := caseRepo.ListWithCursor(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.True(t, page1.HasMore)
	assert.NotEmpty(t, page1.NextCursor)
	assert.Equal(t, "CA-2021-0104", page1.Items[0].CaseNumber)
	assert.Equal(t, "CA-2021-0103", page1.Items[1].CaseNumber)

	cursor, err := pagination.DecodeCursor(page1.NextCursor)
	require.NoError(t, err)

	page2, err := caseRepo.ListWithCursor(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.True(t, page2.HasMore)
	assert.Equal(t, "CA-2021-0102", page2.Items[0].CaseNumber)
	assert.Equal(t, "CA-2021-0101", page2.Items[1].CaseNumber)

	cursor, err = pagination.DecodeCursor(page2.NextCursor)
	require.NoError(t, err)

	page3, err := caseRepo.ListWithCursor(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.False(t, page3.HasMore)
	assert.Empty(t, page3.NextCursor)
	assert.Equal(t, "CA-2021-0100", page3.Items[0].CaseNumber)
}
