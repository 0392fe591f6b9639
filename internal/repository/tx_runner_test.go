//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseline-ai/caseline/internal/domain"
	"github.com/caseline-ai/caseline/internal/service"
	"github.com/caseline-ai/caseline/internal/testutil"
)

func TestTxRunner_Commit(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	runner := NewTxRunner(pool)
	c := newTestCase("2001")

	err := runner.WithTx(ctx, func(repos service.TxRepositories) error {
		if err := repos.Cases().Create(ctx, c); err != nil {
			return err
		}
		return repos.Chunks().InsertChunks(ctx, []domain.CaseChunk{
			newTestChunk(c.ID, 0, "The petition is maintainable.", 0),
		})
	})
	require.NoError(t, err)

	caseRepo := NewCaseRepository(pool)
	chunkRepo := NewChunkRepository(pool)

	_, err = caseRepo.GetByID(ctx, c.ID)
	require.NoError(t, err)

	count, err := chunkRepo.CountByCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTxRunner_RollbackLeavesNothing(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	runner := NewTxRunner(pool)
	c := newTestCase("2002")
	boom := errors.New("chunk insert failed")

	err := runner.WithTx(ctx, func(repos service.TxRepositories) error {
		if err := repos.Cases().Create(ctx, c); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	caseRepo := NewCaseRepository(pool)
	_, err = caseRepo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrCaseNotFound)
}
