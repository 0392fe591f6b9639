package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockStatsExecutor is a mock implementation of StatsExecutor
type MockStatsExecutor struct {
	mock.Mock
}

func (m *MockStatsExecutor) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	callArgs := m.Called(ctx, sql)
	return pgconn.CommandTag{}, callArgs.Error(0)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// Let it run for a bit
	time.Sleep(250 * time.Millisecond)

	// Stop worker
	worker.Stop()
	wg.Wait()

	// Verify ProcessJobs was called at least once
	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	// Start worker in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// Let it run for a bit
	time.Sleep(150 * time.Millisecond)

	// Cancel context
	cancel()
	wg.Wait()

	// Verify ProcessJobs was called
	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

func TestMaintenanceWorker_RefreshesAllTables(t *testing.T) {
	mockDB := new(MockStatsExecutor)
	mockDB.On("Exec", mock.Anything, "ANALYZE case_chunks").Return(nil)
	mockDB.On("Exec", mock.Anything, "ANALYZE cases").Return(nil)

	worker := NewMaintenanceWorker(mockDB)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockDB.AssertExpectations(t)
}

func TestMaintenanceWorker_ExecError(t *testing.T) {
	mockDB := new(MockStatsExecutor)
	mockDB.On("Exec", mock.Anything, "ANALYZE case_chunks").Return(errors.New("database error"))

	worker := NewMaintenanceWorker(mockDB)
	err := worker.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to analyze case_chunks")
	mockDB.AssertNotCalled(t, "Exec", mock.Anything, "ANALYZE cases")
}
