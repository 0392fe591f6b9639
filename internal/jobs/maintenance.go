package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
)

// maintainedTables are refreshed each maintenance cycle. Heavy ingest churn
// skews the planner statistics the HNSW and GIN scans depend on.
var maintainedTables = []string{"case_chunks", "cases"}

// StatsExecutor runs maintenance statements. Satisfied by *pgxpool.Pool.
type StatsExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// MaintenanceWorker keeps planner statistics fresh on the retrieval tables.
type MaintenanceWorker struct {
	db StatsExecutor
}

func NewMaintenanceWorker(db StatsExecutor) *MaintenanceWorker {
	return &MaintenanceWorker{db: db}
}

// ProcessJobs implements the JobProcessor interface.
func (w *MaintenanceWorker) ProcessJobs(ctx context.Context) error {
	for _, table := range maintainedTables {
		if _, err := w.db.Exec(ctx, "ANALYZE "+table); err != nil {
			return fmt.Errorf("failed to analyze %s: %w", table, err)
		}
		log.Printf("Refreshed statistics for %s", table)
	}
	return nil
}
