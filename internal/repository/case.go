package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caseline-ai/caseline/internal/domain"
	"github.com/caseline-ai/caseline/internal/pagination"
	"github.com/caseline-ai/caseline/internal/service"
)

const pgUniqueViolation = "23505"

type CaseRepository struct {
	db dbtx
}

func NewCaseRepository(pool *pgxpool.Pool) *CaseRepository {
	return &CaseRepository{db: pool}
}

func NewCaseRepositoryWithTx(tx pgx.Tx) *CaseRepository {
	return &CaseRepository{db: tx}
}

func (r *CaseRepository) Create(ctx context.Context, c *domain.Case) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO cases (id, case_number, title, decided_at, court, full_text, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.CaseNumber, c.Title, nullableTime(c.DecidedAt), c.Court, c.FullText, c.Metadata, c.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrDuplicateCase
		}
		return err
	}
	return nil
}

func (r *CaseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	return r.getOne(ctx,
		`SELECT id, case_number, title, decided_at, court, full_text, metadata, created_at
		 FROM cases WHERE id = $1`, id)
}

func (r *CaseRepository) GetByNumber(ctx context.Context, caseNumber string) (*domain.Case, error) {
	return r.getOne(ctx,
		`SELECT id, case_number, title, decided_at, court, full_text, metadata, created_at
		 FROM cases WHERE case_number = $1`, caseNumber)
}

func (r *CaseRepository) getOne(ctx context.Context, query string, arg any) (*domain.Case, error) {
	var c domain.Case
	var decidedAt *time.Time
	err := r.db.QueryRow(ctx, query, arg).
		Scan(&c.ID, &c.CaseNumber, &c.Title, &decidedAt, &c.Court, &c.FullText, &c.Metadata, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, err
	}
	if decidedAt != nil {
		c.DecidedAt = *decidedAt
	}
	return &c, nil
}

// Delete removes a case. Chunk rows go with it via ON DELETE CASCADE.
func (r *CaseRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM cases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCaseNotFound
	}
	return nil
}

func (r *CaseRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.CasePageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, case_number, title, decided_at, court, full_text, metadata, created_at
			 FROM cases
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, case_number, title, decided_at, court, full_text, metadata, created_at
			 FROM cases
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanCaseRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.CreatedAt)
	}

	return &service.CasePageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func scanCaseRows(rows pgx.Rows) ([]*domain.Case, error) {
	var results []*domain.Case
	for rows.Next() {
		var c domain.Case
		var decidedAt *time.Time
		if err := rows.Scan(&c.ID, &c.CaseNumber, &c.Title, &decidedAt, &c.Court, &c.FullText, &c.Metadata, &c.CreatedAt); err != nil {
			return nil, err
		}
		if decidedAt != nil {
			c.DecidedAt = *decidedAt
		}
		results = append(results, &c)
	}
	return results, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
