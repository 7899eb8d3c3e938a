package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the runs table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const runColumns = `run_id, mode, kind, status, source,
	input, result, error,
	created_at, started_at, completed_at, updated_at`

func (s *PostgresStore) CreateRun(ctx context.Context, run *Run) error {
	prepareNew(run)
	return s.pool.QueryRow(ctx, `
		INSERT INTO ftopsis_runs (run_id, mode, kind, status, source, input, result, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING created_at, updated_at`,
		run.ID, run.Mode, run.Kind, run.Status, run.Source,
		[]byte(run.Input), nullJSON(run.Result), run.Error,
	).Scan(&run.CreatedAt, &run.UpdatedAt)
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+runColumns+` FROM ftopsis_runs WHERE run_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return runs[0], nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM ftopsis_runs WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}
	if filter.Mode != "" {
		n++
		query += fmt.Sprintf(" AND mode = $%d", n)
		args = append(args, filter.Mode)
	}
	if filter.Source != "" {
		n++
		query += fmt.Sprintf(" AND source = $%d", n)
		args = append(args, filter.Source)
	}

	query += " ORDER BY created_at DESC, run_id"

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (s *PostgresStore) GetPendingRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+runColumns+`
		FROM ftopsis_runs WHERE status = 'pending'
		ORDER BY created_at ASC, run_id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRuns(rows)
}

func (s *PostgresStore) ClaimRun(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE ftopsis_runs SET status = 'running', started_at = now(), updated_at = now()
		WHERE run_id = $1 AND status = 'pending'`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) UpdateRun(ctx context.Context, run *Run) error {
	return s.pool.QueryRow(ctx, `
		UPDATE ftopsis_runs SET
			mode = $2, kind = $3, status = $4, source = $5,
			result = $6, error = NULLIF($7, ''),
			started_at = $8, completed_at = $9, updated_at = now()
		WHERE run_id = $1
		RETURNING updated_at`,
		run.ID, run.Mode, run.Kind, run.Status, run.Source,
		nullJSON(run.Result), run.Error,
		run.StartedAt, run.CompletedAt,
	).Scan(&run.UpdatedAt)
}

func (s *PostgresStore) GetStats(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'running' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(EXTRACT(EPOCH FROM (completed_at - started_at)) * 1000) FILTER (WHERE status = 'completed' AND completed_at IS NOT NULL AND started_at IS NOT NULL), 0)
		FROM ftopsis_runs`,
	).Scan(&stats.TotalPending, &stats.TotalRunning, &stats.TotalCompleted, &stats.TotalFailed, &stats.AvgCompletionMs)
	return stats, err
}

func nullJSON(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

func scanRuns(rows pgx.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		r := &Run{}
		var input, result []byte
		var runError sql.NullString
		if err := rows.Scan(
			&r.ID, &r.Mode, &r.Kind, &r.Status, &r.Source,
			&input, &result, &runError,
			&r.CreatedAt, &r.StartedAt, &r.CompletedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		r.Input = input
		r.Result = result
		if runError.Valid {
			r.Error = runError.String
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
