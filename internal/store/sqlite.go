package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps run history in a local file for single-node deployments and the CLI.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; the broker writes from several goroutines.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *Run) error {
	prepareNew(run)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ftopsis_runs (run_id, mode, kind, status, source, input, result, error,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?)`,
		run.ID.String(), run.Mode, run.Kind, string(run.Status), run.Source,
		string(run.Input), nullText(run.Result), run.Error,
		run.CreatedAt, run.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM ftopsis_runs WHERE run_id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs, err := scanSQLRuns(rows)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return runs[0], nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM ftopsis_runs WHERE 1=1`
	args := []interface{}{}

	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*filter.Status))
	}
	if filter.Mode != "" {
		query += " AND mode = ?"
		args = append(args, filter.Mode)
	}
	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, filter.Source)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += " ORDER BY created_at DESC, run_id LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSQLRuns(rows)
}

func (s *SQLiteStore) GetPendingRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM ftopsis_runs WHERE status = 'pending'
		ORDER BY created_at ASC, run_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSQLRuns(rows)
}

func (s *SQLiteStore) ClaimRun(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE ftopsis_runs SET status = 'running', started_at = ?, updated_at = ?
		WHERE run_id = ? AND status = 'pending'`, now, now, id.String())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *SQLiteStore) UpdateRun(ctx context.Context, run *Run) error {
	run.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		UPDATE ftopsis_runs SET
			mode = ?, kind = ?, status = ?, source = ?,
			result = ?, error = NULLIF(?, ''),
			started_at = ?, completed_at = ?, updated_at = ?
		WHERE run_id = ?`,
		run.Mode, run.Kind, string(run.Status), run.Source,
		nullText(run.Result), run.Error,
		utcPtr(run.StartedAt), utcPtr(run.CompletedAt), run.UpdatedAt,
		run.ID.String(),
	)
	return err
}

func (s *SQLiteStore) GetStats(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'running' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(CASE WHEN status = 'completed' AND completed_at IS NOT NULL AND started_at IS NOT NULL
				THEN (julianday(completed_at) - julianday(started_at)) * 86400000.0 END), 0)
		FROM ftopsis_runs`,
	).Scan(&stats.TotalPending, &stats.TotalRunning, &stats.TotalCompleted, &stats.TotalFailed, &stats.AvgCompletionMs)
	return stats, err
}

func nullText(b []byte) sql.NullString {
	return sql.NullString{String: string(b), Valid: len(b) > 0}
}

func utcPtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func scanSQLRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		r := &Run{}
		var id, status, input string
		var result, runError sql.NullString
		var started, completed sql.NullTime
		if err := rows.Scan(
			&id, &r.Mode, &r.Kind, &status, &r.Source,
			&input, &result, &runError,
			&r.CreatedAt, &started, &completed, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		r.ID = parsed
		r.Status = RunStatus(status)
		r.Input = []byte(input)
		if result.Valid {
			r.Result = []byte(result.String)
		}
		if runError.Valid {
			r.Error = runError.String
		}
		if started.Valid {
			t := started.Time
			r.StartedAt = &t
		}
		if completed.Valid {
			t := completed.Time
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
