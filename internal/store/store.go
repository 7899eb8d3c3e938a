package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run is one queued or finished evaluation. Input holds the submitted document and Result the
// rendered report.
type Run struct {
	ID     uuid.UUID `json:"run_id"`
	Mode   string    `json:"mode,omitempty"`
	Kind   string    `json:"kind,omitempty"`
	Status RunStatus `json:"status"`
	Source string    `json:"source,omitempty"`

	Input  json.RawMessage `json:"input,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type RunFilter struct {
	Status *RunStatus
	Mode   string
	Source string
	Limit  int
	Offset int
}

type RunStats struct {
	TotalPending    int     `json:"total_pending"`
	TotalRunning    int     `json:"total_running"`
	TotalCompleted  int     `json:"total_completed"`
	TotalFailed     int     `json:"total_failed"`
	AvgCompletionMs float64 `json:"avg_completion_ms"`
}

// Store persists runs. Get returns nil, nil for unknown IDs.
type Store interface {
	CreateRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
	UpdateRun(ctx context.Context, run *Run) error

	// GetPendingRuns returns up to limit pending runs, oldest first.
	GetPendingRuns(ctx context.Context, limit int) ([]*Run, error)
	// ClaimRun moves a pending run to running. It reports false if another worker got there
	// first.
	ClaimRun(ctx context.Context, id uuid.UUID) (bool, error)

	GetStats(ctx context.Context) (*RunStats, error)

	Close() error
}

const defaultListLimit = 100

func prepareNew(run *Run) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Status == "" {
		run.Status = StatusPending
	}
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now
}
