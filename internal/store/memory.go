package store

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps runs in process memory. It backs tests and deployments without a database.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]*Run
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[uuid.UUID]*Run)}
}

func clone(r *Run) *Run {
	c := *r
	c.Input = append([]byte(nil), r.Input...)
	c.Result = append([]byte(nil), r.Result...)
	if r.StartedAt != nil {
		t := *r.StartedAt
		c.StartedAt = &t
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func (s *MemoryStore) CreateRun(_ context.Context, run *Run) error {
	prepareNew(run)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = clone(run)
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id uuid.UUID) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, nil
	}
	return clone(r), nil
}

// sorted returns matching runs ordered by creation time, then by ID, matching the SQL
// backends.
func (s *MemoryStore) sorted(match func(*Run) bool, newestFirst bool) []*Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Run
	for _, r := range s.runs {
		if match(r) {
			out = append(out, clone(r))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if newestFirst {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})
	return out
}

func (s *MemoryStore) ListRuns(_ context.Context, filter RunFilter) ([]*Run, error) {
	runs := s.sorted(func(r *Run) bool {
		if filter.Status != nil && r.Status != *filter.Status {
			return false
		}
		if filter.Mode != "" && r.Mode != filter.Mode {
			return false
		}
		if filter.Source != "" && r.Source != filter.Source {
			return false
		}
		return true
	}, true)

	if filter.Offset >= len(runs) {
		return nil, nil
	}
	runs = runs[filter.Offset:]
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *MemoryStore) GetPendingRuns(_ context.Context, limit int) ([]*Run, error) {
	runs := s.sorted(func(r *Run) bool { return r.Status == StatusPending }, false)
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *MemoryStore) ClaimRun(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok || r.Status != StatusPending {
		return false, nil
	}
	now := time.Now().UTC()
	r.Status = StatusRunning
	r.StartedAt = &now
	r.UpdatedAt = now
	return true, nil
}

func (s *MemoryStore) UpdateRun(_ context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.runs[run.ID]
	if !ok {
		return nil
	}
	run.UpdatedAt = time.Now().UTC()
	run.CreatedAt = existing.CreatedAt
	if len(run.Input) == 0 {
		run.Input = existing.Input
	}
	s.runs[run.ID] = clone(run)
	return nil
}

func (s *MemoryStore) GetStats(_ context.Context) (*RunStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &RunStats{}
	var total time.Duration
	var timed int
	for _, r := range s.runs {
		switch r.Status {
		case StatusPending:
			stats.TotalPending++
		case StatusRunning:
			stats.TotalRunning++
		case StatusCompleted:
			stats.TotalCompleted++
			if r.StartedAt != nil && r.CompletedAt != nil {
				total += r.CompletedAt.Sub(*r.StartedAt)
				timed++
			}
		case StatusFailed:
			stats.TotalFailed++
		}
	}
	if timed > 0 {
		stats.AvgCompletionMs = float64(total) / float64(time.Millisecond) / float64(timed)
	}
	return stats, nil
}

func (s *MemoryStore) Close() error { return nil }
