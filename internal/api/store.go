package api

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gemmbench/internal/bench"
)

// RunStore keeps benchmark run records in memory. Records are copied on
// the way out so callers never observe concurrent mutation.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*RunRecord
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*RunRecord),
	}
}

func (s *RunStore) Create(now time.Time) RunRecord {
	rec := &RunRecord{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		CreatedAt: now.Unix(),
	}
	s.mu.Lock()
	s.runs[rec.ID] = rec
	s.mu.Unlock()
	return *rec
}

func (s *RunStore) Get(id string) (RunRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.runs[id]
	if !ok {
		return RunRecord{}, false
	}
	return *rec, true
}

func (s *RunStore) List() []RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RunSummary, 0, len(s.runs))
	for _, rec := range s.runs {
		summary := RunSummary{
			ID:        rec.ID,
			Status:    rec.Status,
			CreatedAt: rec.CreatedAt,
		}
		if rec.Report != nil {
			summary.Cases = len(rec.Report.Results)
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *RunStore) MarkRunning(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.runs[id]; ok {
		rec.Status = StatusRunning
	}
}

func (s *RunStore) MarkCompleted(id string, rep *bench.Report, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.runs[id]; ok {
		rec.Status = StatusCompleted
		rec.Report = rep
		completed := now.Unix()
		rec.CompletedAt = &completed
	}
}

func (s *RunStore) MarkFailed(id string, err error, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.runs[id]; ok {
		rec.Status = StatusFailed
		rec.Error = err.Error()
		completed := now.Unix()
		rec.CompletedAt = &completed
	}
}
