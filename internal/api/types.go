package api

import "gemmbench/internal/bench"

// RunRequest selects what a benchmark run covers. Empty selectors mean
// "everything"; pointer fields distinguish unset from zero.
type RunRequest struct {
	Models   []string `json:"models,omitempty"`
	Kernels  []string `json:"kernels,omitempty"`
	MCases   []int    `json:"m_cases,omitempty"`
	Warmup   *int     `json:"warmup,omitempty"`
	Runs     *int     `json:"runs,omitempty"`
	Workers  *int     `json:"workers,omitempty"`
	Seed     *int64   `json:"seed,omitempty"`
	Autotune *bool    `json:"autotune,omitempty"`
}

const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunRecord is the stored state of one benchmark run.
type RunRecord struct {
	ID          string        `json:"id"`
	Status      string        `json:"status"`
	CreatedAt   int64         `json:"created_at"`
	CompletedAt *int64        `json:"completed_at,omitempty"`
	Error       string        `json:"error,omitempty"`
	Report      *bench.Report `json:"report,omitempty"`
}

// RunSummary is the list view of a run.
type RunSummary struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
	Cases     int    `json:"cases"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
