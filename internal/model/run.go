package model

import "time"

// RunStatus represents the state of a batch fit run.
type RunStatus string

const (
	RunStatusRunning            RunStatus = "running"
	RunStatusComplete           RunStatus = "complete"
	RunStatusCompleteWithErrors RunStatus = "complete_with_errors"
	RunStatusFailed             RunStatus = "failed"
)

// FitRun is the provenance record of one batch fit.
type FitRun struct {
	ID        string    `json:"id"`
	Status    RunStatus `json:"status"`
	Species   int       `json:"species"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
