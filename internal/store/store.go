// Package store persists batch fit runs and fitted species records.
package store

import (
	"context"
	"time"

	"github.com/kinetics-tools/thermofit/internal/model"
)

// RecordSummary is the listing view of a stored species record.
type RecordSummary struct {
	Label     string    `json:"label"`
	Formula   string    `json:"formula,omitempty"`
	H298      float64   `json:"h298_kj_mol"`
	S298      float64   `json:"s298_j_mol_k"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the persistence interface for the fitting pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, speciesCount int) (*model.FitRun, error)
	FinishRun(ctx context.Context, runID string, succeeded, failed int, status model.RunStatus) error
	ListRuns(ctx context.Context, limit int) ([]model.FitRun, error)

	// Records
	SaveRecord(ctx context.Context, runID string, rec *model.SpeciesRecord) error
	GetRecord(ctx context.Context, label string) (*model.SpeciesRecord, error)
	ListRecords(ctx context.Context) ([]RecordSummary, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
