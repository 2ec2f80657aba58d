package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/kinetics-tools/thermofit/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS fit_runs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'running',
	species    INTEGER NOT NULL,
	succeeded  INTEGER NOT NULL DEFAULT 0,
	failed     INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS species_records (
	id         TEXT PRIMARY KEY,
	run_id     TEXT REFERENCES fit_runs(id),
	label      TEXT NOT NULL,
	formula    TEXT,
	h298       REAL,
	s298       REAL,
	record     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_species_records_label ON species_records(label);
CREATE INDEX IF NOT EXISTS idx_species_records_run_id ON species_records(run_id);
CREATE INDEX IF NOT EXISTS idx_fit_runs_status ON fit_runs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, speciesCount int) (*model.FitRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fit_runs (id, status, species, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(model.RunStatusRunning), speciesCount, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.FitRun{
		ID:        id,
		Status:    model.RunStatusRunning,
		Species:   speciesCount,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, succeeded, failed int, status model.RunStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE fit_runs SET status = ?, succeeded = ?, failed = ?, updated_at = ? WHERE id = ?`,
		string(status), succeeded, failed, time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "sqlite: finish run")
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.FitRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, species, succeeded, failed, created_at, updated_at
		 FROM fit_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var out []model.FitRun
	for rows.Next() {
		var r model.FitRun
		var status string
		if err := rows.Scan(&r.ID, &status, &r.Species, &r.Succeeded, &r.Failed, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Status = model.RunStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveRecord(ctx context.Context, runID string, rec *model.SpeciesRecord) error {
	data, err := model.RenderRecord(rec)
	if err != nil {
		return err
	}
	var h298, s298 float64
	if rec.ThermoData != nil {
		h298 = rec.ThermoData.H298.Value
		s298 = rec.ThermoData.S298.Value
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO species_records (id, run_id, label, formula, h298, s298, record, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), runID, rec.Label, rec.Formula, h298, s298, string(data), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save record %q", rec.Label)
}

// GetRecord returns the most recently stored record for the label, or nil
// if none exists.
func (s *SQLiteStore) GetRecord(ctx context.Context, label string) (*model.SpeciesRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM species_records WHERE label = ? ORDER BY created_at DESC LIMIT 1`,
		label).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get record %q", label)
	}
	return model.ParseRecord([]byte(data))
}

func (s *SQLiteStore) ListRecords(ctx context.Context) ([]RecordSummary, error) {
	// One row per label: the newest record. A correlated subquery keeps
	// the created_at column type intact for scanning.
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, COALESCE(formula, ''), h298, s298, created_at
		 FROM species_records sr
		 WHERE id = (SELECT id FROM species_records
		             WHERE label = sr.label
		             ORDER BY created_at DESC, id LIMIT 1)
		 ORDER BY label`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close()

	var out []RecordSummary
	for rows.Next() {
		var r RecordSummary
		if err := rows.Scan(&r.Label, &r.Formula, &r.H298, &r.S298, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
