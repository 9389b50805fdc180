package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/terralab/landscape-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
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
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	status          TEXT NOT NULL DEFAULT 'running',
	sites_total     INTEGER NOT NULL,
	sites_succeeded INTEGER NOT NULL DEFAULT 0,
	sites_skipped   INTEGER NOT NULL DEFAULT 0,
	output_path     TEXT NOT NULL,
	error           TEXT NOT NULL DEFAULT '',
	started_at      DATETIME NOT NULL,
	finished_at     DATETIME
);

CREATE TABLE IF NOT EXISTS run_skips (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL REFERENCES runs(id),
	landscape_id TEXT NOT NULL,
	scale        TEXT NOT NULL DEFAULT '',
	reason       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_run_skips_run_id ON run_skips(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, sitesTotal int, outputPath string) (*model.Run, error) {
	run := &model.Run{
		ID:         uuid.NewString(),
		Status:     model.RunStatusRunning,
		SitesTotal: sitesTotal,
		OutputPath: outputPath,
		StartedAt:  time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, sites_total, output_path, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Status, run.SitesTotal, run.OutputPath, run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: create run")
	}
	return run, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, sitesSucceeded int, skips []model.Skip) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer func() { _ = tx.Rollback() }()

	skippedSites := countSkippedSites(skips)
	_, err = tx.ExecContext(ctx,
		`UPDATE runs SET status = ?, sites_succeeded = ?, sites_skipped = ?, finished_at = ? WHERE id = ?`,
		model.RunStatusComplete, sitesSucceeded, skippedSites, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: complete run")
	}

	for _, skip := range skips {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_skips (run_id, landscape_id, scale, reason) VALUES (?, ?, ?, ?)`,
			runID, skip.LandscapeID, skip.Scale, skip.Reason,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert skip")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, message string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		model.RunStatusFailed, message, time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "sqlite: fail run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, sites_total, sites_succeeded, sites_skipped, output_path, error, started_at, finished_at
		 FROM runs WHERE id = ?`, runID)

	var run model.Run
	var finished sql.NullTime
	err := row.Scan(&run.ID, &run.Status, &run.SitesTotal, &run.SitesSucceeded, &run.SitesSkipped,
		&run.OutputPath, &run.Error, &run.StartedAt, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Errorf("sqlite: run %s not found", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get run")
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, sites_total, sites_succeeded, sites_skipped, output_path, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.Status, &run.SitesTotal, &run.SitesSucceeded, &run.SitesSkipped,
			&run.OutputPath, &run.Error, &run.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if finished.Valid {
			run.FinishedAt = &finished.Time
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs")
}

func (s *SQLiteStore) ListSkips(ctx context.Context, runID string) ([]model.Skip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT landscape_id, scale, reason FROM run_skips WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list skips")
	}
	defer rows.Close()

	var skips []model.Skip
	for rows.Next() {
		var skip model.Skip
		if err := rows.Scan(&skip.LandscapeID, &skip.Scale, &skip.Reason); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan skip")
		}
		skips = append(skips, skip)
	}
	return skips, eris.Wrap(rows.Err(), "sqlite: list skips")
}

// countSkippedSites counts site-level skips (empty scale means the whole
// site was skipped).
func countSkippedSites(skips []model.Skip) int {
	var n int
	for _, s := range skips {
		if s.Scale == "" {
			n++
		}
	}
	return n
}
