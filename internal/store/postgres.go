package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/terralab/landscape-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	status          TEXT NOT NULL DEFAULT 'running',
	sites_total     INTEGER NOT NULL,
	sites_succeeded INTEGER NOT NULL DEFAULT 0,
	sites_skipped   INTEGER NOT NULL DEFAULT 0,
	output_path     TEXT NOT NULL,
	error           TEXT NOT NULL DEFAULT '',
	started_at      TIMESTAMPTZ NOT NULL,
	finished_at     TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS run_skips (
	id           BIGSERIAL PRIMARY KEY,
	run_id       TEXT NOT NULL REFERENCES runs(id),
	landscape_id TEXT NOT NULL,
	scale        TEXT NOT NULL DEFAULT '',
	reason       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_run_skips_run_id ON run_skips(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, sitesTotal int, outputPath string) (*model.Run, error) {
	run := &model.Run{
		ID:         uuid.NewString(),
		Status:     model.RunStatusRunning,
		SitesTotal: sitesTotal,
		OutputPath: outputPath,
		StartedAt:  time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, status, sites_total, output_path, started_at) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.Status, run.SitesTotal, run.OutputPath, run.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create run")
	}
	return run, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, sitesSucceeded int, skips []model.Skip) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`UPDATE runs SET status = $1, sites_succeeded = $2, sites_skipped = $3, finished_at = $4 WHERE id = $5`,
		model.RunStatusComplete, sitesSucceeded, countSkippedSites(skips), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: complete run")
	}

	for _, skip := range skips {
		_, err = tx.Exec(ctx,
			`INSERT INTO run_skips (run_id, landscape_id, scale, reason) VALUES ($1, $2, $3, $4)`,
			runID, skip.LandscapeID, skip.Scale, skip.Reason,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert skip")
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit")
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, message string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, error = $2, finished_at = $3 WHERE id = $4`,
		model.RunStatusFailed, message, time.Now().UTC(), runID,
	)
	return eris.Wrap(err, "postgres: fail run")
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, status, sites_total, sites_succeeded, sites_skipped, output_path, error, started_at, finished_at
		 FROM runs WHERE id = $1`, runID)

	var run model.Run
	var finished *time.Time
	err := row.Scan(&run.ID, &run.Status, &run.SitesTotal, &run.SitesSucceeded, &run.SitesSkipped,
		&run.OutputPath, &run.Error, &run.StartedAt, &finished)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: run %s not found", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get run")
	}
	run.FinishedAt = finished
	return &run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, status, sites_total, sites_succeeded, sites_skipped, output_path, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		var finished *time.Time
		if err := rows.Scan(&run.ID, &run.Status, &run.SitesTotal, &run.SitesSucceeded, &run.SitesSkipped,
			&run.OutputPath, &run.Error, &run.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		run.FinishedAt = finished
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs")
}

func (s *PostgresStore) ListSkips(ctx context.Context, runID string) ([]model.Skip, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT landscape_id, scale, reason FROM run_skips WHERE run_id = $1 ORDER BY id`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list skips")
	}
	defer rows.Close()

	var skips []model.Skip
	for rows.Next() {
		var skip model.Skip
		if err := rows.Scan(&skip.LandscapeID, &skip.Scale, &skip.Reason); err != nil {
			return nil, eris.Wrap(err, "postgres: scan skip")
		}
		skips = append(skips, skip)
	}
	return skips, eris.Wrap(rows.Err(), "postgres: list skips")
}
