// Package store persists extraction run history and per-run skip records.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/terralab/landscape-cli/internal/config"
	"github.com/terralab/landscape-cli/internal/model"
)

// Store defines the persistence interface for extraction runs.
type Store interface {
	CreateRun(ctx context.Context, sitesTotal int, outputPath string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, sitesSucceeded int, skips []model.Skip) error
	FailRun(ctx context.Context, runID string, message string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	ListSkips(ctx context.Context, runID string) ([]model.Skip, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the store backend selected by configuration.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
