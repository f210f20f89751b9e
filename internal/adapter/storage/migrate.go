package storage

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/pressly/goose/v3"

	"github.com/rl1809/aspas/internal/logger"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies every pending migration for the adapter's dialect.
func (a *SQLAdapter) Migrate(ctx context.Context) error {
	const op = "storage.SQLAdapter.Migrate"

	dir, err := fs.Sub(migrationsFS, path.Join("migrations", a.dialect.name))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	provider, err := goose.NewProvider(a.dialect.goose, a.db, dir)
	if err != nil {
		return fmt.Errorf("%s: new provider: %w", op, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("%s: up: %w", op, err)
	}

	for _, r := range results {
		logger.Info(ctx, "migration applied",
			logger.String("dialect", a.dialect.name),
			logger.Any("version", r.Source.Version),
			logger.Duration("took", r.Duration),
		)
	}
	return nil
}
