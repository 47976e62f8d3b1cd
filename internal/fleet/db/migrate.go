package db

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrateConstraints applies the Postgres-only constraints that GORM tags cannot
// express: the rental overlap exclusion constraint and the foreign keys.
func (r *Repository) MigrateConstraints(ctx context.Context) error {
	if r.db.Dialector.Name() != "postgres" {
		return nil
	}

	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("failed to apply constraint migrations: %w", err)
	}
	return nil
}
