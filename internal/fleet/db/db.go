// Package db implements the fleet store on top of GORM. Postgres is used in
// production and SQLite in tests; both enforce identifier uniqueness through
// partial unique indexes declared on the rows.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	rows "github.com/gartstein/fleet/internal/fleet/db/models"
	e "github.com/gartstein/fleet/internal/fleet/errors"
	"github.com/gartstein/fleet/internal/fleet/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// exclusionViolation is the Postgres SQLSTATE raised by EXCLUDE constraints.
const exclusionViolation = "23P01"

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// NewRepository connects to Postgres, migrates the schema and applies the
// constraint migrations.
func NewRepository(ctx context.Context, cfg *Config) (*Repository, error) {
	repo, err := Open(postgres.Open(cfg.DSN()))
	if err != nil {
		return nil, err
	}
	if err := repo.MigrateConstraints(ctx); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return repo, nil
}

// Open opens a repository over any GORM dialector and auto-migrates the tables.
func Open(dialector gorm.Dialector) (*Repository, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(rows.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// SQLDB exposes the underlying connection pool.
func (r *Repository) SQLDB() (*sql.DB, error) {
	return r.db.DB()
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// translateError maps driver errors onto the domain error sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return e.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", e.ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: record is still referenced: %v", e.ErrConflict, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		return fmt.Errorf("%w: vehicle not available for period", e.ErrConflict)
	}
	return err
}

func (r *Repository) scoped(ctx context.Context, includeDeleted bool) *gorm.DB {
	db := r.db.WithContext(ctx)
	if includeDeleted {
		db = db.Unscoped()
	}
	return db
}

func get[T any](ctx context.Context, db *gorm.DB, id uuid.UUID, unscoped bool) (*T, error) {
	var row T
	q := db.WithContext(ctx)
	if unscoped {
		q = q.Unscoped()
	}
	if err := q.First(&row, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &row, nil
}

func create[T any](ctx context.Context, db *gorm.DB, row *T) error {
	return translateError(db.WithContext(ctx).Create(row).Error)
}

// save overwrites every mutable column of a live row.
func save[T any](ctx context.Context, db *gorm.DB, id uuid.UUID, row *T) error {
	result := db.WithContext(ctx).Model(new(T)).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(row)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func softDelete[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	result := db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func restore[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	result := db.WithContext(ctx).Unscoped().Model(new(T)).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func purge[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	result := db.WithContext(ctx).Unscoped().Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// taken reports whether a live row other than excludeID holds value in column.
func taken[T any](ctx context.Context, db *gorm.DB, column, value string, excludeID uuid.UUID) (bool, error) {
	var count int64
	q := db.WithContext(ctx).Model(new(T)).Where(column+" = ?", value)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func countUnscoped[T any](ctx context.Context, db *gorm.DB, column string, id uuid.UUID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Unscoped().Model(new(T)).Where(column+" = ?", id).Count(&count).Error
	return count, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-folded LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// identifierPattern builds a LIKE pattern over a normalized identifier.
func identifierPattern(id string) string {
	return "%" + likeEscaper.Replace(id) + "%"
}

// searchCondition ORs a case-insensitive match over text columns with partial
// matches over normalized identifier columns.
func searchCondition(query string, textColumns, idColumns []string) (string, []interface{}) {
	var conds []string
	var args []interface{}
	for _, col := range textColumns {
		conds = append(conds, "LOWER("+col+`) LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(query))
	}
	if id := models.NormalizeIdentifier(query); id != "" {
		for _, col := range idColumns {
			conds = append(conds, col+` LIKE ? ESCAPE '\'`)
			args = append(args, identifierPattern(id))
		}
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}
