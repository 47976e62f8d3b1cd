// Package dbtest opens throwaway SQLite-backed repositories for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/gartstein/fleet/internal/fleet/db"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

// New returns a repository over a private in-memory SQLite database. The pool
// is limited to one connection, so code running inside a transaction must only
// use the transactional repository.
func New(t *testing.T) *db.Repository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	repo, err := db.Open(sqlite.Open(dsn))
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := repo.SQLDB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = repo.Close() })
	return repo
}
