// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/weiawesome/framez/internal/domain"
	"github.com/weiawesome/framez/pkg/database"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9]+`)

// New returns a migrated in-memory database that lives until the test
// ends. A single connection keeps the in-memory schema alive and
// serialises transactions the way row locks would.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := unsafeChars.ReplaceAllString(t.Name(), "_") + "_" + uuid.NewString()[:8]
	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, domain.Models()...))

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
