// Package integration provides end-to-end tests that exercise the
// application services against a real gorm-backed persistence layer.
package integration

import (
	"testing"

	"github.com/rentfolio/backend/internal/domain/rental"
	"github.com/rentfolio/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an isolated in-memory database with the full schema
// migrated. Each call returns a fresh database, so tests never share
// state.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	// An in-memory sqlite database exists per connection; cap the pool
	// at one so concurrent test goroutines share the same store.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&rental.Property{},
		&rental.Unit{},
		&rental.Tenant{},
		&models.InvoiceModel{},
		&models.PaymentModel{},
	)
	require.NoError(t, err, "failed to migrate test schema")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}
