// Package testutil provides shared test helpers.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/coverline/agency-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// NewTestDB opens an isolated in-memory sqlite database with the full
// schema migrated. Each call gets its own database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// shared-cache memory databases vanish when the last connection
	// closes; keep a single connection for the test's lifetime
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
		&domain.Customer{},
		&domain.Policy{},
		&domain.PhoneIndexEntry{},
		&domain.MetricsSnapshot{},
	)
	require.NoError(t, err)

	return db
}
