// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/Mondejar-101/erpsample/internal/database"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// New returns a fresh database that lives until the test ends.
func New(tb testing.TB) *gorm.DB {
	tb.Helper()

	// A named shared-cache database keeps every pooled connection on the same data.
	dsn := fmt.Sprintf("file:erp_test_%d?mode=memory&cache=shared", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

// Use points the package-level handle at a test database.
func Use(tb testing.TB) *gorm.DB {
	tb.Helper()
	db := New(tb)
	prev := database.DB
	database.DB = db
	tb.Cleanup(func() { database.DB = prev })
	return db
}
