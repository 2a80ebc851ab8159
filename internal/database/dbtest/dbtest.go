// Package dbtest opens throwaway databases for tests. Only _test.go files
// import it.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wtppaul/course-marketplace/internal/config"
	"github.com/wtppaul/course-marketplace/internal/database"
	"github.com/wtppaul/course-marketplace/internal/logger"
)

// Open returns a migrated, private in-memory sqlite database that is closed
// when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver: "sqlite",
		DBPath:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	db, err := database.Open(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
