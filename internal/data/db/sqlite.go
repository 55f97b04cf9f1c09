package db

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/voterguide-backend/internal/platform/logger"
)

// NewSQLiteService opens a local database file, or a shared in-memory
// database when SQLitePath is empty.
func NewSQLiteService(logg *logger.Logger, cfg Config) (*Service, error) {
	serviceLog := logg.With("service", "SQLiteService")

	path := cfg.SQLitePath
	if path == "" {
		path = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %q: %w", path, err)
	}
	// Writes are serialized by sqlite anyway; one connection avoids SQLITE_BUSY.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	serviceLog.Info("Opened sqlite database", "path", path)
	return &Service{db: db, driver: DriverSQLite, log: serviceLog}, nil
}
