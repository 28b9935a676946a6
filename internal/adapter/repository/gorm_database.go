package repository

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"comoresmarket/pkg/logger"
)

// OpenDatabase connects to the SQL backend and migrates the schema.
func OpenDatabase(backend, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch backend {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database backend %q", backend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&profileRow{},
		&productRow{},
		&messageRow{},
		&favoriteRow{},
		&reportRow{},
		&productViewRow{},
	)
	if err != nil {
		logger.Error("Failed to migrate database schema: %v", err)
		return err
	}

	logger.Info("Database migrations completed")
	return nil
}
