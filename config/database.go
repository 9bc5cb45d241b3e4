package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDatabase connects gorm to the configured SQL driver and creates missing tables for modelDefs.
// The returned handle is owned by the caller; nothing is cached at package level.
func OpenDatabase(cfg AppConfig, log *zap.Logger, modelDefs ...interface{}) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	// Route gorm's logger through zap; slow-sql threshold raised to reduce noise
	gLogger := logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.StoreDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.StoreDriver == DriverSQLite {
		// sqlite serialises writers; one connection avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}

	// Surface network/auth problems at startup instead of on the first query
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	for _, model := range modelDefs {
		// Only create missing tables; existing schemas are left untouched
		if db.Migrator().HasTable(model) {
			continue
		}
		if err := db.AutoMigrate(model); err != nil {
			return nil, fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return db, nil
}

func dialectorFor(cfg AppConfig) (gorm.Dialector, error) {
	switch cfg.StoreDriver {
	case DriverMySQL:
		dsn := cfg.DatabaseURI
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		}
		return mysql.Open(dsn), nil
	case DriverPostgres:
		dsn := cfg.DatabaseURI
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
				cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		}
		return postgres.Open(dsn), nil
	case DriverSQLite:
		path := cfg.SQLitePath
		if path != ":memory:" {
			if dir := filepath.Dir(path); dir != "." {
				_ = os.MkdirAll(dir, 0o755)
			}
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("driver %q is not a SQL driver", cfg.StoreDriver)
	}
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		// GORM 'Info' shows SQL; use with caution
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		// Suppress per-statement logs; keep warnings (including slow SQL)
		return logger.Warn
	}
}
