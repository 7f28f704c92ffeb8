package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// GormOptions selects the dialect behind the gorm backend. DSN is used for postgres,
// SQLitePath for sqlite (":memory:" is accepted).
type GormOptions struct {
	Dialect    string
	DSN        string
	SQLitePath string
	MaxConns   int
	Debug      bool
}

func NewGormDB(opts GormOptions) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Dialect {
	case DialectPostgres, "":
		dialector = postgres.Open(opts.DSN)
	case DialectSQLite:
		dialector = sqlite.Open(opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported gorm dialect: %s", opts.Dialect)
	}

	logLevel := logger.Warn
	if opts.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm %s: %w", opts.Dialect, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxConns)
	}
	if opts.Dialect == DialectSQLite {
		// in-memory sqlite databases exist per connection
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping gorm %s: %w", opts.Dialect, err)
	}

	return db, nil
}
