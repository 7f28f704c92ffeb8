package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-reconciler/internal/config"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-reconciler/internal/repository/gormdb"
	"github.com/cmlabs-hris/attendance-reconciler/internal/repository/postgresql"
)

// Storage bundles the repositories of the configured backend.
type Storage struct {
	Attendance attendance.AttendanceRepository
	Audit      audit.Repository
	Transactor attendance.Transactor

	close func()
}

func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage connects the backend selected by DB_DRIVER, applying migrations first
// when DB_RUN_MIGRATIONS is set.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg.Database.RunMigrations && cfg.UsesPostgres() {
		if err := database.Migrate(cfg.DatabaseURL()); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	switch cfg.Database.Driver {
	case config.DriverGorm:
		return openGorm(cfg)
	default:
		return openPgx(ctx, cfg)
	}
}

func openPgx(ctx context.Context, cfg *config.Config) (*Storage, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	slog.Info("Connected to database", "driver", config.DriverPgx, "host", cfg.Database.Host, "name", cfg.Database.Name)

	return &Storage{
		Attendance: postgresql.NewAttendanceRepository(db),
		Audit:      postgresql.NewAuditRepository(db),
		Transactor: postgresql.NewTransactor(db),
		close:      db.Close,
	}, nil
}

func openGorm(cfg *config.Config) (*Storage, error) {
	db, err := database.NewGormDB(database.GormOptions{
		Dialect:    cfg.Database.GormDialect,
		DSN:        cfg.DatabaseURL(),
		SQLitePath: cfg.Database.SQLitePath,
		MaxConns:   cfg.Database.MaxConns,
		Debug:      cfg.SlogLevel() == slog.LevelDebug,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Database.GormDialect == database.DialectSQLite {
		if err := gormdb.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("auto migrate sqlite: %w", err)
		}
	}
	slog.Info("Connected to database", "driver", config.DriverGorm, "dialect", cfg.Database.GormDialect)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	return &Storage{
		Attendance: gormdb.NewAttendanceRepository(db),
		Audit:      gormdb.NewAuditRepository(db),
		Transactor: gormdb.NewTransactor(db),
		close: func() {
			if err := sqlDB.Close(); err != nil {
				slog.Error("Failed to close database", "error", err)
			}
		},
	}, nil
}
