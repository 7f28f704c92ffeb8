package app

import (
	"io"
	"log/slog"

	"github.com/cmlabs-hris/attendance-reconciler/internal/config"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	attendanceService "github.com/cmlabs-hris/attendance-reconciler/internal/service/attendance"
)

// SetupLogger installs a JSON slog logger at the configured level as the default.
func SetupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(
		slog.String("app", "attendance-reconciler"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)
	return logger
}

// NewAbsenceService builds the absence service over storage. metrics may be nil.
func NewAbsenceService(cfg *config.Config, storage *Storage, metrics attendanceService.MetricsRecorder) attendance.AbsenceService {
	return attendanceService.NewAbsenceService(
		storage.Attendance,
		storage.Audit,
		storage.Transactor,
		metrics,
		attendanceService.Config{
			Cutoff:   cfg.Attendance.Cutoff,
			Location: cfg.Attendance.Location,
		},
	)
}
