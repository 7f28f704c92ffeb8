package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
)

const MarkAbsentJobName = "mark_absent_for_missing_checkout"

const defaultJobInterval = time.Hour

type AttendanceJobs struct {
	absenceService attendance.AbsenceService
	interval       time.Duration
}

func NewAttendanceJobs(absenceService attendance.AbsenceService, interval time.Duration) *AttendanceJobs {
	if interval <= 0 {
		interval = defaultJobInterval
	}
	return &AttendanceJobs{
		absenceService: absenceService,
		interval:       interval,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(MarkAbsentJobName, j.interval, j.MarkAbsentForMissingCheckout)
}

// MarkAbsentForMissingCheckout reconciles today's open attendances. Ticks before the
// cutoff are no-ops, so the job can run at any interval.
func (j *AttendanceJobs) MarkAbsentForMissingCheckout(ctx context.Context) error {
	result := j.absenceService.MarkAbsentForMissingCheckout(ctx, nil)

	if !result.Success {
		msg := "unknown error"
		if len(result.Errors) > 0 {
			msg = result.Errors[0].Error
		}
		return fmt.Errorf("mark absent for missing checkout: %s", msg)
	}

	if result.Summary.TotalRecordsFound == 0 {
		slog.Debug("Cron: No open attendances to reconcile")
		return nil
	}

	if result.Summary.Failed > 0 {
		slog.Warn("Cron: Missing checkout reconciliation finished with failures",
			"processed", result.Processed,
			"failed", result.Summary.Failed,
			"skipped", result.Summary.Skipped,
		)
		for _, e := range result.Errors {
			slog.Warn("Cron: Failed to reconcile attendance", "employee_id", e.EmployeeID, "error", e.Error)
		}
		return nil
	}

	slog.Info("Cron: Missing checkout reconciliation finished",
		"processed", result.Processed,
		"skipped", result.Summary.Skipped,
	)
	return nil
}
