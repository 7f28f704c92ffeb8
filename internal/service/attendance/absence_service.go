package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/audit"
)

const (
	// autoAbsentReason is written to the audit payload of auto checkouts. Downstream audit
	// consumers read it as is, so it does not describe the actual mutation.
	autoAbsentReason = "Missing checkout by 12 PM"

	defaultManualReason = "Missing checkout"
)

// MetricsRecorder receives run outcomes. A nil recorder disables metrics.
type MetricsRecorder interface {
	ObserveRun(result attendance.ReconcileResult, beforeCutoff bool, duration time.Duration)
	ObserveManual(applied bool)
}

// Config is resolved once at process start and passed in explicitly.
type Config struct {
	Cutoff attendance.Cutoff

	// Location defines the calendar day; nil means time.Local.
	Location *time.Location

	// Now defaults to time.Now.
	Now func() time.Time
}

type AbsenceServiceImpl struct {
	attendance.AttendanceRepository
	audit.Repository
	transactor attendance.Transactor
	metrics    MetricsRecorder
	cfg        Config
}

// NewAbsenceService wires the service. transactor may be nil, in which case the manual
// correction writes its update and audit entry without a shared transaction.
func NewAbsenceService(
	attendanceRepo attendance.AttendanceRepository,
	auditRepo audit.Repository,
	transactor attendance.Transactor,
	metrics MetricsRecorder,
	cfg Config,
) attendance.AbsenceService {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AbsenceServiceImpl{
		AttendanceRepository: attendanceRepo,
		Repository:           auditRepo,
		transactor:           transactor,
		metrics:              metrics,
		cfg:                  cfg,
	}
}

// targetDay normalizes an optional target date to the start of its calendar day.
func (s *AbsenceServiceImpl) targetDay(targetDate *time.Time, now time.Time) time.Time {
	if targetDate == nil {
		return attendance.DateOnly(now.In(s.cfg.Location), s.cfg.Location)
	}
	return attendance.DateOnly(*targetDate, s.cfg.Location)
}

// MarkAbsentForMissingCheckout implements attendance.AbsenceService.
func (s *AbsenceServiceImpl) MarkAbsentForMissingCheckout(ctx context.Context, targetDate *time.Time) attendance.ReconcileResult {
	currentTime := s.cfg.Now()
	result := attendance.NewReconcileResult()

	date := s.targetDay(targetDate, currentTime)
	cutoffTime := s.cfg.Cutoff.On(date, s.cfg.Location)

	if currentTime.Before(cutoffTime) {
		slog.Info("Cron: Cutoff not reached, skipping absence marking",
			"date", date.Format("2006-01-02"),
			"cutoff", cutoffTime.Format(time.RFC3339),
			"now", currentTime.Format(time.RFC3339))
		result.Success = true
		s.observeRun(result, true, currentTime)
		return result
	}

	slog.Info("Cron: Starting absence marking for missing checkouts",
		"date", date.Format("2006-01-02"),
		"cutoff", cutoffTime.Format(time.RFC3339))

	records, err := s.AttendanceRepository.ListByDate(ctx, attendance.DateFilter{
		Date:            date,
		CheckedIn:       true,
		OpenOnly:        true,
		ExcludeStatuses: attendance.TerminalStatuses,
	})
	if err != nil {
		slog.Error("Cron: Failed to load open attendance records", "date", date.Format("2006-01-02"), "error", err)
		result.Errors = append(result.Errors, attendance.ReconcileError{
			EmployeeID: attendance.SystemErrorID,
			Error:      fmt.Sprintf("failed to load open attendance records: %v", err),
		})
		s.observeRun(result, false, currentTime)
		return result
	}

	result.Summary.TotalRecordsFound = len(records)
	if len(records) == 0 {
		slog.Info("Cron: No open attendance records found", "date", date.Format("2006-01-02"))
		result.Success = true
		s.observeRun(result, false, currentTime)
		return result
	}

	for _, record := range records {
		if record.Employee == nil || !record.Employee.IsActive() {
			result.Summary.Skipped++
			continue
		}

		processed, err := s.autoCheckout(ctx, record, cutoffTime, currentTime)
		if err != nil {
			slog.Error("Cron: Failed to auto checkout attendance",
				"attendance_id", record.ID,
				"employee_id", record.EmployeeID,
				"error", err)
			result.Errors = append(result.Errors, attendance.ReconcileError{
				EmployeeID: record.EmployeeID,
				Error:      err.Error(),
			})
			result.Summary.Failed++
			continue
		}

		result.ProcessedEmployees = append(result.ProcessedEmployees, processed)
		result.Summary.Successful++
		result.Processed++
	}

	result.Success = true

	slog.Info("Cron: Absence marking finished",
		"date", date.Format("2006-01-02"),
		"found", result.Summary.TotalRecordsFound,
		"successful", result.Summary.Successful,
		"failed", result.Summary.Failed,
		"skipped", result.Summary.Skipped)

	s.observeRun(result, false, currentTime)
	return result
}

// autoCheckout closes one open record at cutoff time and writes its audit entry.
func (s *AbsenceServiceImpl) autoCheckout(ctx context.Context, record attendance.Attendance, cutoffTime, currentTime time.Time) (attendance.ProcessedEmployee, error) {
	previousStatus := record.Status

	checkOut := cutoffTime
	record.CheckOut = &checkOut
	record.Status = attendance.StatusPresent
	record.AppendNote(fmt.Sprintf("[AUTO] Auto checkout at %s - missing manual checkout", cutoffTime.Format(time.RFC3339)))
	record.UpdatedAt = currentTime

	if err := s.AttendanceRepository.Update(ctx, record); err != nil {
		return attendance.ProcessedEmployee{}, fmt.Errorf("failed to update attendance %s: %w", record.ID, err)
	}

	_, err := s.Repository.Create(ctx, audit.Entry{
		Actor:        audit.SystemActor(),
		Action:       audit.ActionAttendanceAutoAbsent,
		ResourceType: audit.ResourceAttendance,
		ResourceID:   record.ID,
		OldValues: map[string]any{
			"status": string(previousStatus),
		},
		NewValues: map[string]any{
			"status":      string(attendance.StatusAbsent),
			"reason":      autoAbsentReason,
			"processedAt": currentTime.Format(time.RFC3339),
		},
		IPAddress: audit.SystemIPAddress,
		UserAgent: audit.SystemUserAgent,
		Timestamp: currentTime,
	})
	if err != nil {
		return attendance.ProcessedEmployee{}, fmt.Errorf("failed to write audit log for attendance %s: %w", record.ID, err)
	}

	return attendance.ProcessedEmployee{
		EmployeeID:     record.EmployeeID,
		EmployeeCode:   record.Employee.EmployeeCode,
		EmployeeName:   record.Employee.FullName(),
		CheckInTime:    formatTimePtr(record.CheckIn),
		PreviousStatus: previousStatus,
	}, nil
}

// MarkEmployeeAbsentForMissingCheckout implements attendance.AbsenceService.
func (s *AbsenceServiceImpl) MarkEmployeeAbsentForMissingCheckout(ctx context.Context, req attendance.ManualAbsenceRequest) (attendance.ManualAbsenceResult, error) {
	if err := req.Validate(); err != nil {
		return attendance.ManualAbsenceResult{}, err
	}

	now := s.cfg.Now()
	date := s.targetDay(req.Date, now)
	dateStr := date.Format("2006-01-02")

	record, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err != nil {
		return attendance.ManualAbsenceResult{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	if record == nil {
		return s.rejectManual(fmt.Sprintf("No attendance record found for employee %s on %s", req.EmployeeID, dateStr)), nil
	}
	if record.CheckIn == nil {
		return s.rejectManual(fmt.Sprintf("Employee %s has no check-in on %s", req.EmployeeID, dateStr)), nil
	}
	if record.CheckOut != nil {
		return s.rejectManual(fmt.Sprintf("Employee %s already checked out at %s", req.EmployeeID, record.CheckOut.Format(time.RFC3339))), nil
	}
	if record.Status == attendance.StatusAbsent {
		return s.rejectManual(fmt.Sprintf("Employee %s is already marked absent on %s", req.EmployeeID, dateStr)), nil
	}

	reason := req.Reason
	if reason == "" {
		reason = defaultManualReason
	}

	previousStatus := record.Status
	record.Status = attendance.StatusAbsent
	record.AppendNote(fmt.Sprintf("[MANUAL] %s on %s", reason, now.Format(time.RFC3339)))
	record.UpdatedAt = now

	actor := audit.SystemActor()
	if req.PerformedBy != "" {
		actor = audit.HumanActor(req.PerformedBy)
	}
	ipAddress, userAgent := req.IPAddress, req.UserAgent
	if ipAddress == "" {
		ipAddress = audit.SystemIPAddress
	}
	if userAgent == "" {
		userAgent = audit.SystemUserAgent
	}

	err = s.withinTx(ctx, func(ctx context.Context) error {
		if err := s.AttendanceRepository.Update(ctx, *record); err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}

		_, err := s.Repository.Create(ctx, audit.Entry{
			Actor:        actor,
			Action:       audit.ActionAttendanceManualAbsent,
			ResourceType: audit.ResourceAttendance,
			ResourceID:   record.ID,
			OldValues: map[string]any{
				"status": string(previousStatus),
			},
			NewValues: map[string]any{
				"status":      string(attendance.StatusAbsent),
				"reason":      reason,
				"processedAt": now.Format(time.RFC3339),
			},
			IPAddress: ipAddress,
			UserAgent: userAgent,
			Timestamp: now,
		})
		if err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.ManualAbsenceResult{}, err
	}

	code, name := req.EmployeeID, ""
	if record.Employee != nil {
		code, name = record.Employee.EmployeeCode, record.Employee.FullName()
	}

	slog.Info("Attendance manually marked absent",
		"attendance_id", record.ID,
		"employee_id", record.EmployeeID,
		"date", dateStr,
		"actor", string(actor.Kind))

	if s.metrics != nil {
		s.metrics.ObserveManual(true)
	}

	return attendance.ManualAbsenceResult{
		Success: true,
		Message: fmt.Sprintf("Successfully marked %s (%s) as absent", code, name),
	}, nil
}

func (s *AbsenceServiceImpl) withinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.transactor == nil {
		return fn(ctx)
	}
	return s.transactor.WithinTx(ctx, fn)
}

func (s *AbsenceServiceImpl) rejectManual(message string) attendance.ManualAbsenceResult {
	slog.Info("Manual absence rejected", "reason", message)
	if s.metrics != nil {
		s.metrics.ObserveManual(false)
	}
	return attendance.ManualAbsenceResult{Success: false, Message: message}
}

// GetAbsenceMarkingPreview implements attendance.AbsenceService.
func (s *AbsenceServiceImpl) GetAbsenceMarkingPreview(ctx context.Context, targetDate *time.Time) (attendance.Preview, error) {
	date := s.targetDay(targetDate, s.cfg.Now())

	records, err := s.AttendanceRepository.ListByDate(ctx, attendance.DateFilter{
		Date:      date,
		CheckedIn: true,
	})
	if err != nil {
		return attendance.Preview{}, fmt.Errorf("failed to load attendance records: %w", err)
	}

	preview := attendance.Preview{
		Date:         date.Format("2006-01-02"),
		TotalRecords: len(records),
		Employees:    []attendance.PreviewEmployee{},
	}

	for _, record := range records {
		if record.Status == attendance.StatusAbsent {
			preview.AlreadyProcessed++
		}
		if !record.IsOpen() || record.Employee == nil || !record.Employee.IsActive() {
			continue
		}
		preview.Employees = append(preview.Employees, attendance.PreviewEmployee{
			EmployeeCode:  record.Employee.EmployeeCode,
			EmployeeName:  record.Employee.FullName(),
			CheckInTime:   formatTimePtr(record.CheckIn),
			CurrentStatus: record.Status,
		})
	}
	preview.EligibleForMarking = len(preview.Employees)

	return preview, nil
}

func (s *AbsenceServiceImpl) observeRun(result attendance.ReconcileResult, beforeCutoff bool, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveRun(result, beforeCutoff, s.cfg.Now().Sub(started))
}

// formatTimePtr safely converts a *time.Time to an RFC3339 string.
func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
