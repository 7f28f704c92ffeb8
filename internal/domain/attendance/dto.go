package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/validator"
)

// SystemErrorID tags errors that are not tied to a single employee.
const SystemErrorID = "SYSTEM"

// ========================================
// RECONCILIATION DTOs
// ========================================

type ReconcileResult struct {
	Success            bool                `json:"success"`
	Processed          int                 `json:"processed"`
	Errors             []ReconcileError    `json:"errors"`
	Summary            ReconcileSummary    `json:"summary"`
	ProcessedEmployees []ProcessedEmployee `json:"processed_employees"`
}

type ReconcileSummary struct {
	TotalRecordsFound int `json:"total_records_found"`
	Successful        int `json:"successful"`
	Failed            int `json:"failed"`
	Skipped           int `json:"skipped"`
}

type ReconcileError struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

type ProcessedEmployee struct {
	EmployeeID     string `json:"employee_id"`
	EmployeeCode   string `json:"employee_code"`
	EmployeeName   string `json:"employee_name"`
	CheckInTime    string `json:"check_in_time"`
	PreviousStatus Status `json:"previous_status"`
}

// NewReconcileResult returns an empty, not-yet-successful result with non-nil slices.
func NewReconcileResult() ReconcileResult {
	return ReconcileResult{
		Errors:             []ReconcileError{},
		ProcessedEmployees: []ProcessedEmployee{},
	}
}

// ========================================
// MANUAL CORRECTION DTOs
// ========================================

type ManualAbsenceRequest struct {
	EmployeeID  string     `json:"employee_id"`
	Date        *time.Time `json:"-"`
	Reason      string     `json:"reason"`
	PerformedBy string     `json:"performed_by"`
	IPAddress   string     `json:"-"`
	UserAgent   string     `json:"-"`

	// RawDate is the YYYY-MM-DD form accepted over HTTP.
	RawDate string `json:"date"`
}

func (r *ManualAbsenceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if !validator.IsEmpty(r.RawDate) {
		if date, ok := validator.IsValidDate(r.RawDate); ok {
			r.Date = &date
		} else {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ManualAbsenceResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ========================================
// RUN / PREVIEW DTOs
// ========================================

type RunAbsenceRequest struct {
	Date string `json:"date"`
}

// TargetDate parses the optional date; nil means "today".
func (r RunAbsenceRequest) TargetDate() (*time.Time, error) {
	return ParseTargetDate(r.Date)
}

// ParseTargetDate parses an optional YYYY-MM-DD string.
func ParseTargetDate(raw string) (*time.Time, error) {
	if validator.IsEmpty(raw) {
		return nil, nil
	}
	date, ok := validator.IsValidDate(raw)
	if !ok {
		return nil, ErrInvalidTargetDate
	}
	return &date, nil
}

type Preview struct {
	Date               string            `json:"date"`
	TotalRecords       int               `json:"total_records"`
	EligibleForMarking int               `json:"eligible_for_marking"`
	AlreadyProcessed   int               `json:"already_processed"`
	Employees          []PreviewEmployee `json:"employees"`
}

type PreviewEmployee struct {
	EmployeeCode  string `json:"employee_code"`
	EmployeeName  string `json:"employee_name"`
	CheckInTime   string `json:"check_in_time"`
	CurrentStatus Status `json:"current_status"`
}
