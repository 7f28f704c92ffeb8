package attendance

import (
	"context"
	"time"
)

// DateFilter selects attendance records of a single calendar date.
type DateFilter struct {
	Date time.Time

	// CheckedIn keeps only records with a check-in timestamp.
	CheckedIn bool

	// OpenOnly keeps only records without a check-out timestamp.
	OpenOnly bool

	ExcludeStatuses []Status
}

// AttendanceRepository is the data access the reconciliation job depends on.
// Every read eager-loads the record's employee.
type AttendanceRepository interface {
	// ListByDate returns the records matching filter in storage order.
	ListByDate(ctx context.Context, filter DateFilter) ([]Attendance, error)

	// GetByEmployeeAndDate returns nil, nil when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// Update persists check_out, status, notes and updated_at by record id.
	Update(ctx context.Context, attendance Attendance) error
}
