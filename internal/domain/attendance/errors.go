package attendance

import "errors"

// Attendance domain errors
var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidTargetDate  = errors.New("target date must be in YYYY-MM-DD format")
)

// Storage constraint errors
var (
	ErrInvalidStatus   = errors.New("attendance status violates storage constraints")
	ErrDuplicateRecord = errors.New("attendance record already exists for employee and date")
)
