package attendance

import (
	"context"
	"time"
)

// AbsenceService reconciles attendance records left open after the daily cutoff.
//
// A non-nil targetDate names a calendar day: its year, month and day are read in the
// time's own location, as ParseTargetDate produces them, and never shifted into the
// configured zone. A nil targetDate means today in the configured zone.
type AbsenceService interface {
	// MarkAbsentForMissingCheckout runs the end-of-day reconciliation for targetDate (today when nil).
	// Per-record failures are reported in the result and never abort the batch.
	MarkAbsentForMissingCheckout(ctx context.Context, targetDate *time.Time) ReconcileResult

	// MarkEmployeeAbsentForMissingCheckout corrects a single employee's day.
	MarkEmployeeAbsentForMissingCheckout(ctx context.Context, req ManualAbsenceRequest) (ManualAbsenceResult, error)

	// GetAbsenceMarkingPreview reports what a run would do without mutating anything.
	GetAbsenceMarkingPreview(ctx context.Context, targetDate *time.Time) (Preview, error)
}
