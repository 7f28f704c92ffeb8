package gormdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"gorm.io/gorm"
)

type attendanceRepository struct {
	db *gorm.DB
}

// ListByDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) ListByDate(ctx context.Context, filter attendance.DateFilter) ([]attendance.Attendance, error) {
	q := conn(ctx, r.db).
		Preload("Employee").
		Where("date = ?", filter.Date.Format(dateLayout))

	if filter.CheckedIn {
		q = q.Where("check_in IS NOT NULL")
	}
	if filter.OpenOnly {
		q = q.Where("check_out IS NULL")
	}
	if len(filter.ExcludeStatuses) > 0 {
		statuses := make([]string, len(filter.ExcludeStatuses))
		for i, s := range filter.ExcludeStatuses {
			statuses[i] = string(s)
		}
		q = q.Where("status NOT IN ?", statuses)
	}

	var models []attendanceModel
	if err := q.Order("created_at").Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list attendances by date: %w", err)
	}

	attendances := make([]attendance.Attendance, 0, len(models))
	for _, m := range models {
		a, err := m.toDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode attendance %s: %w", m.ID, err)
		}
		attendances = append(attendances, a)
	}
	return attendances, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	var m attendanceModel
	err := conn(ctx, r.db).
		Preload("Employee").
		Where("employee_id = ? AND date = ?", employeeID, date.Format(dateLayout)).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	a, err := m.toDomain()
	if err != nil {
		return nil, fmt.Errorf("failed to decode attendance %s: %w", m.ID, err)
	}
	return &a, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) error {
	result := conn(ctx, r.db).
		Model(&attendanceModel{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"check_out":  a.CheckOut,
			"status":     string(a.Status),
			"notes":      a.Notes,
			"updated_at": a.UpdatedAt,
		})
	if result.Error != nil {
		err := mapConstraintError(result.Error, attendance.ErrInvalidStatus, attendance.ErrDuplicateRecord)
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if result.RowsAffected == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

func NewAttendanceRepository(db *gorm.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
