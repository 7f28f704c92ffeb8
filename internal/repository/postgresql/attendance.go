package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceSelect = `
	SELECT a.id, a.employee_id, a.date, a.check_in, a.check_out, a.status, a.notes,
		   a.created_at, a.updated_at,
		   e.id, e.employee_code, e.first_name, e.last_name, e.status
	FROM attendances a
	LEFT JOIN employees e ON e.id = a.employee_id
`

type attendanceRepository struct {
	db *database.DB
}

// ListByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDate(ctx context.Context, filter attendance.DateFilter) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	var conditions []string
	args := []interface{}{filter.Date.Format("2006-01-02")}
	conditions = append(conditions, "a.date = $1::date")

	if filter.CheckedIn {
		conditions = append(conditions, "a.check_in IS NOT NULL")
	}
	if filter.OpenOnly {
		conditions = append(conditions, "a.check_out IS NULL")
	}
	if len(filter.ExcludeStatuses) > 0 {
		statuses := make([]string, len(filter.ExcludeStatuses))
		for i, s := range filter.ExcludeStatuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		conditions = append(conditions, fmt.Sprintf("a.status <> ALL($%d)", len(args)))
	}

	query := attendanceSelect + " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY a.created_at, a.id"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances by date: %w", err)
	}
	defer rows.Close()

	var attendances []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return attendances, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := attendanceSelect + " WHERE a.employee_id = $1 AND a.date = $2::date LIMIT 1"

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date.Format("2006-01-02")))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	return &att, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET check_out = $1, status = $2, notes = $3, updated_at = $4
		WHERE id = $5
	`

	commandTag, err := q.Exec(ctx, query, att.CheckOut, string(att.Status), att.Notes, att.UpdatedAt, att.ID)
	if err != nil {
		err = mapConstraintError(err, attendance.ErrInvalidStatus, attendance.ErrDuplicateRecord)
		return fmt.Errorf("failed to update attendance: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		att       attendance.Attendance
		status    string
		empID     *string
		empCode   *string
		firstName *string
		lastName  *string
		empStatus *string
	)

	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date, &att.CheckIn, &att.CheckOut, &status, &att.Notes,
		&att.CreatedAt, &att.UpdatedAt,
		&empID, &empCode, &firstName, &lastName, &empStatus,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}

	att.Status = attendance.Status(status)
	if empID != nil {
		att.Employee = &employee.Employee{
			ID:           *empID,
			EmployeeCode: deref(empCode),
			FirstName:    deref(firstName),
			LastName:     deref(lastName),
			Status:       employee.Status(deref(empStatus)),
		}
	}

	return att, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
