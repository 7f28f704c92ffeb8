package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/employee"
)

type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusLate    Status = "LATE"
	StatusAbsent  Status = "ABSENT"
	StatusOnLeave Status = "ON_LEAVE"
	StatusHoliday Status = "HOLIDAY"
	StatusHalfDay Status = "HALF_DAY"
)

// TerminalStatuses are never touched by end-of-day reconciliation.
var TerminalStatuses = []Status{StatusAbsent, StatusOnLeave, StatusHoliday}

func (s Status) IsTerminal() bool {
	for _, t := range TerminalStatuses {
		if s == t {
			return true
		}
	}
	return false
}

// Attendance is one employee's record for one calendar date.
type Attendance struct {
	ID         string
	EmployeeID string
	Date       time.Time
	CheckIn    *time.Time
	CheckOut   *time.Time
	Status     Status
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Employee *employee.Employee
}

// IsOpen reports whether the record is checked in, not checked out and not in a terminal status.
func (a Attendance) IsOpen() bool {
	return a.CheckIn != nil && a.CheckOut == nil && !a.Status.IsTerminal()
}

// AppendNote adds note on a new line after any existing notes.
func (a *Attendance) AppendNote(note string) {
	if a.Notes == nil || *a.Notes == "" {
		a.Notes = &note
		return
	}
	joined := *a.Notes + "\n" + note
	a.Notes = &joined
}

// DateOnly returns midnight in loc of the calendar day t names in its own location.
// t is not converted to loc first; callers wanting "today in loc" pass time.Now().In(loc).
func DateOnly(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
