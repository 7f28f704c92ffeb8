package employee

import "strings"

// Employee is the read-only projection of an employee that attendance jobs need.
type Employee struct {
	ID           string
	EmployeeCode string
	FirstName    string
	LastName     string
	Status       Status
}

type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusInactive   Status = "INACTIVE"
	StatusTerminated Status = "TERMINATED"
)

func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}

// FullName joins first and last name, tolerating a missing last name.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}
