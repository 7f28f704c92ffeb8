package gormdb

import (
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/employee"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type employeeModel struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeCode string    `gorm:"column:employee_code;type:varchar(50);not null;uniqueIndex"`
	FirstName    string    `gorm:"column:first_name;type:varchar(100);not null"`
	LastName     string    `gorm:"column:last_name;type:varchar(100);not null;default:''"`
	Status       string    `gorm:"column:status;type:varchar(20);not null;default:ACTIVE"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (employeeModel) TableName() string {
	return "employees"
}

type attendanceModel struct {
	ID         string         `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID string         `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:attendances_employee_date_key"`
	Date       string         `gorm:"column:date;type:date;not null;uniqueIndex:attendances_employee_date_key"`
	CheckIn    *time.Time     `gorm:"column:check_in"`
	CheckOut   *time.Time     `gorm:"column:check_out"`
	Status     string         `gorm:"column:status;type:varchar(20);not null;default:PRESENT"`
	Notes      *string        `gorm:"column:notes;type:text"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
	Employee   *employeeModel `gorm:"foreignKey:EmployeeID;references:ID"`
}

func (attendanceModel) TableName() string {
	return "attendances"
}

type auditLogModel struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey"`
	ActorType    string    `gorm:"column:actor_type;type:varchar(10);not null"`
	UserID       *string   `gorm:"column:user_id;type:varchar(100)"`
	Action       string    `gorm:"column:action;type:varchar(50);not null"`
	ResourceType string    `gorm:"column:resource_type;type:varchar(50);not null"`
	ResourceID   string    `gorm:"column:resource_id;type:varchar(100);not null"`
	OldValues    *string   `gorm:"column:old_values;type:jsonb"`
	NewValues    *string   `gorm:"column:new_values;type:jsonb"`
	IPAddress    string    `gorm:"column:ip_address;type:varchar(64);not null"`
	UserAgent    string    `gorm:"column:user_agent;type:text;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (auditLogModel) TableName() string {
	return "audit_logs"
}

// Models lists every table the gorm backend reads or writes, in dependency order.
func Models() []interface{} {
	return []interface{}{&employeeModel{}, &attendanceModel{}, &auditLogModel{}}
}

func (m attendanceModel) toDomain() (attendance.Attendance, error) {
	date, err := parseDay(m.Date)
	if err != nil {
		return attendance.Attendance{}, err
	}

	a := attendance.Attendance{
		ID:         m.ID,
		EmployeeID: m.EmployeeID,
		Date:       date,
		CheckIn:    m.CheckIn,
		CheckOut:   m.CheckOut,
		Status:     attendance.Status(m.Status),
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Employee != nil {
		a.Employee = &employee.Employee{
			ID:           m.Employee.ID,
			EmployeeCode: m.Employee.EmployeeCode,
			FirstName:    m.Employee.FirstName,
			LastName:     m.Employee.LastName,
			Status:       employee.Status(m.Employee.Status),
		}
	}
	return a, nil
}

// parseDay accepts both a bare date and a timestamp rendering of one, since drivers
// hand date columns back as time values.
func parseDay(s string) (time.Time, error) {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	return time.Parse(dateLayout, s)
}

func auditFromDomain(e audit.Entry) auditLogModel {
	return auditLogModel{
		ID:           e.ID,
		ActorType:    string(e.Actor.Kind),
		UserID:       e.Actor.UserIDPtr(),
		Action:       string(e.Action),
		ResourceType: string(e.ResourceType),
		ResourceID:   e.ResourceID,
		IPAddress:    e.IPAddress,
		UserAgent:    e.UserAgent,
		CreatedAt:    e.Timestamp,
	}
}

// AutoMigrate creates the gorm backend's tables. Postgres deployments use the SQL
// migrations instead; this is for sqlite.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
