package attendance

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/employee"
)

var errInjected = errors.New("injected failure")

// fakeAttendanceRepo keeps records in insertion order and counts every call.
type fakeAttendanceRepo struct {
	mu        sync.Mutex
	records   []attendance.Attendance
	failIDs   map[string]bool
	listErr   error
	listCalls int
	getCalls  int
	updCalls  int
}

func newFakeAttendanceRepo(records ...attendance.Attendance) *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: records, failIDs: map[string]bool{}}
}

func cloneRecord(a attendance.Attendance) attendance.Attendance {
	c := a
	if a.CheckIn != nil {
		v := *a.CheckIn
		c.CheckIn = &v
	}
	if a.CheckOut != nil {
		v := *a.CheckOut
		c.CheckOut = &v
	}
	if a.Notes != nil {
		v := *a.Notes
		c.Notes = &v
	}
	if a.Employee != nil {
		v := *a.Employee
		c.Employee = &v
	}
	return c
}

func (f *fakeAttendanceRepo) ListByDate(ctx context.Context, filter attendance.DateFilter) ([]attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}

	var out []attendance.Attendance
	for _, r := range f.records {
		if !sameDay(r.Date, filter.Date) {
			continue
		}
		if filter.CheckedIn && r.CheckIn == nil {
			continue
		}
		if filter.OpenOnly && r.CheckOut != nil {
			continue
		}
		excluded := false
		for _, s := range filter.ExcludeStatuses {
			if r.Status == s {
				excluded = true
			}
		}
		if excluded {
			continue
		}
		out = append(out, cloneRecord(r))
	}
	return out, nil
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	for _, r := range f.records {
		if r.EmployeeID == employeeID && sameDay(r.Date, date) {
			c := cloneRecord(r)
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceRepo) Update(ctx context.Context, a attendance.Attendance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updCalls++
	if f.failIDs[a.ID] {
		return errInjected
	}
	for i, r := range f.records {
		if r.ID == a.ID {
			updated := cloneRecord(a)
			updated.Employee = r.Employee
			f.records[i] = updated
			return nil
		}
	}
	return attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceRepo) byID(id string) attendance.Attendance {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			return cloneRecord(r)
		}
	}
	return attendance.Attendance{}
}

func (f *fakeAttendanceRepo) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls + f.getCalls + f.updCalls
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []audit.Entry
	fail    bool
}

func (f *fakeAuditRepo) Create(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return audit.Entry{}, errInjected
	}
	entry.ID = "audit-" + entry.ResourceID
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeAuditRepo) all() []audit.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]audit.Entry(nil), f.entries...)
}

type fakeMetrics struct {
	runs         int
	beforeCutoff int
	manual       map[bool]int
}

func (f *fakeMetrics) ObserveRun(result attendance.ReconcileResult, beforeCutoff bool, duration time.Duration) {
	f.runs++
	if beforeCutoff {
		f.beforeCutoff++
	}
}

func (f *fakeMetrics) ObserveManual(applied bool) {
	if f.manual == nil {
		f.manual = map[bool]int{}
	}
	f.manual[applied]++
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

var testDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func activeEmployee(id, code, first, last string) *employee.Employee {
	return &employee.Employee{ID: id, EmployeeCode: code, FirstName: first, LastName: last, Status: employee.StatusActive}
}

func openRecord(id string, emp *employee.Employee) attendance.Attendance {
	return attendance.Attendance{
		ID:         id,
		EmployeeID: emp.ID,
		Date:       testDate,
		CheckIn:    ptr(at(9, 0)),
		Status:     attendance.StatusPresent,
		Employee:   emp,
	}
}

// fakeTransactor counts transactions and reports fn's error, without rollback semantics.
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func newTestService(repo *fakeAttendanceRepo, auditRepo *fakeAuditRepo, metrics MetricsRecorder, now time.Time) attendance.AbsenceService {
	return NewAbsenceService(repo, auditRepo, nil, metrics, Config{
		Cutoff:   attendance.DefaultCutoff(),
		Location: time.UTC,
		Now:      func() time.Time { return now },
	})
}
