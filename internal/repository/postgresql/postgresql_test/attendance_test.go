package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reconciler/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-reconciler/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var workDay = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func TestAttendanceRepository_ListByDate_OpenFilter(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)

	checkIn := workDay.Add(9 * time.Hour)
	checkOut := workDay.Add(17 * time.Hour)

	budi := setup.InsertEmployee(t, "0001-0001", "Budi", "Santoso", "ACTIVE")
	sari := setup.InsertEmployee(t, "0001-0002", "Sari", "Dewi", "ACTIVE")
	andi := setup.InsertEmployee(t, "0001-0003", "Andi", "Wijaya", "ACTIVE")
	rina := setup.InsertEmployee(t, "0001-0004", "Rina", "", "INACTIVE")

	openID := setup.InsertAttendance(t, budi, "2024-03-04", checkIn, nil, "PRESENT")
	setup.InsertAttendance(t, sari, "2024-03-04", checkIn, checkOut, "PRESENT")
	setup.InsertAttendance(t, andi, "2024-03-04", checkIn, nil, "ON_LEAVE")
	inactiveID := setup.InsertAttendance(t, rina, "2024-03-04", checkIn, nil, "LATE")
	setup.InsertAttendance(t, budi, "2024-03-05", checkIn.Add(24*time.Hour), nil, "PRESENT")

	records, err := repo.ListByDate(ctx, attendance.DateFilter{
		Date:            workDay,
		CheckedIn:       true,
		OpenOnly:        true,
		ExcludeStatuses: attendance.TerminalStatuses,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	ids := []string{records[0].ID, records[1].ID}
	assert.ElementsMatch(t, []string{openID, inactiveID}, ids)
	for _, r := range records {
		require.NotNil(t, r.Employee)
		assert.Equal(t, r.EmployeeID, r.Employee.ID)
		assert.Nil(t, r.CheckOut)
	}

	all, err := repo.ListByDate(ctx, attendance.DateFilter{Date: workDay, CheckedIn: true})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestAttendanceRepository_GetByEmployeeAndDate(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)

	empID := setup.InsertEmployee(t, "0002-0001", "Dian", "Lestari", "ACTIVE")
	id := setup.InsertAttendance(t, empID, "2024-03-04", workDay.Add(8*time.Hour), nil, "PRESENT")

	found, err := repo.GetByEmployeeAndDate(ctx, empID, workDay)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, id, found.ID)
	assert.Equal(t, "Dian Lestari", found.Employee.FullName())

	missing, err := repo.GetByEmployeeAndDate(ctx, empID, workDay.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAttendanceRepository_Update(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)

	empID := setup.InsertEmployee(t, "0003-0001", "Eko", "Prasetyo", "ACTIVE")
	setup.InsertAttendance(t, empID, "2024-03-04", workDay.Add(9*time.Hour), nil, "LATE")

	record, err := repo.GetByEmployeeAndDate(ctx, empID, workDay)
	require.NoError(t, err)

	checkOut := workDay.Add(18 * time.Hour)
	record.CheckOut = &checkOut
	record.Status = attendance.StatusPresent
	record.AppendNote("[AUTO] Auto checkout")
	record.UpdatedAt = workDay.Add(19 * time.Hour)
	require.NoError(t, repo.Update(ctx, *record))

	stored, err := repo.GetByEmployeeAndDate(ctx, empID, workDay)
	require.NoError(t, err)
	require.NotNil(t, stored.CheckOut)
	assert.True(t, checkOut.Equal(*stored.CheckOut))
	assert.Equal(t, attendance.StatusPresent, stored.Status)
	assert.Equal(t, "[AUTO] Auto checkout", *stored.Notes)

	record.Status = attendance.Status("SICK")
	err = repo.Update(ctx, *record)
	assert.ErrorIs(t, err, attendance.ErrInvalidStatus)

	record.ID = "00000000-0000-0000-0000-000000000000"
	record.Status = attendance.StatusPresent
	assert.ErrorIs(t, repo.Update(ctx, *record), attendance.ErrAttendanceNotFound)
}

func TestAuditRepository_Create(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAuditRepository(setup.DB)

	created, err := repo.Create(ctx, audit.Entry{
		Actor:        audit.SystemActor(),
		Action:       audit.ActionAttendanceAutoAbsent,
		ResourceType: audit.ResourceAttendance,
		ResourceID:   "att-1",
		OldValues:    map[string]any{"status": "PRESENT"},
		NewValues:    map[string]any{"status": "ABSENT"},
		IPAddress:    audit.SystemIPAddress,
		UserAgent:    audit.SystemUserAgent,
		Timestamp:    workDay.Add(19 * time.Hour),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	var actorType string
	var userID *string
	var status string
	err = setup.DB.QueryRow(ctx,
		`SELECT actor_type, user_id, new_values->>'status' FROM audit_logs WHERE id = $1`, created.ID,
	).Scan(&actorType, &userID, &status)
	require.NoError(t, err)
	assert.Equal(t, "SYSTEM", actorType)
	assert.Nil(t, userID)
	assert.Equal(t, "ABSENT", status)

	_, err = repo.Create(ctx, audit.Entry{
		ID:           created.ID,
		Actor:        audit.HumanActor("user-1"),
		Action:       audit.ActionAttendanceManualAbsent,
		ResourceType: audit.ResourceAttendance,
		ResourceID:   "att-1",
		IPAddress:    "10.0.0.1",
		UserAgent:    "curl/8.0",
	})
	assert.ErrorIs(t, err, audit.ErrDuplicateEntry)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	attendanceRepo := postgresql.NewAttendanceRepository(setup.DB)
	auditRepo := postgresql.NewAuditRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)

	empID := setup.InsertEmployee(t, "0004-0001", "Fajar", "Nugroho", "ACTIVE")
	setup.InsertAttendance(t, empID, "2024-03-04", workDay.Add(9*time.Hour), nil, "PRESENT")

	errAbort := errors.New("abort")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		record, err := attendanceRepo.GetByEmployeeAndDate(ctx, empID, workDay)
		if err != nil {
			return err
		}
		record.Status = attendance.StatusAbsent
		record.UpdatedAt = time.Now()
		if err := attendanceRepo.Update(ctx, *record); err != nil {
			return err
		}
		if _, err := auditRepo.Create(ctx, audit.Entry{
			Actor:        audit.SystemActor(),
			Action:       audit.ActionAttendanceManualAbsent,
			ResourceType: audit.ResourceAttendance,
			ResourceID:   record.ID,
			IPAddress:    audit.SystemIPAddress,
			UserAgent:    audit.SystemUserAgent,
		}); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	stored, err := attendanceRepo.GetByEmployeeAndDate(ctx, empID, workDay)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, stored.Status)

	var count int
	require.NoError(t, setup.DB.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&count))
	assert.Zero(t, count)
}
