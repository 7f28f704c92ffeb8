package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup holds a migrated connection to the integration test database
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies migrations.
// Tests are skipped when the variable is not set.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping postgres integration test")
	}

	require.NoError(t, database.Migrate(dsn))

	db, err := database.NewPostgreSQLDB(context.Background(), dsn, database.PoolOptions{MaxConns: 4})
	require.NoError(t, err, "failed to connect to test database")

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(context.Background()))
	t.Cleanup(setup.Close)

	return setup
}

// TruncateAllTables removes every row the tests may have written
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"audit_logs",
		"attendances",
		"employees",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// InsertEmployee stores an employee and returns its id
func (s *TestDatabaseSetup) InsertEmployee(t *testing.T, code, firstName, lastName, status string) string {
	t.Helper()

	var id string
	err := s.DB.QueryRow(context.Background(),
		`INSERT INTO employees (employee_code, first_name, last_name, status) VALUES ($1, $2, $3, $4) RETURNING id`,
		code, firstName, lastName, status,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// InsertAttendance stores an attendance row and returns its id
func (s *TestDatabaseSetup) InsertAttendance(t *testing.T, employeeID, date string, checkIn, checkOut interface{}, status string) string {
	t.Helper()

	var id string
	err := s.DB.QueryRow(context.Background(),
		`INSERT INTO attendances (employee_id, date, check_in, check_out, status) VALUES ($1, $2::date, $3, $4, $5) RETURNING id`,
		employeeID, date, checkIn, checkOut, status,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// Close closes the database connection
func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}
