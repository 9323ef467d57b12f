package postgresql_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sitebooks/sitebooks-backend/internal/pkg/database"
	"github.com/sitebooks/sitebooks-backend/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

var migrationFile = filepath.Join("..", "..", "..", "..", "migrations", "001_init.sql")

// ledgerTables lists every table the fixtures write, children first.
var ledgerTables = []string{
	"site_transactions",
	"ledgers",
	"ledger_types",
	"vouchers",
	"site_receipts",
	"labour_payments",
	"vehicle_rent_logs",
	"material_supplier_ledgers",
	"site_expenses",
	"staff_expenses",
	"sites",
	"departments",
}

// newTestDB connects to TEST_DATABASE_URL, applies the schema and empties every ledger table.
// Tests are skipped when no database is configured.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx := context.Background()
	schema, err := os.ReadFile(migrationFile)
	require.NoError(t, err)
	_, err = db.Exec(ctx, string(schema))
	require.NoError(t, err)

	_, err = db.Exec(ctx, "TRUNCATE TABLE "+strings.Join(ledgerTables, ", ")+" CASCADE")
	require.NoError(t, err)

	return db
}

// fixtures inserts ledger rows inside one transaction.
type fixtures struct {
	t  *testing.T
	tx pgx.Tx
}

func seed(t *testing.T, db *database.DB, fn func(f *fixtures)) {
	t.Helper()
	err := postgresql.WithTransaction(context.Background(), db, func(_ context.Context, tx pgx.Tx) error {
		fn(&fixtures{t: t, tx: tx})
		return nil
	})
	require.NoError(t, err)
}

func (f *fixtures) exec(query string, args ...any) {
	f.t.Helper()
	_, err := f.tx.Exec(context.Background(), query, args...)
	require.NoError(f.t, err)
}

func (f *fixtures) department(name string) string {
	id := uuid.NewString()
	f.exec(`INSERT INTO departments (id, name) VALUES ($1, $2)`, id, name)
	return id
}

func (f *fixtures) site(name string, departmentID *string, createdAt time.Time) string {
	id := uuid.NewString()
	f.exec(`INSERT INTO sites (id, site_name, department_id, status, created_at) VALUES ($1, $2, $3, 'ACTIVE', $4)`,
		id, name, departmentID, createdAt)
	return id
}

func (f *fixtures) staffExpense(siteID string, in, out *string) string {
	id := uuid.NewString()
	f.exec(`INSERT INTO staff_expenses (id, site_id, in_amount, out_amount) VALUES ($1, $2, $3::text::numeric, $4::text::numeric)`,
		id, siteID, in, out)
	return id
}

func (f *fixtures) ledgerType(name string) string {
	id := uuid.NewString()
	f.exec(`INSERT INTO ledger_types (id, name) VALUES ($1, $2)`, id, name)
	return id
}

func strPtr(s string) *string { return &s }
