package draft

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
	"github.com/porticus-lab/go-toolbox/internal/invoice"
)

func openSQLite(t *testing.T) *SQLStore {
	t.Helper()
	s, err := Open(context.Background(), "sqlite3", filepath.Join(t.TempDir(), "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func TestSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	want := invoice.Default(time.Date(2024, time.March, 24, 15, 30, 0, 0, time.UTC))
	want.Notes = "Net 30"
	require.NoError(t, s.Save(ctx, InvoiceKey, want))

	got, err := s.Load(ctx, InvoiceKey)
	require.NoError(t, err)

	assert.True(t, sameDay(want.InvoiceDate, got.InvoiceDate))
	got.InvoiceDate = want.InvoiceDate
	assert.Equal(t, want, got)
}

func TestSQLite_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	d := invoice.Default(time.Now())
	require.NoError(t, s.Save(ctx, InvoiceKey, d))
	d.InvoiceNumber = "INV-002"
	require.NoError(t, s.Save(ctx, InvoiceKey, d))

	got, err := s.Load(ctx, InvoiceKey)
	require.NoError(t, err)
	assert.Equal(t, "INV-002", got.InvoiceNumber)
}

func TestSQLite_NotFound(t *testing.T) {
	_, err := openSQLite(t).Load(context.Background(), InvoiceKey)
	assert.ErrorIs(t, err, apperr.ErrDraftNotFound)
}

func TestSQLite_Corrupt(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)`, InvoiceKey, "{not json", time.Now())
	require.NoError(t, err)

	_, err = s.Load(ctx, InvoiceKey)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "")
	assert.ErrorIs(t, err, apperr.ErrUnsupportedValue)
}

func TestPostgres_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db, "postgres")
	fixed := time.Date(2024, time.March, 24, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, $3)`)).
		WithArgs(InvoiceKey, sqlmock.AnyArg(), fixed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Save(context.Background(), InvoiceKey, invoice.Default(fixed)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := New(db, "postgres")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = $1`)).
		WithArgs(InvoiceKey).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).
			AddRow(`{"invoiceNumber":"INV-042","invoiceDate":"2024-03-24T00:00:00Z","items":[],"taxRate":5}`))

	got, err := s.Load(context.Background(), InvoiceKey)
	require.NoError(t, err)
	assert.Equal(t, "INV-042", got.InvoiceNumber)
	assert.Equal(t, 5.0, got.TaxRate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_LoadMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT value FROM kv`).
		WithArgs(InvoiceKey).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err = New(db, "postgres").Load(context.Background(), InvoiceKey)
	assert.ErrorIs(t, err, apperr.ErrDraftNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Migrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS kv`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, New(db, "postgres").Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
