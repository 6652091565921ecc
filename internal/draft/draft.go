// Package draft persists in-progress invoices in a key-value table.
package draft

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/porticus-lab/go-toolbox/internal/apperr"
	"github.com/porticus-lab/go-toolbox/internal/invoice"
)

// InvoiceKey is the key the invoice generator saves its draft under.
const InvoiceKey = "invoice-draft"

// ErrCorrupt is returned when a stored draft cannot be decoded.
var ErrCorrupt = errors.New("the saved data may be corrupted")

// Store saves and loads invoice drafts.
type Store interface {
	Save(ctx context.Context, key string, d *invoice.Data) error
	Load(ctx context.Context, key string) (*invoice.Data, error)
	Close() error
}

// SQLStore keeps drafts in the kv table of a SQLite or PostgreSQL
// database.
type SQLStore struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Open connects to dsn with driver ("sqlite3" or "postgres") and creates
// the schema.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	switch driver {
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("%w: draft driver %q", apperr.ErrUnsupportedValue, driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := New(db, driver)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database.
func New(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver, now: time.Now}
}

// Migrate creates the kv table if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("creating kv table: %w", err)
	}
	return nil
}

func (s *SQLStore) bind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	// Rewrite ? placeholders as $1, $2, ...
	out := make([]byte, 0, len(query)+4)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

// Save stores d under key, replacing any previous draft.
func (s *SQLStore) Save(ctx context.Context, key string, d *invoice.Data) error {
	value, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.bind(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		key, string(value), s.now().UTC())
	if err != nil {
		return fmt.Errorf("saving draft %q: %w", key, err)
	}
	return nil
}

// Load returns the draft stored under key. A missing key yields
// apperr.ErrDraftNotFound; undecodable data yields ErrCorrupt.
func (s *SQLStore) Load(ctx context.Context, key string) (*invoice.Data, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.bind(`SELECT value FROM kv WHERE key = ?`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading draft %q: %w", key, err)
	}

	var d invoice.Data
	if err := json.Unmarshal([]byte(value), &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &d, nil
}

// Close releases the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
