// Package wordpress reads the legacy WooCommerce schema. It is strictly
// read-only; the SQL text below is the wire contract with the legacy
// system and is kept verbatim.
package wordpress

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// Source is a read-only gateway to the WordPress database
type Source struct {
	db *sql.DB
}

// Open connects to the WordPress database via the MySQL driver
func Open(dsn string) (*Source, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open source database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping source database: %w", err)
	}
	return &Source{db: db}, nil
}

// New wraps an existing handle. Tests inject a SQLite-backed fixture here.
func New(db *sql.DB) *Source {
	return &Source{db: db}
}

// HasTable reports whether the given legacy table exists. A shop without
// WooCommerce history simply has none of the wp_ tables; tasks treat that
// as "nothing to do", not as an error.
func (s *Source) HasTable(ctx context.Context, name string) bool {
	rows, err := s.db.QueryContext(ctx, "SELECT 1 FROM "+name+" LIMIT 1")
	if err != nil {
		return false
	}
	rows.Close()
	return true
}

// Close closes the underlying connection
func (s *Source) Close() error {
	return s.db.Close()
}
