// Package sqlite implements the store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"fatrate/internal/domain"
)

// DB wraps a *sql.DB and implements the domain store port.
type DB struct {
	sql *sql.DB
}

// Ensure interfaces are met.
var _ domain.Store = (*DB)(nil)
var _ domain.ChatTx = (*chatTx)(nil)

// dbtx is satisfied by both *sql.DB and *sql.Tx so the query helpers can be
// shared between plain reads and chat-update transactions.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dsnOptions apply to every pooled connection. Transactions take the write
// lock at BEGIN, so a second writer queues on busy_timeout instead of
// failing mid-transaction once it tries its first write. WAL keeps readers
// from blocking the writer.
const dsnOptions = "?_txlock=immediate" +
	"&_pragma=journal_mode(WAL)" +
	"&_pragma=busy_timeout(5000)" +
	"&_pragma=foreign_keys(1)"

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	s, err := sql.Open("sqlite", path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS measurements (
			user_id INTEGER NOT NULL,
			chat_id INTEGER NOT NULL,
			height_cm REAL,
			weight_kg REAL NOT NULL,
			bmi REAL NOT NULL,
			measurement_date TEXT NOT NULL,
			PRIMARY KEY (user_id, chat_id, measurement_date)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_measurements_chat ON measurements(chat_id);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id INTEGER NOT NULL,
			chat_id INTEGER NOT NULL,
			username TEXT NOT NULL DEFAULT '',
			prefix TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (user_id, chat_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_chat ON profiles(chat_id);`,
	}
	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
