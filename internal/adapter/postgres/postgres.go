// Package postgres implements the store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

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

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

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
			user_id BIGINT NOT NULL,
			chat_id BIGINT NOT NULL,
			height_cm DOUBLE PRECISION,
			weight_kg DOUBLE PRECISION NOT NULL,
			bmi DOUBLE PRECISION NOT NULL,
			measurement_date TEXT NOT NULL,
			PRIMARY KEY (user_id, chat_id, measurement_date)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_measurements_chat ON measurements(chat_id);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id BIGINT NOT NULL,
			chat_id BIGINT NOT NULL,
			username TEXT NOT NULL DEFAULT '',
			prefix TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			first_seen BIGSERIAL,
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
