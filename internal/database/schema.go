package database

import (
	"context"
	"database/sql"
	"fmt"
)

// DDL per supported engine. The service runs on MySQL; the SQLite
// variant exists so the repository layer can be exercised against
// modernc.org/sqlite without a server. The conditional-write SQL used
// by the ledger is identical on both engines.
var schemas = map[string][]string{
	"mysql": {
		`CREATE TABLE IF NOT EXISTS events (
			id BIGINT PRIMARY KEY AUTO_INCREMENT,
			name VARCHAR(255) NOT NULL,
			date VARCHAR(32) NOT NULL,
			location VARCHAR(255) NOT NULL,
			description TEXT,
			total_tickets INT NOT NULL,
			tickets_sold INT NOT NULL DEFAULT 0,
			CHECK (tickets_sold >= 0 AND tickets_sold <= total_tickets)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY AUTO_INCREMENT,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(16) NOT NULL DEFAULT 'CUSTOMER',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			date TEXT NOT NULL,
			location TEXT NOT NULL,
			description TEXT,
			total_tickets INTEGER NOT NULL,
			tickets_sold INTEGER NOT NULL DEFAULT 0,
			CHECK (tickets_sold >= 0 AND tickets_sold <= total_tickets)
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'CUSTOMER',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}

// InitSchema creates the events and users tables when they do not
// exist yet. dialect selects the DDL variant: "mysql" or "sqlite".
func InitSchema(ctx context.Context, db *sql.DB, dialect string) error {
	stmts, ok := schemas[dialect]
	if !ok {
		return fmt.Errorf("unsupported dialect %q", dialect)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
