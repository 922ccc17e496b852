// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// Supported SQL dialects
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// DocumentName is the row that holds the shared state document.
const DocumentName = "acadamist"

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	var schema string
	switch dialect {
	case DialectSQLite:
		schema = sqliteSchema
	case DialectPostgres:
		schema = postgresSchema
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const sqliteSchema = `
-- Whole-document state, one row per document name
CREATE TABLE IF NOT EXISTS document (
    name TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    saved_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const postgresSchema = `
-- Whole-document state, one row per document name
CREATE TABLE IF NOT EXISTS document (
    name TEXT PRIMARY KEY,
    payload JSONB NOT NULL,
    saved_at TIMESTAMP NOT NULL DEFAULT NOW()
);
`
