// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mcthuva007/Acadamist/db"
	"github.com/mcthuva007/Acadamist/models"
)

// SQLBackend keeps the document as a single row of the document table.
// The row is replaced wholesale on every save, like the file backend.
type SQLBackend struct {
	db   *sql.DB
	name string
}

// NewSQLBackend creates the schema for dialect and returns a backend bound
// to the default document row.
func NewSQLBackend(conn *sql.DB, dialect string) (*SQLBackend, error) {
	if err := db.CreateSchema(conn, dialect); err != nil {
		return nil, err
	}
	return &SQLBackend{db: conn, name: db.DocumentName}, nil
}

func (b *SQLBackend) Load(ctx context.Context) (models.Document, bool, error) {
	var payload string
	err := b.db.QueryRowContext(ctx, `
		SELECT payload FROM document WHERE name = $1
	`, b.name).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return models.NewDocument(), false, nil
	}
	if err != nil {
		return models.Document{}, false, fmt.Errorf("failed to query document: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return models.Document{}, false, fmt.Errorf("failed to parse document: %w", err)
	}
	return doc, true, nil
}

func (b *SQLBackend) Save(ctx context.Context, doc models.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	_, err = b.db.ExecContext(ctx, `
		INSERT INTO document (name, payload, saved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET payload = excluded.payload, saved_at = excluded.saved_at
	`, b.name, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	slog.Debug("data saved to database", "size", humanize.Bytes(uint64(len(payload))))
	return nil
}
