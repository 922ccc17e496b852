// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/mcthuva007/Acadamist/models"
)

// File suffixes used next to the data file
const (
	TmpSuffix    = ".tmp"
	BackupSuffix = ".bak"
)

const filePermissions = 0o644

// Backend persists the whole document. Load reports found=false when no
// document has been saved yet.
type Backend interface {
	Load(ctx context.Context) (doc models.Document, found bool, err error)
	Save(ctx context.Context, doc models.Document) error
}

// FileBackend keeps the document as an indented JSON file.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the data file location.
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Load(ctx context.Context) (models.Document, bool, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.NewDocument(), false, nil
	}
	if err != nil {
		return models.Document{}, false, fmt.Errorf("failed to read %s: %w", b.path, err)
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Document{}, false, fmt.Errorf("failed to parse %s: %w", b.path, err)
	}
	return doc, true, nil
}

// Save writes the document to a temp file and renames it over the data
// file. The previous version is kept as a hard link with BackupSuffix.
func (b *FileBackend) Save(ctx context.Context, doc models.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	tmpFile := b.path + TmpSuffix
	if err := os.WriteFile(tmpFile, data, filePermissions); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpFile, err)
	}

	if _, err := os.Stat(b.path); err == nil {
		backupFile := b.path + BackupSuffix
		if err := os.Remove(backupFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to remove old backup", "path", backupFile, "error", err)
		}
		if err := os.Link(b.path, backupFile); err != nil {
			slog.Warn("failed to create backup", "path", backupFile, "error", err)
		}
	}

	if err := os.Rename(tmpFile, b.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", b.path, err)
	}

	slog.Debug("data saved to file", "path", b.path, "size", humanize.Bytes(uint64(len(data))))
	return nil
}
