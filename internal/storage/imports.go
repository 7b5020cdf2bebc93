package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ImportRecord logs one processed document.
type ImportRecord struct {
	ImportedAt time.Time `json:"imported_at"`
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Strategy   string    `json:"strategy"`
	Error      string    `json:"error,omitempty"`
	Found      int       `json:"found"`
	Inserted   int       `json:"inserted"`
	Success    bool      `json:"success"`
}

// RecordImport appends an entry to the import log and returns its id.
func (s *SQLiteStorage) RecordImport(ctx context.Context, rec ImportRecord) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateString(rec.Source, "source"); err != nil {
		return "", err
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO imports (id, source, strategy, success, error, found, inserted)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Source, rec.Strategy, rec.Success, rec.Error, rec.Found, rec.Inserted)
	if err != nil {
		return "", fmt.Errorf("failed to record import: %w", err)
	}
	return rec.ID, nil
}

// ListImports returns the import log, newest first.
func (s *SQLiteStorage) ListImports(ctx context.Context, limit int) ([]ImportRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, strategy, success, error, found, inserted, imported_at
		FROM imports
		ORDER BY imported_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query imports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []ImportRecord
	for rows.Next() {
		var r ImportRecord
		if err := rows.Scan(&r.ID, &r.Source, &r.Strategy, &r.Success, &r.Error, &r.Found, &r.Inserted, &r.ImportedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate imports: %w", err)
	}
	return records, nil
}
