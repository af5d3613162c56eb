package override

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/email-trust/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the Store interface
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite override store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS personal_overrides (
			user_id TEXT NOT NULL,
			value TEXT NOT NULL,
			kind TEXT NOT NULL,
			list_type TEXT NOT NULL,
			created_at TIMESTAMP,
			PRIMARY KEY (user_id, value, list_type)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Resolve returns the override decision for this user and address
func (s *SQLiteStore) Resolve(ctx context.Context, userID string, email string) (core.OverrideDecision, error) {
	values := matchValues(email)
	domain := ""
	if len(values) > 1 {
		domain = values[1]
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT list_type FROM personal_overrides
		WHERE user_id = ? AND value IN (?, ?)
	`, userID, values[0], domain)
	if err != nil {
		return core.OverrideNone, fmt.Errorf("failed to query overrides: %w", err)
	}
	defer rows.Close()

	var hasAllow, hasBlock bool
	for rows.Next() {
		var listType string
		if err := rows.Scan(&listType); err != nil {
			return core.OverrideNone, fmt.Errorf("failed to scan override row: %w", err)
		}
		switch core.OverridePartition(listType) {
		case core.PartitionAllow:
			hasAllow = true
		case core.PartitionBlock:
			hasBlock = true
		}
	}
	if err := rows.Err(); err != nil {
		return core.OverrideNone, fmt.Errorf("failed to read override rows: %w", err)
	}
	return decide(hasAllow, hasBlock), nil
}

// Add inserts a block or allow entry
func (s *SQLiteStore) Add(ctx context.Context, userID string, value string, partition core.OverridePartition) error {
	value = normalizeValue(value)
	if value == "" {
		return ErrEmptyValue
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO personal_overrides (user_id, value, kind, list_type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, userID, value, string(core.KindOfValue(value)), string(partition), time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert override entry: %w", err)
	}
	return nil
}

// Remove deletes an entry from one partition
func (s *SQLiteStore) Remove(ctx context.Context, userID string, value string, partition core.OverridePartition) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM personal_overrides
		WHERE user_id = ? AND value = ? AND list_type = ?
	`, userID, normalizeValue(value), string(partition))
	if err != nil {
		return fmt.Errorf("failed to delete override entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all entries for a user, block partition first
func (s *SQLiteStore) List(ctx context.Context, userID string) ([]core.OverrideEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT value, kind, list_type, created_at FROM personal_overrides
		WHERE user_id = ?
		ORDER BY list_type ASC, value ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides: %w", err)
	}
	defer rows.Close()

	var entries []core.OverrideEntry
	for rows.Next() {
		var entry core.OverrideEntry
		var createdAt string
		if err := rows.Scan(&entry.Value, &entry.Kind, &entry.Partition, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan override row: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339, createdAt); err == nil {
			entry.CreatedAt = parsed
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read override rows: %w", err)
	}
	return entries, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
