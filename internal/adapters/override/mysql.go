package override

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/email-trust/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the Store interface
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL override store
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS personal_overrides (
			user_id VARCHAR(64) NOT NULL,
			value VARCHAR(255) NOT NULL,
			kind VARCHAR(16) NOT NULL,
			list_type VARCHAR(16) NOT NULL,
			created_at TIMESTAMP,
			PRIMARY KEY (user_id, value, list_type)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// Resolve returns the override decision for this user and address
func (s *MySQLStore) Resolve(ctx context.Context, userID string, email string) (core.OverrideDecision, error) {
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
func (s *MySQLStore) Add(ctx context.Context, userID string, value string, partition core.OverridePartition) error {
	value = normalizeValue(value)
	if value == "" {
		return ErrEmptyValue
	}

	_, err := s.db.ExecContext(ctx, `
		REPLACE INTO personal_overrides (user_id, value, kind, list_type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, userID, value, string(core.KindOfValue(value)), string(partition), time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert override entry: %w", err)
	}
	return nil
}

// Remove deletes an entry from one partition
func (s *MySQLStore) Remove(ctx context.Context, userID string, value string, partition core.OverridePartition) error {
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
func (s *MySQLStore) List(ctx context.Context, userID string) ([]core.OverrideEntry, error) {
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
		var createdAt sql.NullTime
		if err := rows.Scan(&entry.Value, &entry.Kind, &entry.Partition, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan override row: %w", err)
		}
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read override rows: %w", err)
	}
	return entries, nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
