package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/adchat/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// AppendMessage adds a message to the end of the history log. If the
// message has no ID, a new UUID is generated.
func (s *SQLiteStore) AppendMessage(
	ctx context.Context,
	msg model.ChatMessage,
) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, text, sender, created_at)
		VALUES (?, ?, ?, ?)`,
		msg.ID, msg.Text, string(msg.Sender), msg.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}

	return nil
}

// GetMessages returns the full history log in insertion order.
func (s *SQLiteStore) GetMessages(
	ctx context.Context,
) ([]model.ChatMessage, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, text, sender, created_at FROM messages ORDER BY seq",
	)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []model.ChatMessage
	for rows.Next() {
		var (
			msg       model.ChatMessage
			sender    string
			createdAt time.Time
		)
		if err := rows.Scan(&msg.ID, &msg.Text, &sender, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		msg.Sender = model.Sender(sender)
		msg.Timestamp = createdAt
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// PruneMessages deletes the oldest messages so that at most limit remain.
func (s *SQLiteStore) PruneMessages(ctx context.Context, limit int) error {
	if limit <= 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM messages WHERE seq NOT IN (
			SELECT seq FROM messages ORDER BY seq DESC LIMIT ?
		)`, limit,
	)
	if err != nil {
		return fmt.Errorf("pruning messages: %w", err)
	}

	return nil
}

// ClearMessages deletes the entire history log.
func (s *SQLiteStore) ClearMessages(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM messages"); err != nil {
		return fmt.Errorf("clearing messages: %w", err)
	}
	return nil
}

// RecordUpload logs a successfully uploaded file name.
func (s *SQLiteStore) RecordUpload(ctx context.Context, filename string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO uploads (id, filename, created_at)
		VALUES (?, ?, ?)`,
		uuid.New().String(), filename, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording upload: %w", err)
	}
	return nil
}
