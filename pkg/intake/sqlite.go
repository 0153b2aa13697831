package intake

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists intake sessions across restarts. Expiry uses the same
// TTL contract as MemoryStore: stale rows read as nil and are deleted on the
// way out.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the session database at path.
func NewSQLiteStore(path string, ttl time.Duration) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db, ttl: ttl, now: time.Now}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS intake_sessions (
		chat_id INTEGER PRIMARY KEY,
		step INTEGER NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		contact TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_intake_sessions_updated ON intake_sessions(updated_at);
	`
	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, chatID int64) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT step, name, contact, updated_at FROM intake_sessions WHERE chat_id = ?`, chatID)

	var (
		step      int
		name      string
		contact   string
		updatedAt int64
	)
	if err := row.Scan(&step, &name, &contact, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	updated := time.Unix(updatedAt, 0)
	if s.now().Sub(updated) > s.ttl {
		if err := s.Delete(ctx, chatID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &Session{
		ChatID:    chatID,
		Step:      Step(step),
		Name:      name,
		Contact:   contact,
		UpdatedAt: updated,
	}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, sess *Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO intake_sessions (chat_id, step, name, contact, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			step = excluded.step,
			name = excluded.name,
			contact = excluded.contact,
			updated_at = excluded.updated_at`,
		sess.ChatID, int(sess.Step), sess.Name, sess.Contact, s.now().Unix())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, chatID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM intake_sessions WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
