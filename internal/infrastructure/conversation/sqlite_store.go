package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"shopmate/internal/domain"
	"shopmate/internal/pkg/filesystem"
	"shopmate/internal/ports"
)

// SQLiteStore persists conversation contexts in a SQLite database, one row
// per session. Falls back to the file store when the database cannot be
// opened.
type SQLiteStore struct {
	db       *sql.DB
	path     string
	fallback *FileStore
	mu       sync.Mutex
}

// NewSQLiteStore creates (or opens) ~/.shopmate/conversations.db.
func NewSQLiteStore(path string) *SQLiteStore {
	if path == "" {
		path = filepath.Join(filesystem.AppDir(), "conversations.db")
	}
	store := &SQLiteStore{path: path, fallback: NewFileStore("")}

	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return store
	}
	store.db = db
	if err := store.init(); err != nil {
		store.db = nil
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS conversations (
		session TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		last_updated TEXT NOT NULL
	);`)
	return err
}

// Load implements ports.ConversationRepository.
func (s *SQLiteStore) Load(ctx context.Context, session string) (domain.ConversationContext, bool, error) {
	if s.db == nil {
		return s.fallback.Load(ctx, session)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM conversations WHERE session = ?`, session).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ConversationContext{}, false, nil
	}
	if err != nil {
		return domain.ConversationContext{}, false, err
	}

	var conv domain.ConversationContext
	if err := json.Unmarshal([]byte(data), &conv); err != nil {
		return domain.ConversationContext{}, false, nil
	}
	return conv, true, nil
}

// Save implements ports.ConversationRepository.
func (s *SQLiteStore) Save(ctx context.Context, session string, conv domain.ConversationContext) error {
	if s.db == nil {
		return s.fallback.Save(ctx, session, conv)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversations (session, data, last_updated) VALUES (?, ?, ?)
		 ON CONFLICT(session) DO UPDATE SET data = excluded.data, last_updated = excluded.last_updated`,
		session, string(data), conv.LastUpdated.UTC().Format("2006-01-02T15:04:05Z07:00"))
	return err
}

// Delete implements ports.ConversationRepository.
func (s *SQLiteStore) Delete(ctx context.Context, session string) error {
	if s.db == nil {
		return s.fallback.Delete(ctx, session)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE session = ?`, session)
	return err
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string { return s.path }

var _ ports.ConversationRepository = (*SQLiteStore)(nil)
