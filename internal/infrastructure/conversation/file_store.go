// Package conversation provides the persistence adapters for conversation
// contexts. Each session is one record, read and written as a unit.
package conversation

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"shopmate/internal/domain"
	"shopmate/internal/pkg/filesystem"
	"shopmate/internal/ports"
)

// FileStore keeps one JSON file per session under
// ~/.shopmate/conversations.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates a store rooted at dir; an empty dir selects the
// default location.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = filepath.Join(filesystem.AppDir(), "conversations")
	}
	return &FileStore{dir: dir}
}

// Load implements ports.ConversationRepository.
func (s *FileStore) Load(_ context.Context, session string) (domain.ConversationContext, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.pathFor(session))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ConversationContext{}, false, nil
		}
		return domain.ConversationContext{}, false, err
	}

	var conv domain.ConversationContext
	if err := json.Unmarshal(data, &conv); err != nil {
		// A corrupt record is unrecoverable; treat as absent.
		return domain.ConversationContext{}, false, nil
	}
	return conv, true, nil
}

// Save implements ports.ConversationRepository.
func (s *FileStore) Save(_ context.Context, session string, conv domain.ConversationContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	return os.WriteFile(s.pathFor(session), data, 0o644)
}

// Delete implements ports.ConversationRepository.
func (s *FileStore) Delete(_ context.Context, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.pathFor(session)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FileStore) pathFor(session string) string {
	return filepath.Join(s.dir, session+".json")
}

var _ ports.ConversationRepository = (*FileStore)(nil)
