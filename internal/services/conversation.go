package services

import (
	"context"
	"fmt"
	"time"

	"shopmate/internal/domain"
	"shopmate/internal/ports"
)

// ConversationStore is the single source of truth for one session's
// conversation. The UI layer only ever reflects what this component
// returns.
type ConversationStore struct {
	repo    ports.ConversationRepository
	session string
	log     ports.Logger
	now     func() time.Time
}

// NewConversationStore builds the store. A nil clock uses time.Now.
func NewConversationStore(repo ports.ConversationRepository, session string, log ports.Logger, now func() time.Time) *ConversationStore {
	if now == nil {
		now = time.Now
	}
	return &ConversationStore{repo: repo, session: session, log: log, now: now}
}

// Append adds a message, re-derives metadata, re-applies the size bound
// and persists the whole context as one record.
func (s *ConversationStore) Append(ctx context.Context, msg domain.Message) (domain.ConversationContext, error) {
	conv, _, err := s.load(ctx)
	if err != nil {
		return domain.ConversationContext{}, fmt.Errorf("load conversation: %w", err)
	}

	conv.Append(msg, s.now())

	if err := s.repo.Save(ctx, s.session, conv); err != nil {
		return domain.ConversationContext{}, fmt.Errorf("save conversation: %w", err)
	}
	return conv, nil
}

// Read returns the current context, or absent when none exists or the
// stored context has outlived its TTL (in which case the record is also
// cleared).
func (s *ConversationStore) Read(ctx context.Context) (domain.ConversationContext, bool, error) {
	return s.load(ctx)
}

// Summarize renders the derived metadata for injection into a provider
// instruction preamble.
func (s *ConversationStore) Summarize(ctx context.Context) (string, error) {
	conv, ok, err := s.load(ctx)
	if err != nil || !ok {
		return "", err
	}
	return conv.Summary(), nil
}

// Clear unconditionally destroys the context.
func (s *ConversationStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, s.session)
}

// load applies TTL expiry on every read path: an expired context is
// discarded in full, not partially trimmed.
func (s *ConversationStore) load(ctx context.Context) (domain.ConversationContext, bool, error) {
	conv, ok, err := s.repo.Load(ctx, s.session)
	if err != nil {
		return domain.ConversationContext{}, false, err
	}
	if !ok {
		return domain.ConversationContext{}, false, nil
	}
	if conv.Expired(s.now()) {
		s.log.Info("conversation expired, clearing", map[string]interface{}{
			"session":      s.session,
			"last_updated": conv.LastUpdated,
		})
		if err := s.repo.Delete(ctx, s.session); err != nil {
			return domain.ConversationContext{}, false, err
		}
		return domain.ConversationContext{}, false, nil
	}
	return conv, true, nil
}
