// Package history persists the ordered chat log in local storage.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"dbchat/pkg/chat"
	"dbchat/pkg/storage"
)

// Key is the storage key holding the serialized log.
const Key = "dbchat:chatHistory"

// ErrCorruptHistory is returned by LoadAll when the stored log cannot be read
// or decoded.
var ErrCorruptHistory = errors.New("history: corrupt chat history")

// Store is an append-only chat log. Only whole-log Clear removes messages.
type Store struct {
	mu      sync.Mutex
	storage storage.Storage
	logger  *slog.Logger
}

// NewStore creates a history store on top of s.
func NewStore(s storage.Storage) *Store {
	return &Store{storage: s, logger: slog.Default()}
}

// SetLogger overrides the logger used for swallowed errors.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Append adds msg to the end of the log. Failures are logged, never returned.
func (s *Store) Append(msg chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.read()
	if err != nil {
		s.logger.Warn("history_read_failed", "error", err)
		log = nil
	}
	log = append(log, msg)

	data, err := json.Marshal(log)
	if err != nil {
		s.logger.Error("history_encode_failed", "error", err)
		return
	}
	if err := s.storage.Set(Key, string(data)); err != nil {
		s.logger.Error("history_append_failed", "error", err, "messages", len(log))
		return
	}
	s.logger.Debug("history_append", "role", msg.Role(), "messages", len(log))
}

// LoadAll returns the persisted log in insertion order. A missing log yields
// an empty slice; a corrupt one yields an empty slice and ErrCorruptHistory.
func (s *Store) LoadAll() ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.read()
	if err != nil {
		s.logger.Error("history_load_failed", "error", err)
		return []chat.Message{}, fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}
	if log == nil {
		log = []chat.Message{}
	}
	return log, nil
}

// Clear removes the entire log.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Remove(Key); err != nil {
		s.logger.Error("history_clear_failed", "error", err)
		return fmt.Errorf("failed to clear history: %w", err)
	}
	s.logger.Info("history_cleared")
	return nil
}

func (s *Store) read() ([]chat.Message, error) {
	raw, ok, err := s.storage.Get(Key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var log []chat.Message
	if err := json.Unmarshal([]byte(raw), &log); err != nil {
		return nil, err
	}
	return log, nil
}
