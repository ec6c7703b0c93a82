// Package store holds the todo list in memory and keeps its persisted copy in
// step: every mutation writes the whole list under one key before returning.
package store

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/model"
)

// ItemStore is the single authoritative list. It is not safe for concurrent
// use; callers serialize access (the TUI event loop, or a one-shot command).
type ItemStore struct {
	backend Backend
	key     string
	log     *zap.Logger
	items   []model.Item
}

type Option func(*ItemStore)

// WithKey overrides the storage key (default "myList").
func WithKey(key string) Option {
	return func(s *ItemStore) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *ItemStore) {
		if l != nil {
			s.log = l
		}
	}
}

func New(backend Backend, opts ...Option) *ItemStore {
	s := &ItemStore{
		backend: backend,
		key:     config.DefaultKey,
		log:     zap.NewNop(),
		items:   []model.Item{},
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With(zap.String("key", s.key))
	return s
}

func (s *ItemStore) Key() string { return s.key }

func (s *ItemStore) Len() int { return len(s.items) }

// Items returns a copy of the list in creation order.
func (s *ItemStore) Items() []model.Item {
	out := make([]model.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Create appends a pending item and persists.
func (s *ItemStore) Create(id, text string) error {
	if err := s.insert(id, text, false); err != nil {
		return err
	}
	return s.Persist()
}

// insert is the creation path shared by Create and Restore.
func (s *ItemStore) insert(id, text string, completed bool) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrInvalidInput
	}
	it := model.New(id, text)
	it.Completed = completed
	s.items = append(s.items, it)
	return nil
}

// Remove deletes the first item with id. Unknown ids are a no-op, but the
// list is persisted either way.
func (s *ItemStore) Remove(id string) error {
	if i := s.index(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	return s.Persist()
}

func (s *ItemStore) Clear() error {
	s.items = []model.Item{}
	return s.Persist()
}

// Toggle flips Completed on the item with id. Unknown ids are a no-op.
func (s *ItemStore) Toggle(id string) error {
	if i := s.index(id); i >= 0 {
		s.items[i].Completed = !s.items[i].Completed
	}
	return s.Persist()
}

// Persist overwrites the stored value with the current list.
func (s *ItemStore) Persist() error {
	v, err := encode(s.items)
	if err != nil {
		return &StorageError{Op: "write", Key: s.key, Err: err}
	}
	if err := s.backend.Set(s.key, v); err != nil {
		s.log.Error("persist failed", zap.Error(err))
		return &StorageError{Op: "write", Key: s.key, Err: err}
	}
	s.log.Debug("persisted", zap.Int("items", len(s.items)))
	return nil
}

// Restore replaces the in-memory list with the stored one. A missing or
// malformed value leaves the list untouched and is not an error.
func (s *ItemStore) Restore() error {
	v, ok, err := s.backend.Get(s.key)
	if err != nil {
		s.log.Error("restore failed", zap.Error(err))
		return &StorageError{Op: "read", Key: s.key, Err: err}
	}
	if !ok {
		s.log.Debug("nothing to restore")
		return nil
	}

	recs, err := decode(v)
	if err != nil {
		s.log.Warn("ignoring stored list", zap.Error(err))
		return nil
	}

	prev := s.items
	s.items = make([]model.Item, 0, len(recs))
	for _, r := range recs {
		if err := s.insert(r.ID, r.Text, r.Completed); err != nil {
			if errors.Is(err, ErrInvalidInput) {
				s.log.Warn("ignoring stored list", zap.String("id", r.ID), zap.Error(err))
				s.items = prev
				return nil
			}
			return err
		}
	}
	s.log.Debug("restored", zap.Int("items", len(s.items)))
	return s.Persist()
}

func (s *ItemStore) index(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}
