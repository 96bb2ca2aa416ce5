// Package preferences owns the topic selection and the seen/disliked
// history. Every mutation is written to the snapshot store before it
// returns.
package preferences

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/paperswipe/internal/client/storage"
	"github.com/dmitrijs2005/paperswipe/internal/logging"
)

// Snapshot is the persisted form of the preferences.
type Snapshot struct {
	Topics   []string `json:"topics"`
	Seen     []string `json:"seen"`
	Disliked []string `json:"disliked"`
}

// Store holds the preferences of one user session.
//
// Disliked does not imply seen: callers that dismiss an item mark it with
// both MarkSeen and MarkDisliked.
type Store struct {
	mu       sync.Mutex
	store    storage.Store
	logger   logging.Logger
	topics   []string
	seen     *idSet
	disliked *idSet
}

// New loads the preferences snapshot from store. A missing snapshot yields
// empty preferences.
func New(ctx context.Context, store storage.Store, logger logging.Logger) (*Store, error) {
	s := &Store{
		store:    store,
		logger:   logger.With("module", "preferences"),
		topics:   []string{},
		seen:     newIDSet(nil),
		disliked: newIDSet(nil),
	}

	data, err := store.Get(ctx, storage.KeyPreferences)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	if data == nil {
		return s, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}

	s.topics = newIDSet(snap.Topics).list()
	s.seen = newIDSet(snap.Seen)
	s.disliked = newIDSet(snap.Disliked)

	s.logger.Debug(ctx, "preferences loaded", "topics", len(s.topics), "seen", s.seen.len())

	return s, nil
}

// Topics returns the selected topics in selection order.
func (s *Store) Topics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.topics...)
}

// SetTopics replaces the topic selection. Blank entries are dropped and
// the rest trimmed. History is untouched.
func (s *Store) SetTopics(ctx context.Context, topics []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := make([]string, 0, len(topics))
	for _, t := range topics {
		trimmed = append(trimmed, strings.TrimSpace(t))
	}

	prev := s.topics
	s.topics = newIDSet(trimmed).list()

	if err := s.persistLocked(ctx); err != nil {
		s.topics = prev
		return err
	}
	return nil
}

// MarkSeen records id as shown to completion.
func (s *Store) MarkSeen(ctx context.Context, id string) error {
	return s.insert(ctx, func() *idSet { return s.seen }, id)
}

// MarkDisliked records id as rejected. It does not mark id as seen.
func (s *Store) MarkDisliked(ctx context.Context, id string) error {
	return s.insert(ctx, func() *idSet { return s.disliked }, id)
}

func (s *Store) insert(ctx context.Context, set func() *idSet, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := set()
	if !target.add(id) {
		return nil
	}

	if err := s.persistLocked(ctx); err != nil {
		target.remove(id)
		return err
	}
	return nil
}

// ResetHistory clears the seen and disliked sets in a single snapshot write.
// Topics are kept.
func (s *Store) ResetHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevSeen, prevDisliked := s.seen, s.disliked
	s.seen, s.disliked = newIDSet(nil), newIDSet(nil)

	if err := s.persistLocked(ctx); err != nil {
		s.seen, s.disliked = prevSeen, prevDisliked
		return err
	}

	s.logger.Info(ctx, "history reset", "seen", prevSeen.len(), "disliked", prevDisliked.len())
	return nil
}

// SeenIDs returns a copy of the seen set.
func (s *Store) SeenIDs() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen.copyMap()
}

func (s *Store) SeenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen.len()
}

func (s *Store) IsSeen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen.has(id)
}

func (s *Store) IsDisliked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disliked.has(id)
}

// Snapshot returns the current state in its persisted form.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Topics:   append([]string{}, s.topics...),
		Seen:     s.seen.list(),
		Disliked: s.disliked.list(),
	}
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.snapshotLocked())
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := s.store.Set(ctx, storage.KeyPreferences, data); err != nil {
		s.logger.Error(ctx, "failed to persist preferences", "error", err)
		return fmt.Errorf("failed to persist preferences: %w", err)
	}
	return nil
}
