// Package drafts caches unsaved join-question lists so that turning a circle's
// filtering off and back on does not lose authored questions.
//
// Drafts are a convenience cache: they live in a local key-value store, are
// never synced to the backend and follow last-write-wins semantics.
package drafts

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mmynk/circles/internal/models"
)

// NewCircleKey is the draft slot used while creating a circle.
const NewCircleKey = "new_circle_questions"

// KeyValue is a local persistent key-value store, modeled after browser storage.
type KeyValue interface {
	// GetItem returns the stored value and true, or false when the key is absent.
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem overwrites the value stored under key.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// Key derives the draft slot for a circle. An empty circleID means a circle
// that has not been created yet.
func Key(circleID string) string {
	if circleID == "" {
		return NewCircleKey
	}
	return "circle_questions_" + circleID
}

// Store saves and restores question drafts on top of a KeyValue backend.
type Store struct {
	kv KeyValue
}

// NewStore creates a draft store over the given backend.
func NewStore(kv KeyValue) *Store {
	return &Store{kv: kv}
}

// Save serializes questions under key, replacing any previous draft.
func (s *Store) Save(ctx context.Context, key string, questions []models.QuestionDraft) error {
	if questions == nil {
		questions = []models.QuestionDraft{}
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return s.kv.SetItem(ctx, key, string(raw))
}

// Load returns the draft saved under key. Missing, unreadable and corrupt
// entries all yield an empty list.
func (s *Store) Load(ctx context.Context, key string) []models.QuestionDraft {
	raw, ok, err := s.kv.GetItem(ctx, key)
	if err != nil {
		slog.Warn("Draft read failed", "key", key, "error", err)
		return []models.QuestionDraft{}
	}
	if !ok {
		return []models.QuestionDraft{}
	}

	var questions []models.QuestionDraft
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		slog.Debug("Discarding corrupt draft", "key", key, "error", err)
		return []models.QuestionDraft{}
	}
	if questions == nil {
		return []models.QuestionDraft{}
	}
	return questions
}

// Clear removes the draft saved under key.
func (s *Store) Clear(ctx context.Context, key string) error {
	return s.kv.RemoveItem(ctx, key)
}
