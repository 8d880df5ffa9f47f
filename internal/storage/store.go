package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/trackmate/internal/models"
)

// Keys of the two persisted collections.
const (
	TemplatesKey = "workout-templates"
	HistoryKey   = "workout-history"
)

// Store reads and writes the template and history collections as JSON
// arrays in a KV backend. There is no schema version; decoding ignores
// unknown fields and leaves missing optional fields unset.
type Store struct {
	kv KV
}

// NewStore wraps kv.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// LoadTemplates returns the saved templates, oldest first.
func (s *Store) LoadTemplates(ctx context.Context) ([]models.Workout, error) {
	return loadList[models.Workout](ctx, s.kv, TemplatesKey)
}

// SaveTemplates replaces the saved template list.
func (s *Store) SaveTemplates(ctx context.Context, templates []models.Workout) error {
	return saveList(ctx, s.kv, TemplatesKey, templates)
}

// LoadHistory returns the finished sessions, newest first.
func (s *Store) LoadHistory(ctx context.Context) ([]models.WorkoutSession, error) {
	return loadList[models.WorkoutSession](ctx, s.kv, HistoryKey)
}

// SaveHistory replaces the history list.
func (s *Store) SaveHistory(ctx context.Context, history []models.WorkoutSession) error {
	return saveList(ctx, s.kv, HistoryKey, history)
}

func loadList[T any](ctx context.Context, kv KV, key string) ([]T, error) {
	data, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func saveList[T any](ctx context.Context, kv KV, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return kv.Set(ctx, key, data)
}
