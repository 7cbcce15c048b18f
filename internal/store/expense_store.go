// Package store persists the ordered expense list as one JSON blob under a
// single key of a storage.KV.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// DefaultKey is the key the list is stored under.
const DefaultKey = "expenses"

var (
	// ErrCorrupt wraps decode failures of the stored blob. It is not
	// repaired; callers surface it.
	ErrCorrupt  = errors.New("stored expense list is corrupt")
	ErrNotFound = errors.New("expense not found")
)

// ExpenseStore reads and writes the full list. Every mutation rewrites the
// whole blob. Read-modify-write cycles are serialised within the process;
// other processes writing the same key race and the last writer wins.
type ExpenseStore struct {
	kv  storage.KV
	key string
	mu  sync.Mutex
}

// New returns a store over kv. An empty key selects DefaultKey.
func New(kv storage.KV, key string) *ExpenseStore {
	if key == "" {
		key = DefaultKey
	}
	return &ExpenseStore{kv: kv, key: key}
}

// Key returns the key the list is stored under.
func (s *ExpenseStore) Key() string {
	return s.key
}

// Load returns the full list. An absent key is an empty list.
func (s *ExpenseStore) Load(ctx context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save overwrites the stored list with list.
func (s *ExpenseStore) Save(ctx context.Context, list []core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, list)
}

// Append adds e at the end of the list and persists it. The resulting full
// list is returned. An expense that breaks the field rules is refused and
// nothing is written.
func (s *ExpenseStore) Append(ctx context.Context, e core.Expense) ([]core.Expense, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("append %q: %w", e.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	list = append(list, e)
	if err := s.save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Remove deletes the expense with the given id, keeping the relative order of
// the others, and persists the result. ErrNotFound is returned when no
// expense has that id.
func (s *ExpenseStore) Remove(ctx context.Context, id uuid.UUID) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return nil, fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	list = append(list[:idx:idx], list[idx+1:]...)
	if err := s.save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Find returns the expense with the given id.
func (s *ExpenseStore) Find(ctx context.Context, id uuid.UUID) (core.Expense, error) {
	list, err := s.Load(ctx)
	if err != nil {
		return core.Expense{}, err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return core.Expense{}, fmt.Errorf("find %s: %w", id, ErrNotFound)
	}
	return list[idx], nil
}

func (s *ExpenseStore) load(ctx context.Context) ([]core.Expense, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", s.key, err)
	}
	if !ok {
		return []core.Expense{}, nil
	}

	list, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w: %v", s.key, ErrCorrupt, err)
	}

	// Lists written before ids existed get them once, then are persisted so
	// the ids stay stable across loads.
	if backfillIDs(list) {
		slog.InfoContext(ctx, "Assigned ids to stored expenses", "key", s.key, "count", len(list))
		if err := s.save(ctx, list); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (s *ExpenseStore) save(ctx context.Context, list []core.Expense) error {
	raw, err := encode(list)
	if err != nil {
		return fmt.Errorf("encode %q: %w", s.key, err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write %q: %w", s.key, err)
	}
	return nil
}

func encode(list []core.Expense) (string, error) {
	if list == nil {
		list = []core.Expense{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decode(raw string) ([]core.Expense, error) {
	var list []core.Expense
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	if list == nil {
		// "null" decodes to a nil slice; treat it like an empty list.
		list = []core.Expense{}
	}
	return list, nil
}

func backfillIDs(list []core.Expense) bool {
	changed := false
	for i := range list {
		if list[i].ID == uuid.Nil {
			list[i].ID = uuid.New()
			changed = true
		}
	}
	return changed
}

func indexOf(list []core.Expense, id uuid.UUID) int {
	for i, e := range list {
		if e.ID == id {
			return i
		}
	}
	return -1
}
