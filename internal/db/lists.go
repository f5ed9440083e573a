package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mwelland/dayplan/internal/models"
)

// ListStore exposes list operations against the shared pool.
type ListStore struct {
	store *Store
}

// NewListStore creates a list gateway over the given store.
func NewListStore(store *Store) *ListStore {
	return &ListStore{store: store}
}

// Lists returns all lists, oldest first. Like TaskStore.List it never fails
// to the caller; store errors are logged and an empty slice returned.
func (s *ListStore) Lists(ctx context.Context) []models.List {
	lists, err := s.lists(ctx)
	if err != nil {
		logrus.WithError(err).Error("listing lists failed")
		return []models.List{}
	}
	return lists
}

func (s *ListStore) lists(ctx context.Context) ([]models.List, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id, name, color, created_at FROM lists ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []models.List{}
	for rows.Next() {
		var l models.List
		var color sql.NullString
		if err := rows.Scan(&l.ID, &l.Name, &color, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Color = nullableString(color)
		l.CreatedAt = l.CreatedAt.UTC()
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// Create inserts a new list. The name is stored trimmed and must be non-empty.
func (s *ListStore) Create(ctx context.Context, name string, color *string) (*models.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	l := &models.List{
		ID:        newID(),
		Name:      name,
		Color:     color,
		CreatedAt: s.store.now().UTC(),
	}
	_, err := s.store.db.ExecContext(ctx, s.store.rebind(`
		INSERT INTO lists (id, name, color, created_at) VALUES (?, ?, ?, ?)
	`), l.ID, l.Name, l.Color, l.CreatedAt)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "create list", Err: err}
	}
	s.store.changes.Notify()
	return l, nil
}

// Delete removes a list; its tasks fall back to the inbox via the schema's
// ON DELETE SET NULL. Deleting a nonexistent list is not an error.
func (s *ListStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, s.store.rebind("DELETE FROM lists WHERE id = ?"), id)
	if err != nil {
		return &StoreUnavailableError{Op: "delete list", Err: err}
	}
	s.store.changes.Notify()
	return nil
}
