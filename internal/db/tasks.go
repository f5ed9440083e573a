package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mwelland/dayplan/internal/models"
)

const taskColumns = "id, title, notes, due_date, scheduled_date, priority, completed, completed_at, list_id, created_at, updated_at"

// TaskStore exposes task operations against the shared pool.
type TaskStore struct {
	store *Store
}

// NewTaskStore creates a task gateway over the given store.
func NewTaskStore(store *Store) *TaskStore {
	return &TaskStore{store: store}
}

// List returns the tasks matching the view, most recently created first.
// It never fails to the caller: on a store error it logs the failure and
// returns an empty slice, so the UI degrades to "no tasks" instead of dying.
func (s *TaskStore) List(ctx context.Context, view View) []models.Task {
	tasks, err := s.list(ctx, view)
	if err != nil {
		logrus.WithError(err).WithField("view", view.Token()).Error("listing tasks failed")
		return []models.Task{}
	}
	return tasks
}

func (s *TaskStore) list(ctx context.Context, view View) ([]models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	where, args := view.filter(s.store.now())
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.store.db.QueryContext(ctx, s.store.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Get retrieves a task by ID.
func (s *TaskStore) Get(ctx context.Context, id string) (*models.Task, error) {
	row := s.store.db.QueryRowContext(ctx,
		s.store.rebind("SELECT "+taskColumns+" FROM tasks WHERE id = ?"), id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "task", ID: id}
	}
	if err != nil {
		return nil, &StoreUnavailableError{Op: "get task", Err: err}
	}
	return t, nil
}

// Create inserts a new task. The title is stored trimmed and must be
// non-empty; priority defaults to 0 and completed to false. When the active
// view is Today the task is scheduled for the current date, so it shows up in
// the view it was created from.
func (s *TaskStore) Create(ctx context.Context, title string, listID *string, activeView View) (*models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	now := s.store.now()
	var scheduled *string
	if activeView.Kind == ViewToday {
		d := now.Format(DateLayout)
		scheduled = &d
	}

	id := newID()
	_, err := s.store.db.ExecContext(ctx, s.store.rebind(`
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), id, title, nil, nil, scheduled, 0, false, nil, listID, now, now)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "create task", Err: err}
	}

	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store.changes.Notify()
	return task, nil
}

// Update applies a partial update. Only fields present in the patch are
// written; a present field with no value clears the column. The update
// timestamp is always refreshed, whatever the patch contains.
func (s *TaskStore) Update(ctx context.Context, id string, patch TaskPatch) (*models.Task, error) {
	var sets []string
	var args []any

	if patch.Title.Present() {
		title := ""
		if p := patch.Title.Ptr(); p != nil {
			title = strings.TrimSpace(*p)
		}
		if title == "" {
			return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
		}
		sets, args = append(sets, "title = ?"), append(args, title)
	}
	if patch.Notes.Present() {
		sets, args = append(sets, "notes = ?"), append(args, patch.Notes.Ptr())
	}
	if patch.DueDate.Present() {
		sets, args = append(sets, "due_date = ?"), append(args, patch.DueDate.Ptr())
	}
	if patch.ScheduledDate.Present() {
		sets, args = append(sets, "scheduled_date = ?"), append(args, patch.ScheduledDate.Ptr())
	}
	if patch.Priority.Present() {
		priority := 0
		if p := patch.Priority.Ptr(); p != nil {
			priority = *p
		}
		sets, args = append(sets, "priority = ?"), append(args, priority)
	}
	if patch.ListID.Present() {
		sets, args = append(sets, "list_id = ?"), append(args, patch.ListID.Ptr())
	}
	if patch.Completed.Present() {
		completed := false
		if p := patch.Completed.Ptr(); p != nil {
			completed = *p
		}
		sets, args = append(sets, "completed = ?"), append(args, completed)
	}
	if patch.CompletedAt.Present() {
		sets, args = append(sets, "completed_at = ?"), append(args, patch.CompletedAt.Ptr())
	}

	sets, args = append(sets, "updated_at = ?"), append(args, s.store.now())
	args = append(args, id)

	query := "UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := s.store.db.ExecContext(ctx, s.store.rebind(query), args...)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "update task", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, &NotFoundError{Kind: "task", ID: id}
	}

	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store.changes.Notify()
	return task, nil
}

// ToggleComplete sets the completed flag. Completing stamps completed_at to
// now; reopening clears it. The pair moves together on every write path.
func (s *TaskStore) ToggleComplete(ctx context.Context, id string, completed bool) (*models.Task, error) {
	now := s.store.now()
	var completedAt *time.Time
	if completed {
		completedAt = &now
	}

	res, err := s.store.db.ExecContext(ctx, s.store.rebind(`
		UPDATE tasks SET completed = ?, completed_at = ?, updated_at = ? WHERE id = ?
	`), completed, completedAt, now, id)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "toggle task", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, &NotFoundError{Kind: "task", ID: id}
	}

	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store.changes.Notify()
	return task, nil
}

// Delete removes a task by ID. Deleting a nonexistent task is not an error.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, s.store.rebind("DELETE FROM tasks WHERE id = ?"), id)
	if err != nil {
		return &StoreUnavailableError{Op: "delete task", Err: err}
	}
	s.store.changes.Notify()
	return nil
}

// scanTask maps a raw row onto a Task, turning NULL columns into absent
// fields and normalizing timestamps to UTC.
func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	var t models.Task
	var notes, due, scheduled, listID sql.NullString
	var priority sql.NullInt64
	var completed sql.NullBool
	var completedAt sql.NullTime

	err := row.Scan(&t.ID, &t.Title, &notes, &due, &scheduled, &priority,
		&completed, &completedAt, &listID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.Notes = nullableString(notes)
	t.DueDate = nullableString(due)
	t.ScheduledDate = nullableString(scheduled)
	t.ListID = nullableString(listID)
	t.Priority = int(priority.Int64)
	t.Completed = completed.Bool
	if completedAt.Valid {
		at := completedAt.Time.UTC()
		t.CompletedAt = &at
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
