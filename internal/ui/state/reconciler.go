// Package state holds the in-memory task state for the active view and
// reconciles optimistic mutations with store responses. The reconciler is
// confined to the UI update loop and needs no locking.
package state

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/mwelland/dayplan/internal/models"
)

// Outcome describes how a store response was reconciled.
type Outcome int

const (
	// Applied means the authoritative record was merged into local state.
	Applied Outcome = iota
	// Stale means a newer operation superseded this response and it was
	// discarded.
	Stale
	// RolledBack means the optimistic record was removed (failed create).
	RolledBack
	// Refetch means local state can no longer be trusted and the caller
	// should reload the view from the store.
	Refetch
)

// Op identifies one in-flight mutation. The sequence number is monotonically
// increasing per entity; responses carrying an older sequence than the
// entity's latest are discarded.
type Op struct {
	ID  string
	Seq uint64
}

// Reconciler owns the task collection for the active view, the selected-task
// mirror and the available lists.
type Reconciler struct {
	tasks    []models.Task
	selected *models.Task
	lists    []models.List
	seq      map[string]uint64
	failure  string
}

// New creates an empty reconciler.
func New() *Reconciler {
	return &Reconciler{seq: make(map[string]uint64)}
}

// Tasks returns the current task collection.
func (r *Reconciler) Tasks() []models.Task { return r.tasks }

// Lists returns the available lists.
func (r *Reconciler) Lists() []models.List { return r.lists }

// Selected returns the selected task, or nil.
func (r *Reconciler) Selected() *models.Task { return r.selected }

// Failure returns the last surfaced mutation failure, or "".
func (r *Reconciler) Failure() string { return r.failure }

// Fail surfaces a failure that did not go through an op token.
func (r *Reconciler) Fail(msg string) { r.failure = msg }

// ClearFailure resets the surfaced failure.
func (r *Reconciler) ClearFailure() { r.failure = "" }

// SetTasks replaces the collection with an authoritative load. The selection
// is kept if the task is still present, refreshed from the new data.
func (r *Reconciler) SetTasks(tasks []models.Task) {
	r.tasks = tasks
	if r.selected == nil {
		return
	}
	if t := r.find(r.selected.ID); t != nil {
		copied := *t
		r.selected = &copied
	} else {
		r.selected = nil
	}
}

// SetLists replaces the list collection.
func (r *Reconciler) SetLists(lists []models.List) { r.lists = lists }

// Select marks the task with the given ID as selected.
func (r *Reconciler) Select(id string) {
	if t := r.find(id); t != nil {
		copied := *t
		r.selected = &copied
	}
}

// ClearSelection drops the selected task, e.g. when the view switches.
func (r *Reconciler) ClearSelection() { r.selected = nil }

// ApplyCreate prepends an optimistic task under a client-temporary identifier
// and returns it together with the op token for the store call.
func (r *Reconciler) ApplyCreate(title string, listID *string, scheduledDate *string, now time.Time) (models.Task, Op) {
	t := models.Task{
		ID:            tempID(),
		Title:         title,
		ListID:        listID,
		ScheduledDate: scheduledDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.tasks = append([]models.Task{t}, r.tasks...)
	return t, r.nextOp(t.ID)
}

// ResolveCreate reconciles a create response. On success the temporary record
// is replaced by the authoritative one; on failure it is removed.
func (r *Reconciler) ResolveCreate(op Op, task *models.Task, err error) Outcome {
	if r.seq[op.ID] != op.Seq {
		return Stale
	}
	delete(r.seq, op.ID)

	if err != nil {
		r.remove(op.ID)
		if r.selected != nil && r.selected.ID == op.ID {
			r.selected = nil
		}
		r.failure = err.Error()
		return RolledBack
	}
	for i := range r.tasks {
		if r.tasks[i].ID == op.ID {
			r.tasks[i] = *task
			break
		}
	}
	if r.selected != nil && r.selected.ID == op.ID {
		copied := *task
		r.selected = &copied
	}
	return Applied
}

// ApplyUpdate mutates the task optimistically via apply and returns the op
// token. The selected-task mirror is kept in sync.
func (r *Reconciler) ApplyUpdate(id string, now time.Time, apply func(*models.Task)) Op {
	if t := r.find(id); t != nil {
		apply(t)
		t.UpdatedAt = now
	}
	if r.selected != nil && r.selected.ID == id {
		apply(r.selected)
		r.selected.UpdatedAt = now
	}
	return r.nextOp(id)
}

// ApplyToggle flips the completed flag optimistically, moving completed_at
// with it.
func (r *Reconciler) ApplyToggle(id string, completed bool, now time.Time) Op {
	return r.ApplyUpdate(id, now, func(t *models.Task) {
		t.Completed = completed
		if completed {
			at := now
			t.CompletedAt = &at
		} else {
			t.CompletedAt = nil
		}
	})
}

// ApplyDelete removes the task optimistically.
func (r *Reconciler) ApplyDelete(id string) Op {
	r.remove(id)
	if r.selected != nil && r.selected.ID == id {
		r.selected = nil
	}
	return r.nextOp(id)
}

// ResolveMutation reconciles an update/toggle response. Stale responses are
// discarded; failures surface the error and demand a re-fetch to restore
// ground truth.
func (r *Reconciler) ResolveMutation(op Op, task *models.Task, err error) Outcome {
	if r.seq[op.ID] != op.Seq {
		return Stale
	}
	if err != nil {
		r.failure = err.Error()
		return Refetch
	}
	if t := r.find(op.ID); t != nil {
		*t = *task
	}
	if r.selected != nil && r.selected.ID == op.ID {
		copied := *task
		r.selected = &copied
	}
	return Applied
}

// ResolveDelete reconciles a delete response.
func (r *Reconciler) ResolveDelete(op Op, err error) Outcome {
	if r.seq[op.ID] != op.Seq {
		return Stale
	}
	delete(r.seq, op.ID)
	if err != nil {
		r.failure = err.Error()
		return Refetch
	}
	return Applied
}

func (r *Reconciler) nextOp(id string) Op {
	r.seq[id]++
	return Op{ID: id, Seq: r.seq[id]}
}

func (r *Reconciler) find(id string) *models.Task {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return &r.tasks[i]
		}
	}
	return nil
}

func (r *Reconciler) remove(id string) {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return
		}
	}
}

// tempID generates a client-temporary identifier, replaced by the
// server-assigned one when the create resolves.
func tempID() string {
	return "tmp-" + gonanoid.Must(8)
}
