package state

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mwelland/dayplan/internal/models"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func seedTask(id, title string) models.Task {
	return models.Task{ID: id, Title: title, CreatedAt: now, UpdatedAt: now}
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestApplyCreatePrependsTemporaryTask(t *testing.T) {
	r := New()
	r.SetTasks([]models.Task{seedTask("a", "existing")})

	task, op := r.ApplyCreate("new thing", nil, nil, now)
	if !strings.HasPrefix(task.ID, "tmp-") {
		t.Errorf("optimistic id = %q, want a client-temporary one", task.ID)
	}
	if op.ID != task.ID {
		t.Errorf("op targets %q, want %q", op.ID, task.ID)
	}
	if got := ids(r.Tasks()); len(got) != 2 || got[0] != task.ID {
		t.Errorf("tasks = %v, want optimistic task first", got)
	}
}

func TestResolveCreateSwapsInAuthoritativeRecord(t *testing.T) {
	r := New()
	tmp, op := r.ApplyCreate("new thing", nil, nil, now)
	r.Select(tmp.ID)

	server := seedTask("srv-1", "new thing")
	if got := r.ResolveCreate(op, &server, nil); got != Applied {
		t.Fatalf("outcome = %v, want Applied", got)
	}
	if got := ids(r.Tasks()); len(got) != 1 || got[0] != "srv-1" {
		t.Errorf("tasks = %v, want the server-assigned id", got)
	}
	if sel := r.Selected(); sel == nil || sel.ID != "srv-1" {
		t.Errorf("selected = %+v, want the reconciled record", sel)
	}
}

func TestResolveCreateFailureRollsBack(t *testing.T) {
	r := New()
	r.SetTasks([]models.Task{seedTask("a", "existing")})
	_, op := r.ApplyCreate("doomed", nil, nil, now)

	if got := r.ResolveCreate(op, nil, errors.New("store unavailable")); got != RolledBack {
		t.Fatalf("outcome = %v, want RolledBack", got)
	}
	if got := ids(r.Tasks()); len(got) != 1 || got[0] != "a" {
		t.Errorf("tasks = %v, want the optimistic record removed", got)
	}
	if r.Failure() == "" {
		t.Error("failure should surface to the user")
	}
}

func TestResolveCreateFailureClearsSelectedTemporaryTask(t *testing.T) {
	r := New()
	tmp, op := r.ApplyCreate("doomed", nil, nil, now)
	r.Select(tmp.ID)

	if got := r.ResolveCreate(op, nil, errors.New("store unavailable")); got != RolledBack {
		t.Fatalf("outcome = %v, want RolledBack", got)
	}
	if sel := r.Selected(); sel != nil {
		t.Errorf("selected = %+v, want selection cleared with the rolled-back record", sel)
	}
}

func TestApplyToggleMirrorsSelectedTask(t *testing.T) {
	r := New()
	r.SetTasks([]models.Task{seedTask("a", "toggle me")})
	r.Select("a")

	r.ApplyToggle("a", true, now)
	if got := r.Tasks()[0]; !got.Completed || got.CompletedAt == nil {
		t.Errorf("collection not toggled optimistically: %+v", got)
	}
	if sel := r.Selected(); !sel.Completed || sel.CompletedAt == nil {
		t.Errorf("selected mirror not toggled: %+v", sel)
	}

	r.ApplyToggle("a", false, now)
	if sel := r.Selected(); sel.Completed || sel.CompletedAt != nil {
		t.Errorf("reopening should clear completed_at: %+v", sel)
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	r := New()
	r.SetTasks([]models.Task{seedTask("a", "raced")})

	first := r.ApplyToggle("a", true, now)
	second := r.ApplyToggle("a", false, now)

	// The newer optimistic state must not be overwritten by the older
	// response arriving late.
	done := seedTask("a", "raced")
	done.Completed = true
	if got := r.ResolveMutation(first, &done, nil); got != Stale {
		t.Fatalf("outcome = %v, want Stale", got)
	}
	if r.Tasks()[0].Completed {
		t.Error("stale response overwrote newer optimistic state")
	}

	open := seedTask("a", "raced")
	if got := r.ResolveMutation(second, &open, nil); got != Applied {
		t.Fatalf("outcome = %v, want Applied", got)
	}
}

func TestResolveMutationFailureRequestsRefetch(t *testing.T) {
	r := New()
	r.SetTasks([]models.Task{seedTask("a", "flaky")})

	op := r.ApplyUpdate("a", now, func(t *models.Task) { t.Title = "renamed" })
	if got := r.ResolveMutation(op, nil, errors.New("boom")); got != Refetch {
		t.Fatalf("outcome = %v, want Refetch", got)
	}
	if r.Failure() == "" {
		t.Error("failure should surface to the user")
	}
}

func TestApplyDeleteAndRollbackPath(t *testing.T) {
	r := New()
	r.SetTasks([]models.Task{seedTask("a", "going"), seedTask("b", "staying")})
	r.Select("a")

	op := r.ApplyDelete("a")
	if got := ids(r.Tasks()); len(got) != 1 || got[0] != "b" {
		t.Errorf("tasks = %v, want optimistic removal", got)
	}
	if r.Selected() != nil {
		t.Error("deleting the selected task should clear the selection")
	}

	if got := r.ResolveDelete(op, errors.New("offline")); got != Refetch {
		t.Fatalf("outcome = %v, want Refetch to restore ground truth", got)
	}
}

func TestSetTasksRefreshesSelection(t *testing.T) {
	r := New()
	r.SetTasks([]models.Task{seedTask("a", "old title")})
	r.Select("a")

	renamed := seedTask("a", "new title")
	r.SetTasks([]models.Task{renamed})
	if sel := r.Selected(); sel == nil || sel.Title != "new title" {
		t.Errorf("selected = %+v, want refreshed from the new load", sel)
	}

	r.SetTasks([]models.Task{seedTask("b", "other")})
	if r.Selected() != nil {
		t.Error("selection should clear when the task leaves the collection")
	}
}

func TestUpdateMirrorsOnlyMatchingSelection(t *testing.T) {
	r := New()
	r.SetTasks([]models.Task{seedTask("a", "one"), seedTask("b", "two")})
	r.Select("b")

	r.ApplyUpdate("a", now, func(t *models.Task) { t.Title = "changed" })
	if sel := r.Selected(); sel.Title != "two" {
		t.Errorf("selected = %+v, must not mirror an unrelated update", sel)
	}
}
