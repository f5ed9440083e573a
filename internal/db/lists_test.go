package db

import (
	"context"
	"errors"
	"testing"
)

func TestListsOrderedByCreationAscending(t *testing.T) {
	ls := NewListStore(newTestStore(t))
	ctx := context.Background()

	first, err := ls.Create(ctx, "work", nil)
	if err != nil {
		t.Fatalf("creating list: %v", err)
	}
	color := "#9ece6a"
	second, err := ls.Create(ctx, "home", &color)
	if err != nil {
		t.Fatalf("creating list: %v", err)
	}

	got := ls.Lists(ctx)
	if len(got) != 2 || got[0].ID != first.ID || got[1].ID != second.ID {
		t.Fatalf("lists = %+v, want [%s %s] oldest first", got, first.ID, second.ID)
	}
	if got[0].Color != nil {
		t.Errorf("color = %v, want absent", got[0].Color)
	}
	if got[1].Color == nil || *got[1].Color != color {
		t.Errorf("color = %v, want %q", got[1].Color, color)
	}
}

func TestCreateListBlankNameFails(t *testing.T) {
	ls := NewListStore(newTestStore(t))

	_, err := ls.Create(context.Background(), "  ", nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestListsSwallowsStoreFailure(t *testing.T) {
	store := newTestStore(t)
	ls := NewListStore(store)
	ctx := context.Background()

	if _, err := ls.Create(ctx, "work", nil); err != nil {
		t.Fatalf("creating list: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("closing store: %v", err)
	}

	got := ls.Lists(ctx)
	if got == nil {
		t.Fatal("lists = nil, want an empty slice on store failure")
	}
	if len(got) != 0 {
		t.Errorf("lists = %+v, want none after the store went away", got)
	}
}

func TestDeleteListMovesTasksToInbox(t *testing.T) {
	store := newTestStore(t)
	ls := NewListStore(store)
	ts := NewTaskStore(store)
	ctx := context.Background()

	list, err := ls.Create(ctx, "errands", nil)
	if err != nil {
		t.Fatalf("creating list: %v", err)
	}
	task := mustCreate(t, ts, "post office", &list.ID, All())

	if err := ls.Delete(ctx, list.ID); err != nil {
		t.Fatalf("deleting list: %v", err)
	}
	// Idempotent like task deletion.
	if err := ls.Delete(ctx, list.ID); err != nil {
		t.Fatalf("second delete should succeed: %v", err)
	}

	got, err := ts.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("task should survive its list: %v", err)
	}
	if got.ListID != nil {
		t.Errorf("list_id = %v, want cleared after list deletion", got.ListID)
	}
	if !contains(taskIDs(ts.List(ctx, Inbox())), task.ID) {
		t.Error("orphaned task should fall back to the inbox")
	}
}
