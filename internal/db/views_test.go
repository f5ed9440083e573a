package db

import (
	"reflect"
	"testing"
	"time"
)

func TestParseView(t *testing.T) {
	tests := []struct {
		token string
		want  View
	}{
		{"", All()},
		{"today", Today()},
		{"week", Week()},
		{"inbox", Inbox()},
		{"groceries-id", ByList("groceries-id")},
	}
	for _, tt := range tests {
		if got := ParseView(tt.token); got != tt.want {
			t.Errorf("ParseView(%q) = %+v, want %+v", tt.token, got, tt.want)
		}
	}
}

func TestViewTokenRoundTrip(t *testing.T) {
	for _, v := range []View{All(), Today(), Week(), Inbox(), ByList("abc")} {
		if got := ParseView(v.Token()); got != v {
			t.Errorf("ParseView(%q) = %+v, want %+v", v.Token(), got, v)
		}
	}
}

func TestViewFilter(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.Local)

	tests := []struct {
		name      string
		view      View
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "today includes scheduled, due, and overdue open tasks",
			view:      Today(),
			wantWhere: "(scheduled_date = ? OR due_date = ? OR (due_date < ? AND NOT completed))",
			wantArgs:  []any{"2025-03-10", "2025-03-10", "2025-03-10"},
		},
		{
			name:      "week spans an inclusive seven day range",
			view:      Week(),
			wantWhere: "(scheduled_date >= ? AND scheduled_date <= ?)",
			wantArgs:  []any{"2025-03-10", "2025-03-17"},
		},
		{
			name:      "inbox matches tasks without a list",
			view:      Inbox(),
			wantWhere: "list_id IS NULL",
			wantArgs:  nil,
		},
		{
			name:      "list matches the identifier exactly",
			view:      ByList("list-1"),
			wantWhere: "list_id = ?",
			wantArgs:  []any{"list-1"},
		},
		{
			name:      "all applies no filter",
			view:      All(),
			wantWhere: "",
			wantArgs:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.view.filter(now)
			if where != tt.wantWhere {
				t.Errorf("where = %q, want %q", where, tt.wantWhere)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	s := &Store{dialect: DialectPostgres}
	got := s.rebind("UPDATE tasks SET title = ?, updated_at = ? WHERE id = ?")
	want := "UPDATE tasks SET title = $1, updated_at = $2 WHERE id = $3"
	if got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}

	s.dialect = DialectSQLite
	q := "SELECT * FROM tasks WHERE id = ?"
	if got := s.rebind(q); got != q {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
}
