package db

import "time"

// DateLayout is the canonical calendar date format for due and scheduled
// dates. Dates are stored as text and compared as ISO strings.
const DateLayout = "2006-01-02"

// ViewKind discriminates the view selector variants.
type ViewKind int

const (
	// ViewAll matches every task.
	ViewAll ViewKind = iota
	// ViewToday matches tasks scheduled or due today, plus overdue open tasks.
	ViewToday
	// ViewWeek matches tasks scheduled within the next seven days inclusive.
	ViewWeek
	// ViewInbox matches tasks with no owning list.
	ViewInbox
	// ViewList matches tasks owned by a specific list.
	ViewList
)

// View is the active filter determining which tasks are shown.
type View struct {
	Kind   ViewKind
	ListID string // set only for ViewList
}

func Today() View { return View{Kind: ViewToday} }

func Week() View { return View{Kind: ViewWeek} }

func Inbox() View { return View{Kind: ViewInbox} }

func All() View { return View{Kind: ViewAll} }

func ByList(id string) View { return View{Kind: ViewList, ListID: id} }

// ParseView maps a selector token to a View. The reserved tokens are "today",
// "week" and "inbox"; anything else non-empty is treated as a list identifier,
// and an empty token means no filter.
func ParseView(token string) View {
	switch token {
	case "":
		return All()
	case "today":
		return Today()
	case "week":
		return Week()
	case "inbox":
		return Inbox()
	default:
		return ByList(token)
	}
}

// Token returns the selector token for persistence, inverse of ParseView.
func (v View) Token() string {
	switch v.Kind {
	case ViewToday:
		return "today"
	case ViewWeek:
		return "week"
	case ViewInbox:
		return "inbox"
	case ViewList:
		return v.ListID
	default:
		return ""
	}
}

// filter returns the WHERE predicate and its ordered arguments for this view.
// The reference date is computed once from now, in the local zone.
func (v View) filter(now time.Time) (string, []any) {
	today := now.Format(DateLayout)

	switch v.Kind {
	case ViewToday:
		// Scheduled for today, due today, or overdue and still open.
		return "(scheduled_date = ? OR due_date = ? OR (due_date < ? AND NOT completed))",
			[]any{today, today, today}
	case ViewWeek:
		weekEnd := now.AddDate(0, 0, 7).Format(DateLayout)
		return "(scheduled_date >= ? AND scheduled_date <= ?)", []any{today, weekEnd}
	case ViewInbox:
		return "list_id IS NULL", nil
	case ViewList:
		return "list_id = ?", []any{v.ListID}
	default:
		return "", nil
	}
}
