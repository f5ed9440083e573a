package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwelland/dayplan/internal/db"
	"github.com/mwelland/dayplan/internal/models"
	"github.com/mwelland/dayplan/internal/ui/keys"
	"github.com/mwelland/dayplan/internal/ui/state"
	"github.com/mwelland/dayplan/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// FocusArea represents which panel has focus
type FocusArea int

const (
	FocusSidebar FocusArea = iota
	FocusTasks
)

// StoreChangedMsg signals that the store mutated and rendered views are stale
type StoreChangedMsg struct{}

// PlannerView is the main screen: a sidebar of view selectors and lists next
// to the task pane, with an edit form, detail view and delete confirmations
// layered on top.
type PlannerView struct {
	store     *db.Store
	taskStore *db.TaskStore
	listStore *db.ListStore
	rec       *state.Reconciler
	view      db.View
	styles    *styles.Styles
	keys      keys.KeyMap

	width  int
	height int

	focus         FocusArea
	sidebarCursor int
	cursor        int
	scrollY       int

	// Quick task creation
	creating   bool
	quickInput textinput.Model

	// Task editing
	editing       bool
	editID        string
	editTitle     textinput.Model
	editNotes     textarea.Model
	editDue       textinput.Model
	editScheduled textinput.Model
	editPriority  textinput.Model
	editListIdx   int // 0 = inbox, 1..n = rec.Lists()[i-1]
	editFocusIdx  int // 0=title, 1=notes, 2=due, 3=scheduled, 4=priority, 5=list, 6=save
	editErr       string

	// Task detail view
	viewingTask bool

	// Delete confirmations
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	// List creation / deletion
	creatingList       bool
	newListName        textinput.Model
	confirmingListDrop bool
	dropListID         string
	dropListName       string
}

// NewPlannerView creates the main planner screen with the given initial view.
func NewPlannerView(store *db.Store, taskStore *db.TaskStore, listStore *db.ListStore, view db.View) *PlannerView {
	s := styles.NewStyles()

	quick := textinput.New()
	quick.Placeholder = "Task title..."
	quick.CharLimit = 200

	editTitle := textinput.New()
	editTitle.Placeholder = "Title"
	editTitle.CharLimit = 200

	editNotes := textarea.New()
	editNotes.Placeholder = "Notes"
	editNotes.CharLimit = 5000
	editNotes.SetWidth(50)
	editNotes.SetHeight(4)
	editNotes.ShowLineNumbers = false

	editDue := textinput.New()
	editDue.Placeholder = "YYYY-MM-DD"
	editDue.CharLimit = 10

	editScheduled := textinput.New()
	editScheduled.Placeholder = "YYYY-MM-DD"
	editScheduled.CharLimit = 10

	editPriority := textinput.New()
	editPriority.Placeholder = "0-3"
	editPriority.CharLimit = 1

	newListName := textinput.New()
	newListName.Placeholder = "List name"
	newListName.CharLimit = 100

	return &PlannerView{
		store:         store,
		taskStore:     taskStore,
		listStore:     listStore,
		rec:           state.New(),
		view:          view,
		styles:        s,
		keys:          keys.DefaultKeyMap(),
		focus:         FocusTasks,
		quickInput:    quick,
		editTitle:     editTitle,
		editNotes:     editNotes,
		editDue:       editDue,
		editScheduled: editScheduled,
		editPriority:  editPriority,
		newListName:   newListName,
	}
}

// Init initializes the view
func (v *PlannerView) Init() tea.Cmd {
	return tea.Batch(v.loadTasksCmd(), v.loadListsCmd())
}

type tasksLoadedMsg struct {
	view  db.View
	tasks []models.Task
}

type listsLoadedMsg struct {
	lists []models.List
}

type taskCreatedMsg struct {
	op   state.Op
	task *models.Task
	err  error
}

type taskSavedMsg struct {
	op   state.Op
	task *models.Task
	err  error
}

type taskDeletedMsg struct {
	op  state.Op
	err error
}

type listCreatedMsg struct {
	err error
}

type listDeletedMsg struct {
	id  string
	err error
}

func (v *PlannerView) loadTasksCmd() tea.Cmd {
	view := v.view
	store := v.taskStore
	return func() tea.Msg {
		return tasksLoadedMsg{view: view, tasks: store.List(context.Background(), view)}
	}
}

func (v *PlannerView) loadListsCmd() tea.Cmd {
	store := v.listStore
	return func() tea.Msg {
		return listsLoadedMsg{lists: store.Lists(context.Background())}
	}
}

func (v *PlannerView) createTaskCmd(title string, listID *string, op state.Op) tea.Cmd {
	view := v.view
	store := v.taskStore
	return func() tea.Msg {
		task, err := store.Create(context.Background(), title, listID, view)
		return taskCreatedMsg{op: op, task: task, err: err}
	}
}

func (v *PlannerView) updateTaskCmd(id string, patch db.TaskPatch, op state.Op) tea.Cmd {
	store := v.taskStore
	return func() tea.Msg {
		task, err := store.Update(context.Background(), id, patch)
		return taskSavedMsg{op: op, task: task, err: err}
	}
}

func (v *PlannerView) toggleTaskCmd(id string, completed bool, op state.Op) tea.Cmd {
	store := v.taskStore
	return func() tea.Msg {
		task, err := store.ToggleComplete(context.Background(), id, completed)
		return taskSavedMsg{op: op, task: task, err: err}
	}
}

func (v *PlannerView) deleteTaskCmd(id string, op state.Op) tea.Cmd {
	store := v.taskStore
	return func() tea.Msg {
		return taskDeletedMsg{op: op, err: store.Delete(context.Background(), id)}
	}
}

func (v *PlannerView) createListCmd(name string) tea.Cmd {
	store := v.listStore
	return func() tea.Msg {
		_, err := store.Create(context.Background(), name, nil)
		return listCreatedMsg{err: err}
	}
}

func (v *PlannerView) deleteListCmd(id string) tea.Cmd {
	store := v.listStore
	return func() tea.Msg {
		return listDeletedMsg{id: id, err: store.Delete(context.Background(), id)}
	}
}

func (v *PlannerView) saveViewCmd() tea.Cmd {
	store := v.store
	token := v.view.Token()
	return func() tea.Msg {
		store.SetSetting(context.Background(), "last_view", token)
		return nil
	}
}

// Update handles messages
func (v *PlannerView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		inputWidth := clamp(v.width-styles.SidebarWidth-12, 20, 50)
		v.editNotes.SetWidth(inputWidth)
		return v, nil

	case StoreChangedMsg:
		return v, tea.Batch(v.loadTasksCmd(), v.loadListsCmd())

	case tasksLoadedMsg:
		// A view switch may have raced the load; only accept the active view.
		if msg.view != v.view {
			return v, nil
		}
		v.rec.SetTasks(msg.tasks)
		v.clampCursor()
		if v.viewingTask && v.rec.Selected() == nil {
			v.viewingTask = false
		}
		return v, nil

	case listsLoadedMsg:
		v.rec.SetLists(msg.lists)
		v.sidebarCursor = clamp(v.sidebarCursor, 0, len(v.sidebarItems())-1)
		v.editListIdx = clamp(v.editListIdx, 0, len(msg.lists))
		return v, nil

	case taskCreatedMsg:
		v.rec.ResolveCreate(msg.op, msg.task, msg.err)
		v.clampCursor()
		return v, nil

	case taskSavedMsg:
		if v.rec.ResolveMutation(msg.op, msg.task, msg.err) == state.Refetch {
			return v, v.loadTasksCmd()
		}
		return v, nil

	case taskDeletedMsg:
		if v.rec.ResolveDelete(msg.op, msg.err) == state.Refetch {
			return v, v.loadTasksCmd()
		}
		return v, nil

	case listCreatedMsg:
		if msg.err != nil {
			v.rec.Fail(msg.err.Error())
			return v, nil
		}
		return v, v.loadListsCmd()

	case listDeletedMsg:
		if msg.err != nil {
			v.rec.Fail(msg.err.Error())
		}
		var cmds []tea.Cmd
		if v.view.Kind == db.ViewList && v.view.ListID == msg.id {
			cmds = append(cmds, v.selectView(db.Inbox()))
		} else {
			cmds = append(cmds, v.loadTasksCmd())
		}
		cmds = append(cmds, v.loadListsCmd())
		return v, tea.Batch(cmds...)

	case tea.KeyMsg:
		if v.rec.Failure() != "" {
			v.rec.ClearFailure()
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.confirmingListDrop {
			return v.updateConfirmListDrop(msg)
		}
		if v.creating {
			return v.updateCreating(msg)
		}
		if v.creatingList {
			return v.updateCreatingList(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		if v.viewingTask {
			return v.updateViewingTask(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *PlannerView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Tab):
		if v.focus == FocusSidebar {
			v.focus = FocusTasks
		} else {
			v.focus = FocusSidebar
		}
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.focus == FocusSidebar {
			if v.sidebarCursor > 0 {
				v.sidebarCursor--
			}
		} else if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.focus == FocusSidebar {
			if v.sidebarCursor < len(v.sidebarItems())-1 {
				v.sidebarCursor++
			}
		} else if v.cursor < len(v.rec.Tasks())-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focus == FocusSidebar {
			items := v.sidebarItems()
			if v.sidebarCursor < len(items) {
				v.focus = FocusTasks
				return v, v.selectView(items[v.sidebarCursor].view)
			}
			return v, nil
		}
		if tasks := v.rec.Tasks(); len(tasks) > 0 {
			v.rec.Select(tasks[v.cursor].ID)
			v.viewingTask = true
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.creating = true
		v.quickInput.Reset()
		v.quickInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.NewList):
		v.creatingList = true
		v.newListName.Reset()
		v.newListName.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Toggle):
		if v.focus == FocusTasks {
			if tasks := v.rec.Tasks(); len(tasks) > 0 {
				return v, v.toggleTask(tasks[v.cursor])
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if v.focus == FocusTasks {
			if tasks := v.rec.Tasks(); len(tasks) > 0 {
				v.startEditTask(tasks[v.cursor])
				return v, textinput.Blink
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if v.focus == FocusSidebar {
			items := v.sidebarItems()
			if v.sidebarCursor < len(items) && items[v.sidebarCursor].view.Kind == db.ViewList {
				v.confirmingListDrop = true
				v.dropListID = items[v.sidebarCursor].view.ListID
				v.dropListName = items[v.sidebarCursor].label
			}
			return v, nil
		}
		if tasks := v.rec.Tasks(); len(tasks) > 0 {
			v.confirmingDelete = true
			v.deleteTargetID = tasks[v.cursor].ID
			v.deleteTargetName = tasks[v.cursor].Title
		}
		return v, nil
	}

	return v, nil
}

func (v *PlannerView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		v.quickInput.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		title := strings.TrimSpace(v.quickInput.Value())
		v.creating = false
		v.quickInput.Blur()
		if title == "" {
			return v, nil
		}

		// Optimistic insert before the store round-trip.
		now := time.Now()
		var listID *string
		if v.view.Kind == db.ViewList {
			id := v.view.ListID
			listID = &id
		}
		var scheduled *string
		if v.view.Kind == db.ViewToday {
			d := now.Format(db.DateLayout)
			scheduled = &d
		}
		_, op := v.rec.ApplyCreate(title, listID, scheduled, now)
		v.cursor = 0
		v.scrollY = 0
		return v, v.createTaskCmd(title, listID, op)

	default:
		var cmd tea.Cmd
		v.quickInput, cmd = v.quickInput.Update(msg)
		return v, cmd
	}
}

func (v *PlannerView) updateCreatingList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creatingList = false
		v.newListName.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		name := strings.TrimSpace(v.newListName.Value())
		v.creatingList = false
		v.newListName.Blur()
		if name == "" {
			return v, nil
		}
		return v, v.createListCmd(name)

	default:
		var cmd tea.Cmd
		v.newListName, cmd = v.newListName.Update(msg)
		return v, cmd
	}
}

func (v *PlannerView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		op := v.rec.ApplyDelete(v.deleteTargetID)
		v.clampCursor()
		if v.viewingTask {
			v.viewingTask = false
		}
		return v, v.deleteTaskCmd(v.deleteTargetID, op)
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *PlannerView) updateConfirmListDrop(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingListDrop = false
		return v, v.deleteListCmd(v.dropListID)
	case "n", "N", "esc":
		v.confirmingListDrop = false
		return v, nil
	}
	return v, nil
}

func (v *PlannerView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.viewingTask = false
		v.rec.ClearSelection()
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if t := v.rec.Selected(); t != nil {
			v.viewingTask = false
			v.startEditTask(*t)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		if t := v.rec.Selected(); t != nil {
			return v, v.toggleTask(*t)
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if t := v.rec.Selected(); t != nil {
			v.confirmingDelete = true
			v.deleteTargetID = t.ID
			v.deleteTargetName = t.Title
		}
		return v, nil

	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *PlannerView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.saveEdit()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % 7
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + 6) % 7
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		// Enter advances single-line fields, saves on the save button and
		// stays a newline inside notes.
		switch v.editFocusIdx {
		case 0, 2, 3, 4, 5:
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		case 6:
			return v, v.saveEdit()
		}

	case msg.String() == "left", msg.String() == "right":
		if v.editFocusIdx == 5 {
			n := len(v.rec.Lists()) + 1
			if msg.String() == "left" {
				v.editListIdx = (v.editListIdx + n - 1) % n
			} else {
				v.editListIdx = (v.editListIdx + 1) % n
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case 0:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case 1:
		v.editNotes, cmd = v.editNotes.Update(msg)
	case 2:
		v.editDue, cmd = v.editDue.Update(msg)
	case 3:
		v.editScheduled, cmd = v.editScheduled.Update(msg)
	case 4:
		v.editPriority, cmd = v.editPriority.Update(msg)
	}
	return v, cmd
}

func (v *PlannerView) startEditTask(task models.Task) {
	v.editing = true
	v.editID = task.ID
	v.editFocusIdx = 0
	v.editErr = ""
	v.editTitle.SetValue(task.Title)
	v.editNotes.SetValue(deref(task.Notes))
	v.editDue.SetValue(deref(task.DueDate))
	v.editScheduled.SetValue(deref(task.ScheduledDate))
	v.editPriority.SetValue(strconv.Itoa(task.Priority))
	v.editListIdx = 0
	if task.ListID != nil {
		for i, l := range v.rec.Lists() {
			if l.ID == *task.ListID {
				v.editListIdx = i + 1
				break
			}
		}
	}
	v.updateEditFocus()
}

func (v *PlannerView) updateEditFocus() {
	v.editTitle.Blur()
	v.editNotes.Blur()
	v.editDue.Blur()
	v.editScheduled.Blur()
	v.editPriority.Blur()

	switch v.editFocusIdx {
	case 0:
		v.editTitle.Focus()
	case 1:
		v.editNotes.Focus()
	case 2:
		v.editDue.Focus()
	case 3:
		v.editScheduled.Focus()
	case 4:
		v.editPriority.Focus()
	}
}

func (v *PlannerView) saveEdit() tea.Cmd {
	title := strings.TrimSpace(v.editTitle.Value())
	if title == "" {
		v.editErr = "title must not be empty"
		return nil
	}
	due := strings.TrimSpace(v.editDue.Value())
	scheduled := strings.TrimSpace(v.editScheduled.Value())
	for _, d := range []string{due, scheduled} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(db.DateLayout, d); err != nil {
			v.editErr = "dates must be YYYY-MM-DD"
			return nil
		}
	}
	priority, _ := strconv.Atoi(v.editPriority.Value())
	priority = clamp(priority, 0, 3)
	notes := strings.TrimSpace(v.editNotes.Value())

	var listID *string
	if v.editListIdx > 0 && v.editListIdx <= len(v.rec.Lists()) {
		id := v.rec.Lists()[v.editListIdx-1].ID
		listID = &id
	}

	// Every editable field is present in the form, so each one is written:
	// blank optional fields clear their columns.
	patch := db.TaskPatch{
		Title:    db.Set(title),
		Priority: db.Set(priority),
	}
	patch.Notes = optionalString(notes)
	patch.DueDate = optionalString(due)
	patch.ScheduledDate = optionalString(scheduled)
	if listID != nil {
		patch.ListID = db.Set(*listID)
	} else {
		patch.ListID = db.Clear[string]()
	}

	op := v.rec.ApplyUpdate(v.editID, time.Now(), func(t *models.Task) {
		t.Title = title
		t.Priority = priority
		t.Notes = blankToNil(notes)
		t.DueDate = blankToNil(due)
		t.ScheduledDate = blankToNil(scheduled)
		t.ListID = listID
	})

	v.editing = false
	v.editErr = ""
	return v.updateTaskCmd(v.editID, patch, op)
}

func (v *PlannerView) toggleTask(task models.Task) tea.Cmd {
	completed := !task.Completed
	op := v.rec.ApplyToggle(task.ID, completed, time.Now())
	return v.toggleTaskCmd(task.ID, completed, op)
}

// selectView switches the active selector: the selection is cleared and both
// collections re-fetched.
func (v *PlannerView) selectView(view db.View) tea.Cmd {
	v.view = view
	v.cursor = 0
	v.scrollY = 0
	v.viewingTask = false
	v.rec.ClearSelection()
	return tea.Batch(v.loadTasksCmd(), v.loadListsCmd(), v.saveViewCmd())
}

func (v *PlannerView) clampCursor() {
	if n := len(v.rec.Tasks()); v.cursor >= n {
		v.cursor = max(0, n-1)
	}
}

func (v *PlannerView) ensureVisible() {
	visibleItems := v.visibleTaskRows()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

func (v *PlannerView) visibleTaskRows() int {
	available := v.height - 8
	if available < 1 {
		return 1
	}
	return available
}

type sidebarItem struct {
	label string
	view  db.View
	color *string
}

func (v *PlannerView) sidebarItems() []sidebarItem {
	items := []sidebarItem{
		{label: "Today", view: db.Today()},
		{label: "Next 7 Days", view: db.Week()},
		{label: "Inbox", view: db.Inbox()},
		{label: "All Tasks", view: db.All()},
	}
	for _, l := range v.rec.Lists() {
		items = append(items, sidebarItem{label: l.Name, view: db.ByList(l.ID), color: l.Color})
	}
	return items
}

func (v *PlannerView) listName(id string) string {
	for _, l := range v.rec.Lists() {
		if l.ID == id {
			return l.Name
		}
	}
	return id
}

func (v *PlannerView) viewTitle() string {
	switch v.view.Kind {
	case db.ViewToday:
		return "Today"
	case db.ViewWeek:
		return "Next 7 Days"
	case db.ViewInbox:
		return "Inbox"
	case db.ViewList:
		return v.listName(v.view.ListID)
	default:
		return "All Tasks"
	}
}

// View renders the planner
func (v *PlannerView) View() string {
	if v.confirmingDelete {
		return v.renderConfirm(fmt.Sprintf("Delete task %q?", v.deleteTargetName))
	}
	if v.confirmingListDrop {
		return v.renderConfirm(fmt.Sprintf("Delete list %q? Its tasks move to the inbox.", v.dropListName))
	}
	if v.editing {
		return v.renderEditForm()
	}
	if v.viewingTask {
		return v.renderTaskDetail()
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		v.renderSidebar(),
		" ",
		v.renderTaskPane(),
	)

	var b strings.Builder
	b.WriteString(main)
	b.WriteString("\n")
	if failure := v.rec.Failure(); failure != "" {
		b.WriteString(v.styles.Error.Render("✗ " + failure))
		b.WriteString("\n")
	}
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *PlannerView) renderSidebar() string {
	s := v.styles
	var rows []string
	rows = append(rows, s.Title.Render("dayplan"), "")

	for i, item := range v.sidebarItems() {
		style := s.SidebarItem
		if item.view == v.view {
			style = s.SidebarActive
		}
		if v.focus == FocusSidebar && i == v.sidebarCursor {
			style = s.SidebarSelected
		}
		row := style.Render(item.label)
		if item.color != nil {
			dot := lipgloss.NewStyle().Foreground(lipgloss.Color(*item.color)).Render("●")
			row = dot + " " + row
		}
		rows = append(rows, row)
	}

	if v.creatingList {
		rows = append(rows, "", s.InputFocused.Render(v.newListName.View()))
	}

	frame := s.Sidebar
	if v.focus == FocusSidebar {
		frame = s.SidebarFocused
	}
	return frame.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (v *PlannerView) renderTaskPane() string {
	s := v.styles
	var rows []string
	rows = append(rows, s.Title.Render(v.viewTitle()), "")

	if v.creating {
		inputWidth := clamp(v.width-styles.SidebarWidth-10, 20, 60)
		rows = append(rows, s.InputFocused.Width(inputWidth).Render(v.quickInput.View()), "")
	}

	tasks := v.rec.Tasks()
	if len(tasks) == 0 {
		rows = append(rows, s.TitleMuted.Render("No tasks. Press 'n' to create one."))
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	endIdx := min(v.scrollY+v.visibleTaskRows(), len(tasks))
	for i := v.scrollY; i < endIdx; i++ {
		rows = append(rows, v.renderTaskItem(tasks[i], i == v.cursor && v.focus == FocusTasks))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *PlannerView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles

	check := "[ ]"
	if task.Completed {
		check = "[x]"
	}

	title := task.Title
	if task.Completed {
		title = s.TaskDone.Render(title)
	}

	var meta []string
	if task.Priority > 0 {
		meta = append(meta, s.TaskPriority.Render(strings.Repeat("!", task.Priority)))
	}
	if task.DueDate != nil {
		due := "due " + *task.DueDate
		if !task.Completed && *task.DueDate < time.Now().Format(db.DateLayout) {
			meta = append(meta, s.TaskOverdue.Render(due))
		} else {
			meta = append(meta, s.TaskMeta.Render(due))
		}
	}
	if task.ScheduledDate != nil && v.view.Kind != db.ViewToday {
		meta = append(meta, s.TaskMeta.Render("→ "+*task.ScheduledDate))
	}
	if task.ListID != nil && v.view.Kind != db.ViewList {
		meta = append(meta, s.TaskMeta.Render("#"+v.listName(*task.ListID)))
	}

	line := check + " " + title
	if len(meta) > 0 {
		line += "  " + strings.Join(meta, " ")
	}

	if selected {
		return s.TaskSelected.Render(line)
	}
	return s.TaskItem.Render(line)
}

func (v *PlannerView) renderTaskDetail() string {
	s := v.styles
	task := v.rec.Selected()
	if task == nil {
		return s.TitleMuted.Render("Nothing selected.")
	}

	label := s.DetailLabel.Render
	var rows []string
	rows = append(rows, s.Title.Render(task.Title), "")
	if task.Notes != nil {
		rows = append(rows, label("Notes"), *task.Notes, "")
	}
	if task.DueDate != nil {
		rows = append(rows, label("Due")+"        "+*task.DueDate)
	}
	if task.ScheduledDate != nil {
		rows = append(rows, label("Scheduled")+"  "+*task.ScheduledDate)
	}
	if task.Priority > 0 {
		rows = append(rows, label("Priority")+"   "+s.TaskPriority.Render(strings.Repeat("!", task.Priority)))
	}
	listName := "Inbox"
	if task.ListID != nil {
		listName = v.listName(*task.ListID)
	}
	rows = append(rows, label("List")+"       "+listName)

	status := "open"
	if task.Completed {
		status = "done"
		if task.CompletedAt != nil {
			status += " " + task.CompletedAt.Local().Format("2006-01-02 15:04")
		}
	}
	rows = append(rows, label("Status")+"     "+status, "")
	rows = append(rows, s.TaskMeta.Render("created "+task.CreatedAt.Local().Format("2006-01-02 15:04")))
	rows = append(rows, s.TaskMeta.Render("updated "+task.UpdatedAt.Local().Format("2006-01-02 15:04")))

	detail := s.Detail.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	help := v.helpLine([][2]string{
		{"e", "edit"}, {"space", "toggle"}, {"d", "delete"}, {"esc", "back"},
	})
	return lipgloss.JoinVertical(lipgloss.Left, detail, help)
}

func (v *PlannerView) renderEditForm() string {
	s := v.styles

	field := func(idx int, label string, view string) string {
		style := s.Input
		if v.editFocusIdx == idx {
			style = s.InputFocused
		}
		return s.DetailLabel.Render(label) + "\n" + style.Render(view)
	}

	listLabel := "Inbox"
	if v.editListIdx > 0 && v.editListIdx <= len(v.rec.Lists()) {
		listLabel = v.rec.Lists()[v.editListIdx-1].Name
	}
	listStyle := s.Input
	if v.editFocusIdx == 5 {
		listStyle = s.InputFocused
	}

	saveStyle := s.Input
	if v.editFocusIdx == 6 {
		saveStyle = s.InputFocused
	}

	rows := []string{
		s.Title.Render("Edit Task"),
		"",
		field(0, "Title", v.editTitle.View()),
		field(1, "Notes", v.editNotes.View()),
		field(2, "Due date", v.editDue.View()),
		field(3, "Scheduled date", v.editScheduled.View()),
		field(4, "Priority", v.editPriority.View()),
		s.DetailLabel.Render("List") + "\n" + listStyle.Render("◀ "+listLabel+" ▶"),
		"",
		saveStyle.Render("Save"),
	}
	if v.editErr != "" {
		rows = append(rows, "", s.Error.Render("✗ "+v.editErr))
	}
	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	help := v.helpLine([][2]string{
		{"tab", "next field"}, {"ctrl+s", "save"}, {"esc", "cancel"},
	})
	return lipgloss.JoinVertical(lipgloss.Left, form, help)
}

func (v *PlannerView) renderConfirm(prompt string) string {
	s := v.styles
	box := s.Detail.Render(lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(prompt),
		"",
		s.TitleMuted.Render("y: yes    n: no"),
	))
	return box
}

func (v *PlannerView) renderHelp() string {
	if v.focus == FocusSidebar {
		return v.helpLine([][2]string{
			{"enter", "open view"}, {"N", "new list"}, {"d", "delete list"},
			{"tab", "tasks"}, {"q", "quit"},
		})
	}
	return v.helpLine([][2]string{
		{"n", "new"}, {"space", "toggle"}, {"e", "edit"}, {"d", "delete"},
		{"enter", "detail"}, {"tab", "sidebar"}, {"q", "quit"},
	})
}

func (v *PlannerView) helpLine(entries [][2]string) string {
	s := v.styles
	var parts []string
	for _, e := range entries {
		parts = append(parts, s.HelpKey.Render(e[0])+" "+s.HelpDesc.Render(e[1]))
	}
	return s.Help.Render(strings.Join(parts, "  "))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func blankToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// optionalString maps a form value onto a patch field: blank clears the
// column, anything else sets it.
func optionalString(s string) db.Optional[string] {
	if s == "" {
		return db.Clear[string]()
	}
	return db.Set(s)
}
