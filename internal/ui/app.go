package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mwelland/dayplan/internal/db"
	"github.com/mwelland/dayplan/internal/ui/views"
)

// App is the top-level bubbletea model. It owns the planner screen and pumps
// store change notifications into the update loop.
type App struct {
	store   *db.Store
	planner *views.PlannerView
	changes chan struct{}
	width   int
	height  int
}

// NewApp creates the application, restoring the last active view selector.
func NewApp(store *db.Store) *App {
	changes := make(chan struct{}, 1)
	store.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	token, err := store.GetSetting(context.Background(), "last_view")
	view := db.Today()
	if err == nil && token != "" {
		view = db.ParseView(token)
	}

	planner := views.NewPlannerView(store, db.NewTaskStore(store), db.NewListStore(store), view)

	return &App{
		store:   store,
		planner: planner,
		changes: changes,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.planner.Init(), a.waitForChange())
}

// waitForChange blocks on the store change signal and re-arms after every
// notification.
func (a *App) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-a.changes
		return views.StoreChangedMsg{}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case views.StoreChangedMsg:
		_, cmd := a.planner.Update(msg)
		return a, tea.Batch(cmd, a.waitForChange())
	}

	_, cmd := a.planner.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	return a.planner.View()
}
