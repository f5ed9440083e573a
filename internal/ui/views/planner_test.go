package views

import (
	"strings"
	"testing"
	"time"

	"github.com/mwelland/dayplan/internal/db"
	"github.com/mwelland/dayplan/internal/models"
)

func TestSidebarShowsListColorMarker(t *testing.T) {
	v := NewPlannerView(nil, nil, nil, db.Today())

	color := "#9ece6a"
	v.rec.SetLists([]models.List{
		{ID: "l1", Name: "errands", CreatedAt: time.Now()},
		{ID: "l2", Name: "work", Color: &color, CreatedAt: time.Now()},
	})

	out := v.renderSidebar()
	if !strings.Contains(out, "work") || !strings.Contains(out, "errands") {
		t.Fatalf("sidebar missing list labels:\n%s", out)
	}

	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.Contains(line, "work") && !strings.Contains(line, "●"):
			t.Errorf("colored list should carry a marker: %q", line)
		case strings.Contains(line, "errands") && strings.Contains(line, "●"):
			t.Errorf("uncolored list should not carry a marker: %q", line)
		}
	}
}
