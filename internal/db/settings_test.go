package db

import (
	"context"
	"testing"
)

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if v, err := s.GetSetting(ctx, "last_view"); err != nil || v != "" {
		t.Fatalf("missing key: got (%q, %v), want empty", v, err)
	}

	if err := s.SetSetting(ctx, "last_view", "today"); err != nil {
		t.Fatalf("setting value: %v", err)
	}
	if err := s.SetSetting(ctx, "last_view", "inbox"); err != nil {
		t.Fatalf("overwriting value: %v", err)
	}

	v, err := s.GetSetting(ctx, "last_view")
	if err != nil || v != "inbox" {
		t.Fatalf("got (%q, %v), want latest value", v, err)
	}
}
