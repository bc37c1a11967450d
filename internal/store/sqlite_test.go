package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteOpenStateRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")
	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	}()

	ctx := context.Background()

	if _, ok, err := s.GetOpenState(ctx, KeyWidgetOpen); err != nil || ok {
		t.Fatalf("Expected no stored state, got ok=%v err=%v", ok, err)
	}

	if err := s.SetOpenState(ctx, KeyWidgetOpen, true); err != nil {
		t.Fatalf("SetOpenState failed: %v", err)
	}
	open, ok, err := s.GetOpenState(ctx, KeyWidgetOpen)
	if err != nil || !ok || !open {
		t.Errorf("Expected open=true ok=true, got open=%v ok=%v err=%v", open, ok, err)
	}

	// Last write wins.
	if err := s.SetOpenState(ctx, KeyWidgetOpen, false); err != nil {
		t.Fatalf("SetOpenState failed: %v", err)
	}
	open, ok, err = s.GetOpenState(ctx, KeyWidgetOpen)
	if err != nil || !ok || open {
		t.Errorf("Expected open=false ok=true, got open=%v ok=%v err=%v", open, ok, err)
	}
}

func TestSQLiteVariantKeysCoexist(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")
	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.SetOpenState(ctx, KeyWidgetOpen, true); err != nil {
		t.Fatal(err)
	}
	if err := s.SetOpenState(ctx, KeyIframeOpen, false); err != nil {
		t.Fatal(err)
	}

	if open, _, _ := s.GetOpenState(ctx, KeyWidgetOpen); !open {
		t.Error("Expected plain widget key open=true")
	}
	if open, _, _ := s.GetOpenState(ctx, KeyIframeOpen); open {
		t.Error("Expected iframe key open=false")
	}
}
