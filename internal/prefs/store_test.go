package prefs

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("control-panel.position", `{"x":10,"y":20}`); err != nil {
		t.Fatalf("put: %v", err)
	}
	p, err := s.Get("control-panel.position")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Value != `{"x":10,"y":20}` {
		t.Fatalf("unexpected value: %s", p.Value)
	}
}

func TestPutOverwrites(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("k", "old"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put("k", "new"); err != nil {
		t.Fatalf("put: %v", err)
	}
	p, err := s.Get("k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Value != "new" {
		t.Fatalf("expected overwrite, got %s", p.Value)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.Put("k", "v"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := s.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListOrdered(t *testing.T) {
	s := openTestStore(t)
	for _, k := range []string{"b", "a", "c"} {
		if err := s.Put(k, "v"); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	out, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 3 || out[0].Key != "a" || out[2].Key != "c" {
		t.Fatalf("unexpected list: %+v", out)
	}
}
