package kv

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v, want absent", ok, err)
	}
	if err := s.Set(ctx, KeyDataset, []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(ctx, KeyDataset)
	if err != nil || !ok || !bytes.Equal(got, []byte(`{"v":1}`)) {
		t.Fatalf("Get = %q ok=%v err=%v", got, ok, err)
	}
	if err := s.Set(ctx, KeyDataset, []byte(`{"v":2}`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _, _ = s.Get(ctx, KeyDataset)
	if !bytes.Equal(got, []byte(`{"v":2}`)) {
		t.Fatalf("overwrite not visible, got %q", got)
	}
	if err := s.Delete(ctx, KeyDataset); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, KeyDataset); ok {
		t.Fatal("key still present after delete")
	}
	if err := s.Delete(ctx, KeyDataset); err != nil {
		t.Fatalf("Delete absent key: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemory()
	exerciseStore(t, s)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Set(context.Background(), "k", []byte("v")); err != ErrClosed {
		t.Fatalf("Set after close = %v, want ErrClosed", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")
	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	exerciseStore(t, s)

	// Values survive reopening the same file.
	if err := s.Set(context.Background(), KeyScenarios, []byte("persisted")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, ok, err := reopened.Get(context.Background(), KeyScenarios)
	if err != nil || !ok || string(got) != "persisted" {
		t.Fatalf("reopened Get = %q ok=%v err=%v", got, ok, err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Setenv("BISTROCORE_STORAGE_DRIVER", "etcd")
	if _, err := Open(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpenMemoryDriver(t *testing.T) {
	t.Setenv("BISTROCORE_STORAGE_DRIVER", "memory")
	s, err := Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*Memory); !ok {
		t.Fatalf("Open returned %T, want *Memory", s)
	}
}
