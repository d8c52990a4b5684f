package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newSQLite(t *testing.T) Store {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Failed to init database: %v", err)
	}
	return s
}

func newRedis(t *testing.T) Store {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedis(client, "test:")
}

func newFile(t *testing.T) Store {
	t.Helper()
	f, err := NewFile(filepath.Join(t.TempDir(), "nested", "store.json"))
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	return f
}

func TestBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemory() },
		"sqlite": newSQLite,
		"redis":  newRedis,
		"file":   newFile,
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()
			ctx := context.Background()

			if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
				t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
			}

			if err := s.Set(ctx, "tasks_v2", `[{"id":"1"}]`); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			v, ok, err := s.Get(ctx, "tasks_v2")
			if err != nil || !ok {
				t.Fatalf("Get failed: ok=%v err=%v", ok, err)
			}
			if v != `[{"id":"1"}]` {
				t.Errorf("unexpected value %q", v)
			}

			if err := s.Set(ctx, "tasks_v2", `[]`); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}
			if v, _, _ := s.Get(ctx, "tasks_v2"); v != `[]` {
				t.Errorf("expected overwrite to win, got %q", v)
			}

			if err := s.Delete(ctx, "tasks_v2"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := s.Delete(ctx, "tasks_v2"); err != nil {
				t.Fatalf("second Delete failed: %v", err)
			}
			if _, ok, _ := s.Get(ctx, "tasks_v2"); ok {
				t.Error("expected key to be gone after Delete")
			}
		})
	}
}

func TestOpenSQLiteWAL(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sub", "test.db")

	s, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("Failed to query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("Expected journal_mode wal, got %s", mode)
	}
}

func TestSQLitePersistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "board.db")
	ctx := context.Background()

	s, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	s.Set(ctx, "tasks_v2", "[]")
	s.Set(ctx, "tasks_v1", "[]")

	s.Close()

	reopened, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer reopened.Close()
	if err := reopened.Init(ctx); err != nil {
		t.Fatalf("Init on existing database failed: %v", err)
	}
	for _, key := range []string{"tasks_v1", "tasks_v2"} {
		if v, ok, _ := reopened.Get(ctx, key); !ok || v != "[]" {
			t.Errorf("expected %s to survive reopen, got %q ok=%v", key, v, ok)
		}
	}
}

func TestRedisPrefix(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedis(client, "board:")
	defer s.Close()

	if err := s.Set(context.Background(), "tasks_v2", "[]"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := mr.Get("board:tasks_v2")
	if err != nil {
		t.Fatalf("miniredis get: %v", err)
	}
	if got != "[]" {
		t.Errorf("expected prefixed key to hold [], got %q", got)
	}
}

func TestDialRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	s, err := DialRedis(context.Background(), mr.Addr(), "", 0, "")
	if err != nil {
		t.Fatalf("DialRedis failed: %v", err)
	}
	s.Close()

	if _, err := DialRedis(context.Background(), "", "", 0, ""); err == nil {
		t.Error("expected error for empty address")
	}
}

func TestFileCorruptContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, _ := NewFile(path)

	if _, _, err := f.Get(context.Background(), "tasks_v2"); err == nil {
		t.Error("expected parse error for corrupt file")
	}
	if err := f.Set(context.Background(), "tasks_v2", "[]"); err == nil {
		t.Error("expected Set to refuse overwriting a corrupt file")
	}
}

func TestFileObservesExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	f, _ := NewFile(path)
	ctx := context.Background()

	if err := f.Set(ctx, "tasks_v2", "[]"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"tasks_v1":"[]"}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok, _ := f.Get(ctx, "tasks_v2"); ok {
		t.Error("expected externally removed key to be absent")
	}
	if _, ok, _ := f.Get(ctx, "tasks_v1"); !ok {
		t.Error("expected externally added key to be present")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Backend: BackendSQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("Open sqlite failed: %v", err)
	}
	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Errorf("expected kv table to exist after Open: %v", err)
	}
	s.Close()

	s, err = Open(ctx, Options{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("Open memory failed: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Errorf("expected *Memory, got %T", s)
	}

	_, err = Open(ctx, Options{Backend: "etcd"})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}
