package ids

import (
	"strings"
	"testing"
)

func TestUUIDFormat(t *testing.T) {
	id := UUID{}.Next()
	if len(id) != 36 {
		t.Errorf("Expected ID length 36, got %d (%s)", len(id), id)
	}
	if !strings.Contains(id, "-") {
		t.Errorf("Expected ID to contain dashes, got %s", id)
	}
}

func TestGeneratorsAreUnique(t *testing.T) {
	for _, kind := range []string{KindUUID, KindNanoID} {
		t.Run(kind, func(t *testing.T) {
			gen, err := New(kind)
			if err != nil {
				t.Fatalf("New(%q) failed: %v", kind, err)
			}
			seen := make(map[string]bool)
			for i := 0; i < 1000; i++ {
				id := gen.Next()
				if id == "" {
					t.Fatal("generated empty id")
				}
				if seen[id] {
					t.Fatalf("duplicate id after %d draws: %s", i, id)
				}
				seen[id] = true
			}
		})
	}
}

func TestNanoIDLength(t *testing.T) {
	gen, err := NewNanoID()
	if err != nil {
		t.Fatalf("NewNanoID failed: %v", err)
	}
	if id := gen.Next(); len(id) != 21 {
		t.Errorf("expected 21 chars, got %d (%s)", len(id), id)
	}
}

func TestNewDefaultsToUUID(t *testing.T) {
	gen, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := gen.(UUID); !ok {
		t.Errorf("expected UUID generator, got %T", gen)
	}
}

func TestNewUnknownKind(t *testing.T) {
	if _, err := New("ulid"); err == nil {
		t.Error("expected error for unknown id format")
	}
}

func TestFunc(t *testing.T) {
	n := 0
	gen := Func(func() string {
		n++
		return strings.Repeat("x", n)
	})
	if gen.Next() != "x" || gen.Next() != "xx" {
		t.Error("Func did not delegate to the wrapped function")
	}
}
