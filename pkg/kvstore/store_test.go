package kvstore

import (
	"context"
	"testing"
)

func TestMemoryReadWriteDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if _, ok, err := store.Read(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := store.Write(ctx, "k", `{"a":1}`); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	value, ok, err := store.Read(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected key present, got ok=%v err=%v", ok, err)
	}
	if value != `{"a":1}` {
		t.Fatalf("unexpected value %q", value)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, _ := store.Read(ctx, "k"); ok {
		t.Fatal("expected key to be deleted")
	}
}

func TestMemoryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemory()
	if err := store.Write(ctx, "k", "v"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
