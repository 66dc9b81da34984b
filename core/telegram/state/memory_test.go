package state

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreSetGetClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10, time.Hour)

	if _, ok, err := s.Get(ctx, 1, "pending_code"); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, 1, "pending_code", "345623"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, 1, "pending_code", "78"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get(ctx, 1, "pending_code")
	if err != nil || !ok || v != "78" {
		t.Fatalf("get = %q %v %v, want last write", v, ok, err)
	}
	if _, ok, _ := s.Get(ctx, 2, "pending_code"); ok {
		t.Fatal("value leaked to another user")
	}
	if _, ok, _ := s.Get(ctx, 1, "staged_upload"); ok {
		t.Fatal("value leaked to another key")
	}
	if err := s.Clear(ctx, 1, "pending_code"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := s.Get(ctx, 1, "pending_code"); ok {
		t.Fatal("value survived clear")
	}
}

func TestMemoryStoreBounded(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(2, time.Hour)
	for uid := int64(1); uid <= 3; uid++ {
		if err := s.Set(ctx, uid, "k", "v"); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if _, ok, _ := s.Get(ctx, 1, "k"); ok {
		t.Fatal("oldest entry should be evicted")
	}
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10, 20*time.Millisecond)
	if err := s.Set(ctx, 1, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	if _, ok, _ := s.Get(ctx, 1, "k"); ok {
		t.Fatal("entry should have expired")
	}
}

func TestMemoryStoreEmptyKey(t *testing.T) {
	s := NewMemoryStore(0, 0)
	if err := s.Set(context.Background(), 1, "", "v"); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}
