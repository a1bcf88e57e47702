package state

import (
	"context"
	"errors"
	"testing"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/domain"
)

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	if _, err := repo.Get(ctx, "c1", KeyCart); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.Set(ctx, "c1", KeyCart, []byte(`[]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := repo.Get(ctx, "c1", KeyCart)
	if err != nil || string(got) != `[]` {
		t.Fatalf("unexpected value %q err=%v", got, err)
	}
	if err := repo.Delete(ctx, "c1", KeyCart); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, "c1", KeyCart); err != nil {
		t.Fatalf("second Delete should be a no-op, got %v", err)
	}
	if _, err := repo.Get(ctx, "c1", KeyCart); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestMemory_ClientsAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	a := NewBucket(repo, "a")
	b := NewBucket(repo, "b")

	if err := a.Set(ctx, KeySession, []byte(`{"currentSession":{}}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := b.Get(ctx, KeySession); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected other client to see nothing, got %v", err)
	}
	if a.ClientID() != "a" {
		t.Fatalf("unexpected client id %q", a.ClientID())
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	value := []byte(`[1]`)
	_ = repo.Set(ctx, "c", "k", value)
	value[1] = '9'

	got, _ := repo.Get(ctx, "c", "k")
	if string(got) != `[1]` {
		t.Fatalf("stored value aliased caller slice: %q", got)
	}
}
