package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/mikey/llm-priority-scorer/internal/core"
	"go.uber.org/zap"
)

func TestMemoryStoreContactRoundTrip(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	if _, err := s.Lookup(ctx, "missing@nowhere.io"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Lookup missing = %v, want ErrNotFound", err)
	}

	contact := &core.Contact{
		Email:         "Boss@Corp.com",
		Name:          "The Boss",
		Authority:     core.AuthorityVIP,
		PriorityBoost: 3,
	}
	if err := s.Upsert(ctx, contact); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// address lookup is case-insensitive
	got, err := s.Lookup(ctx, "BOSS@corp.com")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	want := &core.Contact{
		Email:         "boss@corp.com",
		Name:          "The Boss",
		Authority:     core.AuthorityVIP,
		PriorityBoost: 3,
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(core.Contact{}, "CreatedAt", "UpdatedAt")); diff != "" {
		t.Errorf("contact mismatch (-want +got):\n%s", diff)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps were not set on upsert")
	}
}

func TestMemoryStoreLookupReturnsCopy(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	if err := s.Upsert(ctx, &core.Contact{Email: "a@b.com", Name: "A"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	first, _ := s.Lookup(ctx, "a@b.com")
	first.Name = "mutated"

	second, _ := s.Lookup(ctx, "a@b.com")
	if second.Name != "A" {
		t.Errorf("stored contact was mutated through a lookup result")
	}
}

func TestMemoryStoreHistoryLifecycle(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	if _, err := s.Get(ctx, "new@sender.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("Get unseen = %v, want ErrNotFound", err)
	}

	created, err := s.Create(ctx, "New@Sender.com")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.SenderEmail != "new@sender.com" || created.EmailsReceived != 1 {
		t.Errorf("created = %+v, want normalized sender with one received", created)
	}

	created.EmailsReceived = 5
	created.ResponsesSent = 2
	if err := s.Update(ctx, created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.Get(ctx, "new@sender.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.EmailsReceived != 5 || got.ResponsesSent != 2 {
		t.Errorf("got = %+v, want updated counts", got)
	}
}

func TestMemoryStoreArchiveIdempotent(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	email := &core.Email{ID: "msg-1", From: "a@b.com", Subject: "hello"}
	for i := 0; i < 3; i++ {
		if err := s.Archive(ctx, email); err != nil {
			t.Fatalf("Archive: %v", err)
		}
	}
	if got := s.ArchivedCount(); got != 1 {
		t.Errorf("ArchivedCount = %d, want 1 after repeated archiving", got)
	}

	if err := s.Archive(ctx, &core.Email{ID: "msg-2"}); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if got := s.ArchivedCount(); got != 2 {
		t.Errorf("ArchivedCount = %d, want 2", got)
	}
}
