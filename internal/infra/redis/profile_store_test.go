package redis

import (
	"context"
	"errors"
	"testing"

	"kanguru-service/internal/domain"
)

func TestProfileStorePINClaims(t *testing.T) {
	mr := startMiniredis(t)
	store := NewProfileStore(newClient(mr))
	ctx := context.Background()

	won, err := store.ClaimPIN(ctx, "1234", "u1")
	if err != nil || !won {
		t.Fatalf("first claim should win: won=%v err=%v", won, err)
	}
	if won, _ := store.ClaimPIN(ctx, "1234", "u2"); won {
		t.Fatalf("second claim should lose")
	}
	uid, err := store.LookupPIN(ctx, "1234")
	if err != nil || uid != "u1" {
		t.Fatalf("lookup: uid=%q err=%v", uid, err)
	}
	if _, err := store.LookupPIN(ctx, "9999"); !errors.Is(err, domain.ErrPINNotFound) {
		t.Fatalf("expected ErrPINNotFound, got %v", err)
	}
}

func TestProfileStoreRoundTrip(t *testing.T) {
	mr := startMiniredis(t)
	store := NewProfileStore(newClient(mr))
	ctx := context.Background()

	if _, err := store.GetProfile(ctx, "u1"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if err := store.PutProfile(ctx, "u1", domain.NewUserProfile("Kim", "1234")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DisplayName != "Kim" || got.PIN != "1234" {
		t.Fatalf("unexpected profile %+v", got)
	}
}

func TestProfileStoreUpdateRetriesOnConflict(t *testing.T) {
	mr := startMiniredis(t)
	client := newClient(mr)
	store := NewProfileStore(client)
	ctx := context.Background()

	if err := store.UpdateProfile(ctx, "u1", func(*domain.UserProfile) error { return nil }); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if err := store.PutProfile(ctx, "u1", domain.NewUserProfile("Kim", "1234")); err != nil {
		t.Fatalf("put: %v", err)
	}

	calls := 0
	err := store.UpdateProfile(ctx, "u1", func(p *domain.UserProfile) error {
		calls++
		if calls == 1 {
			// a competing writer lands between WATCH and EXEC
			concurrent := domain.NewUserProfile("Kim", "1234")
			concurrent.Stats.TotalTests = 5
			if err := store.PutProfile(ctx, "u1", concurrent); err != nil {
				t.Fatalf("concurrent put: %v", err)
			}
		}
		p.Stats.TotalTests++
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected one retry, got %d calls", calls)
	}

	got, _ := store.GetProfile(ctx, "u1")
	if got.Stats.TotalTests != 6 {
		t.Fatalf("expected update applied on top of concurrent write, got %d", got.Stats.TotalTests)
	}
}
