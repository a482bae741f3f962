package service

import (
	"context"
	"errors"
	"testing"

	"scope-chat/internal/domain"
)

func TestIdentityServiceResolve_CreatesOnFirstContact(t *testing.T) {
	repo := &memUserRepo{}
	svc := NewIdentityService(nil, repo)

	user, err := svc.Resolve(context.Background(), IdentityInput{
		Name: "Ana", StudentID: "s-1", Group: 2, Member: "A", Consent: "yes",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID == 0 || user.Name != "Ana" || user.Consent != "yes" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected one stored user, got %d", len(repo.users))
	}
}

func TestIdentityServiceResolve_ReturnsExistingAndKeepsName(t *testing.T) {
	repo := &memUserRepo{}
	svc := NewIdentityService(nil, repo)
	ctx := context.Background()

	first, _ := svc.Resolve(ctx, IdentityInput{Name: "Ana", Group: 2, Member: "A"})
	second, err := svc.Resolve(ctx, IdentityInput{Name: "Otro", Group: 2, Member: "A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID || second.Name != "Ana" {
		t.Fatalf("expected same stored user, got %+v", second)
	}

	other, _ := svc.Resolve(ctx, IdentityInput{Name: "Ana", Group: 3, Member: "A"})
	if other.ID == first.ID {
		t.Fatalf("different group must create a different user")
	}
}

func TestIdentityServiceResolve_ConsentUpdates(t *testing.T) {
	repo := &memUserRepo{}
	svc := NewIdentityService(nil, repo)
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, IdentityInput{Group: 1, Member: "B", Consent: "yes"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := []struct {
		name    string
		consent string
		want    string
		updates int
	}{
		{name: "empty keeps stored", consent: "", want: "yes", updates: 0},
		{name: "same value no write", consent: "yes", want: "yes", updates: 0},
		{name: "different value updates", consent: "no", want: "no", updates: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo.consentUpdates = 0
			user, err := svc.Resolve(ctx, IdentityInput{Group: 1, Member: "B", Consent: tc.consent})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Consent != tc.want {
				t.Fatalf("expected consent %q, got %q", tc.want, user.Consent)
			}
			if repo.consentUpdates != tc.updates {
				t.Fatalf("expected %d updates, got %d", tc.updates, repo.consentUpdates)
			}
		})
	}
}

func TestIdentityServiceResolve_ConcurrentCreateReloads(t *testing.T) {
	repo := &memUserRepo{raceUser: &domain.User{Name: "Primero", Group: 5, Member: "C"}}
	svc := NewIdentityService(nil, repo)

	user, err := svc.Resolve(context.Background(), IdentityInput{Name: "Segundo", Group: 5, Member: "C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Name != "Primero" {
		t.Fatalf("expected the concurrently created user, got %+v", user)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected a single user row, got %d", len(repo.users))
	}
}

func TestIdentityServiceResolve_Errors(t *testing.T) {
	boom := errors.New("db down")

	if _, err := NewIdentityService(nil, &memUserRepo{getErr: boom}).Resolve(context.Background(), IdentityInput{Group: 1}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped get error, got %v", err)
	}
	if _, err := NewIdentityService(nil, &memUserRepo{createErr: boom}).Resolve(context.Background(), IdentityInput{Group: 1}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped create error, got %v", err)
	}

	var svc *IdentityService
	if _, err := svc.Resolve(context.Background(), IdentityInput{}); !errors.Is(err, ErrIdentityServiceNotConfigured) {
		t.Fatalf("expected not configured error, got %v", err)
	}
}
