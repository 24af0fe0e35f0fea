package service

import (
	"context"
	"errors"
	"testing"

	"todo_webapp/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

func newTestAccountService() (*AccountService, *memAuditStore) {
	audit := &memAuditStore{}
	svc := NewAccountService(newMemAccountStore(), NewAuditService(audit))
	svc.cost = bcrypt.MinCost
	return svc, audit
}

func TestSignupAndLogin(t *testing.T) {
	svc, audit := newTestAccountService()
	ctx := context.Background()

	a, err := svc.Signup(ctx, "  Alice@Example.com ", "password123", "")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if a.Email != "alice@example.com" {
		t.Fatalf("email = %q", a.Email)
	}
	if a.Name != "alice" {
		t.Fatalf("name = %q", a.Name)
	}
	if a.PasswordHash == "password123" {
		t.Fatal("password stored in clear")
	}

	got, err := svc.Login(ctx, "ALICE@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != a.ID {
		t.Fatalf("login returned %s, want %s", got.ID, a.ID)
	}

	actions := audit.actions()
	if len(actions) != 2 || actions[0] != domain.AuditActionSignup || actions[1] != domain.AuditActionLogin {
		t.Fatalf("audit = %v", actions)
	}
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newTestAccountService()
	ctx := context.Background()

	cases := []struct {
		email, password string
	}{
		{"not-an-email", "password123"},
		{"", "password123"},
		{"a@b.co", "short"},
	}
	for _, tc := range cases {
		if _, err := svc.Signup(ctx, tc.email, tc.password, "x"); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("signup(%q, %q): expected validation error, got %v", tc.email, tc.password, err)
		}
	}
}

func TestSignupDuplicate(t *testing.T) {
	svc, _ := newTestAccountService()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "bob@example.com", "password123", "Bob"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Signup(ctx, "BOB@example.com", "password456", "Bob"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newTestAccountService()
	ctx := context.Background()
	svc.Signup(ctx, "carol@example.com", "password123", "Carol")

	if _, err := svc.Login(ctx, "carol@example.com", "wrong-password"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("unknown email: got %v", err)
	}
}
