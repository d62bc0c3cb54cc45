package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/competition-manager/internal/domain/user"
	"github.com/riskibarqy/competition-manager/internal/usecase"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	auth, err := NewAuthenticator("test-secret", nil)
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	return auth
}

func TestAuthenticator_SignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuthenticator(t)

	session, err := auth.SignUp(ctx, user.SignUpInput{
		Email:    " A@B.com ",
		Password: "secret1",
		Metadata: map[string]any{"name": "Ana"},
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if session.Identity.Email != "a@b.com" || session.Identity.Name != "Ana" || session.Identity.ID == "" {
		t.Fatalf("unexpected identity: %+v", session.Identity)
	}
	if session.AccessToken == "" || session.ExpiresAt.IsZero() {
		t.Fatalf("expected token and expiry, got %+v", session)
	}

	signedIn, err := auth.SignInWithPassword(ctx, user.Credentials{Email: "a@b.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if signedIn.Identity.ID != session.Identity.ID {
		t.Fatalf("identity mismatch: %s vs %s", signedIn.Identity.ID, session.Identity.ID)
	}

	identity, err := auth.GetIdentity(ctx, signedIn.AccessToken)
	if err != nil {
		t.Fatalf("get identity: %v", err)
	}
	if identity.Name != "Ana" {
		t.Fatalf("unexpected identity from token: %+v", identity)
	}
}

func TestAuthenticator_RejectsDuplicateAndBadPassword(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuthenticator(t)
	input := user.SignUpInput{Email: "a@b.com", Password: "secret1"}
	if _, err := auth.SignUp(ctx, input); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if _, err := auth.SignUp(ctx, input); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
	if _, err := auth.SignInWithPassword(ctx, user.Credentials{Email: "a@b.com", Password: "wrong"}); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected credential rejection, got %v", err)
	}
	if _, err := auth.SignInWithPassword(ctx, user.Credentials{Email: "nobody@b.com", Password: "secret1"}); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected unknown user rejection, got %v", err)
	}
}

func TestAuthenticator_SignOutRevokesToken(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuthenticator(t)
	session, err := auth.SignUp(ctx, user.SignUpInput{Email: "a@b.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if err := auth.SignOut(ctx, session.AccessToken); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := auth.GetIdentity(ctx, session.AccessToken); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected revoked token to be unauthorized, got %v", err)
	}
}

func TestAuthenticator_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	auth := newTestAuthenticator(t)
	issuedAt := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return issuedAt }

	session, err := auth.SignUp(ctx, user.SignUpInput{Email: "a@b.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	auth.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	if _, err := auth.GetIdentity(ctx, session.AccessToken); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected expired token to be unauthorized, got %v", err)
	}
}

func TestNewAuthenticator_RequiresSecret(t *testing.T) {
	if _, err := NewAuthenticator("  ", nil); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
