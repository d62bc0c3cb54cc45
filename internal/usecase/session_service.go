package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/riskibarqy/competition-manager/internal/domain/user"
	"github.com/riskibarqy/competition-manager/internal/platform/logging"
)

// SessionService owns the signed-in session of this process.
type SessionService struct {
	auth       user.Authenticator
	store      user.SessionStore
	logger     *logging.Logger
	revalidate bool
	now        func() time.Time

	mu      sync.RWMutex
	current *user.Session
}

func NewSessionService(auth user.Authenticator, store user.SessionStore, logger *logging.Logger, revalidate bool) *SessionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionService{
		auth:       auth,
		store:      store,
		logger:     logger.Named("session"),
		revalidate: revalidate,
		now:        time.Now,
	}
}

func (s *SessionService) Login(ctx context.Context, email, password string) (user.Identity, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Login")
	defer span.End()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return user.Identity{}, ErrMissingInput
	}

	session, err := s.auth.SignInWithPassword(ctx, user.Credentials{Email: email, Password: password})
	if err != nil {
		if errors.Is(err, ErrDependencyUnavailable) {
			return user.Identity{}, err
		}
		return user.Identity{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if session.Identity.IsZero() {
		return user.Identity{}, ErrNoIdentityReturned
	}

	s.establish(ctx, session)
	return session.Identity, nil
}

func (s *SessionService) Register(ctx context.Context, email, password, name string) (user.Identity, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Register")
	defer span.End()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return user.Identity{}, ErrMissingInput
	}

	input := user.SignUpInput{Email: email, Password: password}
	if name = strings.TrimSpace(name); name != "" {
		input.Metadata = map[string]any{"name": name}
	}

	session, err := s.auth.SignUp(ctx, input)
	if err != nil {
		if errors.Is(err, ErrDependencyUnavailable) {
			return user.Identity{}, err
		}
		return user.Identity{}, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	if session.Identity.IsZero() {
		return user.Identity{}, ErrNoIdentityReturned
	}
	if session.Identity.Name == "" {
		session.Identity.Name = name
	}

	s.establish(ctx, session)
	return session.Identity, nil
}

// Logout always clears the local session, even when the sign-out call fails.
func (s *SessionService) Logout(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Logout")
	defer span.End()

	s.mu.Lock()
	var token string
	if s.current != nil {
		token = s.current.AccessToken
	}
	s.current = nil
	s.mu.Unlock()

	var signOutErr error
	if token != "" {
		if err := s.auth.SignOut(ctx, token); err != nil {
			signOutErr = fmt.Errorf("%w: %w", ErrSignOutFailed, err)
		}
	}

	s.clearPersisted(ctx)
	return signOutErr
}

func (s *SessionService) CurrentIdentity() (user.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return user.Identity{}, false
	}
	return s.current.Identity, true
}

type boundTokenKey struct{}

// Bind pins ctx to the current session. Store calls and invalidations made
// under the returned context keep referring to that session after a re-login.
func (s *SessionService) Bind(ctx context.Context) (context.Context, user.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ctx, user.Identity{}, false
	}
	return context.WithValue(ctx, boundTokenKey{}, s.current.AccessToken), s.current.Identity, true
}

func boundToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(boundTokenKey{}).(string)
	return token, ok
}

// AccessToken returns the token ctx was bound to, else the token of the
// current session, or "" when signed out.
func (s *SessionService) AccessToken(ctx context.Context) string {
	if token, ok := boundToken(ctx); ok {
		return token
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.AccessToken
}

// Restore loads the persisted session at startup.
func (s *SessionService) Restore(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Restore")
	defer span.End()

	session, ok, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load persisted session: %w", err)
	}
	if !ok || session.Identity.IsZero() {
		return nil
	}

	if s.revalidate {
		if s.tokenExpired(session) {
			s.logger.InfoContext(ctx, "discarding expired persisted session", "user_id", session.Identity.ID)
			s.clearPersisted(ctx)
			return nil
		}

		identity, err := s.auth.GetIdentity(ctx, session.AccessToken)
		switch {
		case err == nil:
			session.Identity = mergeIdentity(session.Identity, identity)
			s.establish(ctx, session)
			return nil
		case errors.Is(err, ErrDependencyUnavailable):
			s.logger.WarnContext(ctx, "session revalidation unavailable, keeping persisted session",
				"user_id", session.Identity.ID,
				"error", err,
			)
		default:
			s.logger.InfoContext(ctx, "persisted session rejected by store", "user_id", session.Identity.ID, "error", err)
			s.clearPersisted(ctx)
			return nil
		}
	}

	s.mu.Lock()
	s.current = &session
	s.mu.Unlock()
	return nil
}

// Invalidate drops the session after the store refused its token. A refusal
// of a token other than the current one is ignored.
func (s *SessionService) Invalidate(ctx context.Context, cause error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	if token, ok := boundToken(ctx); ok && token != s.current.AccessToken {
		s.mu.Unlock()
		s.logger.InfoContext(ctx, "ignoring refusal of a replaced session", "error", cause)
		return
	}
	userID := s.current.Identity.ID
	s.current = nil
	s.mu.Unlock()

	s.logger.WarnContext(ctx, "session invalidated", "user_id", userID, "error", cause)
	s.clearPersisted(ctx)
}

// establish replaces the current session. A replaced token is signed out.
func (s *SessionService) establish(ctx context.Context, session user.Session) {
	s.mu.Lock()
	var replaced string
	if s.current != nil && s.current.AccessToken != session.AccessToken {
		replaced = s.current.AccessToken
	}
	s.current = &session
	s.mu.Unlock()

	if err := s.store.Save(ctx, session); err != nil {
		s.logger.WarnContext(ctx, "persist session failed", "user_id", session.Identity.ID, "error", err)
	}
	if replaced != "" {
		if err := s.auth.SignOut(ctx, replaced); err != nil {
			s.logger.WarnContext(ctx, "sign out of replaced session failed", "error", err)
		}
	}
}

func (s *SessionService) clearPersisted(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "clear persisted session failed", "error", err)
	}
}

// tokenExpired checks the recorded expiry and the unverified exp claim of the access token.
func (s *SessionService) tokenExpired(session user.Session) bool {
	now := s.now()
	if session.Expired(now) {
		return true
	}
	if session.AccessToken == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(session.AccessToken, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}

func mergeIdentity(persisted, fresh user.Identity) user.Identity {
	if fresh.ID == "" {
		return persisted
	}
	if fresh.Name == "" {
		fresh.Name = persisted.Name
	}
	if fresh.Email == "" {
		fresh.Email = persisted.Email
	}
	return fresh
}
