package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/riskibarqy/competition-manager/internal/domain/user"
	"github.com/riskibarqy/competition-manager/internal/platform/id"
	"github.com/riskibarqy/competition-manager/internal/usecase"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = time.Hour

type account struct {
	identity     user.Identity
	passwordHash []byte
}

type tokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator issues HS256 access tokens for accounts kept in memory.
type Authenticator struct {
	mu       sync.RWMutex
	accounts map[string]account
	revoked  map[string]struct{}
	secret   []byte
	ttl      time.Duration
	ids      id.Generator
	now      func() time.Time
}

var _ user.Authenticator = (*Authenticator)(nil)

func NewAuthenticator(secret string, ids id.Generator) (*Authenticator, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("memory auth secret is required")
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &Authenticator{
		accounts: make(map[string]account),
		revoked:  make(map[string]struct{}),
		secret:   []byte(secret),
		ttl:      defaultTokenTTL,
		ids:      ids,
		now:      time.Now,
	}, nil
}

func (a *Authenticator) SignUp(ctx context.Context, input user.SignUpInput) (user.Session, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return user.Session{}, fmt.Errorf("%w: email and password are required", usecase.ErrInvalidInput)
	}
	if len(input.Password) < 6 {
		return user.Session{}, fmt.Errorf("%w: password should be at least 6 characters", usecase.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return user.Session{}, fmt.Errorf("%w: hash password: %v", usecase.ErrInvalidInput, err)
	}
	userID, err := a.ids.NewID()
	if err != nil {
		return user.Session{}, fmt.Errorf("%w: generate user id: %v", usecase.ErrDependencyUnavailable, err)
	}

	name, _ := input.Metadata["name"].(string)
	identity := user.Identity{ID: userID, Email: email, Name: strings.TrimSpace(name)}

	a.mu.Lock()
	if _, exists := a.accounts[email]; exists {
		a.mu.Unlock()
		return user.Session{}, fmt.Errorf("%w: user already registered", usecase.ErrInvalidInput)
	}
	a.accounts[email] = account{identity: identity, passwordHash: hash}
	a.mu.Unlock()

	return a.issue(identity)
}

func (a *Authenticator) SignInWithPassword(ctx context.Context, credentials user.Credentials) (user.Session, error) {
	email := normalizeEmail(credentials.Email)

	a.mu.RLock()
	acc, ok := a.accounts[email]
	a.mu.RUnlock()
	if !ok {
		return user.Session{}, fmt.Errorf("%w: invalid login credentials", usecase.ErrInvalidInput)
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(credentials.Password)); err != nil {
		return user.Session{}, fmt.Errorf("%w: invalid login credentials", usecase.ErrInvalidInput)
	}

	return a.issue(acc.identity)
}

func (a *Authenticator) SignOut(ctx context.Context, accessToken string) error {
	claims, err := a.parse(accessToken)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.revoked[claims.ID] = struct{}{}
	a.mu.Unlock()
	return nil
}

func (a *Authenticator) GetIdentity(ctx context.Context, accessToken string) (user.Identity, error) {
	claims, err := a.parse(accessToken)
	if err != nil {
		return user.Identity{}, err
	}

	a.mu.RLock()
	acc, ok := a.accounts[claims.Email]
	a.mu.RUnlock()
	if !ok || acc.identity.ID != claims.Subject {
		return user.Identity{}, fmt.Errorf("%w: user not found", usecase.ErrUnauthorized)
	}
	return acc.identity, nil
}

func (a *Authenticator) issue(identity user.Identity) (user.Session, error) {
	tokenID, err := a.ids.NewID()
	if err != nil {
		return user.Session{}, fmt.Errorf("%w: generate token id: %v", usecase.ErrDependencyUnavailable, err)
	}
	refresh, err := a.ids.NewID()
	if err != nil {
		return user.Session{}, fmt.Errorf("%w: generate refresh token: %v", usecase.ErrDependencyUnavailable, err)
	}

	issuedAt := a.now().UTC()
	expiresAt := issuedAt.Add(a.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return user.Session{}, fmt.Errorf("%w: sign token: %v", usecase.ErrDependencyUnavailable, err)
	}

	return user.Session{
		Identity:     identity,
		AccessToken:  signed,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

func (a *Authenticator) parse(accessToken string) (*tokenClaims, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, fmt.Errorf("%w: access token is required", usecase.ErrUnauthorized)
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(accessToken, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token is expired", usecase.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: invalid token: %v", usecase.ErrUnauthorized, err)
	}

	a.mu.RLock()
	_, revoked := a.revoked[claims.ID]
	a.mu.RUnlock()
	if revoked {
		return nil, fmt.Errorf("%w: session has been revoked", usecase.ErrUnauthorized)
	}
	return claims, nil
}

func normalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
