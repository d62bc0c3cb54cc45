package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/competition-manager/internal/domain/user"
	"github.com/riskibarqy/competition-manager/internal/usecase"
)

// AuthClient is a user.Authenticator backed by GoTrue.
type AuthClient struct {
	*client
	now func() time.Time
}

var _ user.Authenticator = (*AuthClient)(nil)

type passwordRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

type userResponse struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type sessionResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int64         `json:"expires_in"`
	ExpiresAt    int64         `json:"expires_at"`
	User         *userResponse `json:"user"`

	// Sign-up with email confirmation answers with the bare user object.
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func NewAuthClient(cfg ClientConfig) (*AuthClient, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &AuthClient{client: c, now: time.Now}, nil
}

func (c *AuthClient) SignUp(ctx context.Context, input user.SignUpInput) (user.Session, error) {
	raw, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   passwordRequest{Email: input.Email, Password: input.Password, Data: input.Metadata},
	})
	if err != nil {
		return user.Session{}, err
	}
	return c.decodeSession(raw)
}

func (c *AuthClient) SignInWithPassword(ctx context.Context, credentials user.Credentials) (user.Session, error) {
	raw, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   passwordRequest{Email: credentials.Email, Password: credentials.Password},
	})
	if err != nil {
		return user.Session{}, err
	}
	return c.decodeSession(raw)
}

func (c *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return fmt.Errorf("%w: access token is required", usecase.ErrUnauthorized)
	}
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/logout",
		token:  accessToken,
	})
	return err
}

func (c *AuthClient) GetIdentity(ctx context.Context, accessToken string) (user.Identity, error) {
	if strings.TrimSpace(accessToken) == "" {
		return user.Identity{}, fmt.Errorf("%w: access token is required", usecase.ErrUnauthorized)
	}
	raw, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/auth/v1/user",
		token:  accessToken,
	})
	if err != nil {
		return user.Identity{}, err
	}

	var decoded userResponse
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return user.Identity{}, crerr.Wrap(err, "decode gotrue user")
	}
	return decoded.identity(), nil
}

func (c *AuthClient) decodeSession(raw []byte) (user.Session, error) {
	var decoded sessionResponse
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		return user.Session{}, crerr.Wrap(err, "decode gotrue session")
	}

	identity := userResponse{ID: decoded.ID, Email: decoded.Email, UserMetadata: decoded.UserMetadata}.identity()
	if decoded.User != nil {
		identity = decoded.User.identity()
	}
	session := user.Session{
		Identity:     identity,
		AccessToken:  decoded.AccessToken,
		RefreshToken: decoded.RefreshToken,
	}
	switch {
	case decoded.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(decoded.ExpiresAt, 0).UTC()
	case decoded.ExpiresIn > 0:
		session.ExpiresAt = c.now().UTC().Add(time.Duration(decoded.ExpiresIn) * time.Second)
	}
	return session, nil
}

func (u userResponse) identity() user.Identity {
	name, _ := u.UserMetadata["name"].(string)
	if name == "" {
		name, _ = u.UserMetadata["full_name"].(string)
	}
	return user.Identity{
		ID:    strings.TrimSpace(u.ID),
		Email: strings.TrimSpace(u.Email),
		Name:  strings.TrimSpace(name),
	}
}
