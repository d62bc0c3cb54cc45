package user

import (
	"strings"
	"time"
)

// Identity is the authenticated user as reported by the auth provider.
type Identity struct {
	ID    string
	Email string
	Name  string
}

func (i Identity) IsZero() bool {
	return strings.TrimSpace(i.ID) == ""
}

// Session is the state held for the signed-in user of this process.
type Session struct {
	Identity     Identity
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the session carries an expiry that has passed at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Credentials struct {
	Email    string
	Password string
}

type SignUpInput struct {
	Email    string
	Password string
	Metadata map[string]any
}
