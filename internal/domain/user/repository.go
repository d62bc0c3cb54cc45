package user

import "context"

// Authenticator is the auth API of the remote data store.
type Authenticator interface {
	SignUp(ctx context.Context, input SignUpInput) (Session, error)
	SignInWithPassword(ctx context.Context, credentials Credentials) (Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetIdentity(ctx context.Context, accessToken string) (Identity, error)
}

// SessionStore persists the current session across restarts.
type SessionStore interface {
	Load(ctx context.Context) (Session, bool, error)
	Save(ctx context.Context, session Session) error
	Clear(ctx context.Context) error
}
