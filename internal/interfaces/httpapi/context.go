package httpapi

import (
	"context"

	"github.com/riskibarqy/competition-manager/internal/domain/user"
)

type contextKey string

const identityContextKey contextKey = "session_identity"

func withIdentity(ctx context.Context, identity user.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func identityFromContext(ctx context.Context) (user.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(user.Identity)
	return identity, ok
}
