package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/competition-manager/internal/domain/competition"
	"github.com/riskibarqy/competition-manager/internal/domain/fielderr"
	"github.com/riskibarqy/competition-manager/internal/domain/user"
)

// IdentityProvider exposes the signed-in identity to entity services.
type IdentityProvider interface {
	CurrentIdentity() (user.Identity, bool)
	Invalidate(ctx context.Context, cause error)
}

type ownerGuard struct {
	sessions IdentityProvider
}

func (g ownerGuard) owner() (string, error) {
	if g.sessions == nil {
		return "", fmt.Errorf("%w: no session", ErrUnauthorized)
	}
	identity, ok := g.sessions.CurrentIdentity()
	if !ok || identity.IsZero() {
		return "", fmt.Errorf("%w: sign in required", ErrUnauthorized)
	}
	return identity.ID, nil
}

// observe invalidates the session when the store refused its token.
func (g ownerGuard) observe(ctx context.Context, err error) error {
	if err != nil && g.sessions != nil && errors.Is(err, ErrUnauthorized) {
		g.sessions.Invalidate(ctx, err)
	}
	return err
}

// ownedCompetition loads a competition and checks it belongs to ownerID.
func (g ownerGuard) ownedCompetition(ctx context.Context, repo competition.Repository, id, ownerID string) (competition.Competition, bool, error) {
	item, exists, err := repo.GetByID(ctx, id)
	if err != nil {
		return competition.Competition{}, false, g.observe(ctx, fmt.Errorf("get competition: %w", err))
	}
	if !exists {
		return competition.Competition{}, false, nil
	}
	if item.UserID != ownerID {
		return competition.Competition{}, true, fmt.Errorf("%w: competition=%s", ErrForbidden, id)
	}
	return item, true, nil
}

// invalidEntity turns a domain validation failure into a ValidationError on
// the offending column.
func invalidEntity(err error) error {
	var fe *fielderr.Error
	if errors.As(err, &fe) {
		return &ValidationError{Field: fe.Field, Reason: fe.Reason}
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
