package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Player, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Player, error)
	GetByID(ctx context.Context, id string) (Player, bool, error)
	Create(ctx context.Context, item Player) (Player, error)
	Update(ctx context.Context, id string, patch Patch) (Player, error)
	Delete(ctx context.Context, id string) error
}
