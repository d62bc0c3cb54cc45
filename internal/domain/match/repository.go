package match

import "context"

// Repository describes match persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Match, error)
	ListByGame(ctx context.Context, gameID string) ([]Match, error)
	GetByID(ctx context.Context, id string) (Match, bool, error)
	Create(ctx context.Context, item Match) (Match, error)
	Update(ctx context.Context, id string, patch Patch) (Match, error)
	Delete(ctx context.Context, id string) error
}
