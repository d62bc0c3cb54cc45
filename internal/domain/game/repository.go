package game

import "context"

// Repository describes game persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Game, error)
	ListByCompetition(ctx context.Context, competitionID string) ([]Game, error)
	GetByID(ctx context.Context, id string) (Game, bool, error)
	Create(ctx context.Context, item Game) (Game, error)
	Update(ctx context.Context, id string, patch Patch) (Game, error)
	Delete(ctx context.Context, id string) error
}
