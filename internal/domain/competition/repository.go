package competition

import "context"

// Repository describes competition persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Competition, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Competition, error)
	GetByID(ctx context.Context, id string) (Competition, bool, error)
	Create(ctx context.Context, item Competition) (Competition, error)
	Update(ctx context.Context, id string, patch Patch) (Competition, error)
	Delete(ctx context.Context, id string) error
}
