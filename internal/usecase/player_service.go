package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/competition-manager/internal/domain/player"
)

type PlayerService struct {
	ownerGuard
	players player.Repository
}

func NewPlayerService(players player.Repository, sessions IdentityProvider) *PlayerService {
	return &PlayerService{
		ownerGuard: ownerGuard{sessions: sessions},
		players:    players,
	}
}

func (s *PlayerService) ListAll(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.ListAll")
	defer span.End()

	if _, err := s.owner(); err != nil {
		return nil, err
	}
	items, err := s.players.List(ctx)
	if err != nil {
		return nil, s.observe(ctx, fmt.Errorf("list players: %w", err))
	}
	return items, nil
}

func (s *PlayerService) ListMine(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.ListMine")
	defer span.End()

	ownerID, err := s.owner()
	if err != nil {
		return nil, err
	}
	items, err := s.players.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.observe(ctx, fmt.Errorf("list players by owner: %w", err))
	}
	return items, nil
}

func (s *PlayerService) Create(ctx context.Context, item player.Player) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Create")
	defer span.End()

	ownerID, err := s.owner()
	if err != nil {
		return player.Player{}, err
	}
	item.ID = ""
	item.UserID = ownerID
	item.Name = strings.TrimSpace(item.Name)
	item.Nickname = strings.TrimSpace(item.Nickname)
	item.Phone = strings.TrimSpace(item.Phone)
	if err := item.Validate(); err != nil {
		return player.Player{}, invalidEntity(err)
	}

	created, err := s.players.Create(ctx, item)
	if err != nil {
		return player.Player{}, s.observe(ctx, fmt.Errorf("create player: %w", err))
	}
	return created, nil
}

func (s *PlayerService) Update(ctx context.Context, id string, patch player.Patch) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Update")
	defer span.End()

	ownerID, err := s.owner()
	if err != nil {
		return player.Player{}, err
	}
	current, exists, err := s.owned(ctx, id, ownerID)
	if err != nil {
		return player.Player{}, err
	}
	if !exists {
		return player.Player{}, fmt.Errorf("%w: player=%s", ErrNotFound, id)
	}
	patch = patch.Trimmed()
	if err := patch.Apply(current).Validate(); err != nil {
		return player.Player{}, invalidEntity(err)
	}

	updated, err := s.players.Update(ctx, current.ID, patch)
	if err != nil {
		return player.Player{}, s.observe(ctx, fmt.Errorf("update player: %w", err))
	}
	return updated, nil
}

func (s *PlayerService) Delete(ctx context.Context, id string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Delete")
	defer span.End()

	ownerID, err := s.owner()
	if err != nil {
		return err
	}
	current, exists, err := s.owned(ctx, id, ownerID)
	if err != nil || !exists {
		return err
	}
	if err := s.players.Delete(ctx, current.ID); err != nil {
		return s.observe(ctx, fmt.Errorf("delete player: %w", err))
	}
	return nil
}

func (s *PlayerService) owned(ctx context.Context, id, ownerID string) (player.Player, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return player.Player{}, false, ErrMissingID
	}
	item, exists, err := s.players.GetByID(ctx, id)
	if err != nil {
		return player.Player{}, false, s.observe(ctx, fmt.Errorf("get player: %w", err))
	}
	if !exists {
		return player.Player{}, false, nil
	}
	if item.UserID != ownerID {
		return player.Player{}, true, fmt.Errorf("%w: player=%s", ErrForbidden, id)
	}
	return item, true, nil
}
