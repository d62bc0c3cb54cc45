package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/competition-manager/internal/domain/competition"
	"github.com/riskibarqy/competition-manager/internal/domain/game"
)

// GameService scopes games through the competition they belong to.
type GameService struct {
	ownerGuard
	games        game.Repository
	competitions competition.Repository
}

func NewGameService(games game.Repository, competitions competition.Repository, sessions IdentityProvider) *GameService {
	return &GameService{
		ownerGuard:   ownerGuard{sessions: sessions},
		games:        games,
		competitions: competitions,
	}
}

func (s *GameService) ListAll(ctx context.Context) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.ListAll")
	defer span.End()

	if _, err := s.owner(); err != nil {
		return nil, err
	}
	items, err := s.games.List(ctx)
	if err != nil {
		return nil, s.observe(ctx, fmt.Errorf("list games: %w", err))
	}
	return items, nil
}

func (s *GameService) ListByCompetition(ctx context.Context, competitionID string) ([]game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.ListByCompetition")
	defer span.End()

	if _, err := s.competition(ctx, competitionID); err != nil {
		return nil, err
	}
	items, err := s.games.ListByCompetition(ctx, strings.TrimSpace(competitionID))
	if err != nil {
		return nil, s.observe(ctx, fmt.Errorf("list games by competition: %w", err))
	}
	return items, nil
}

func (s *GameService) Create(ctx context.Context, item game.Game) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Create")
	defer span.End()

	parent, err := s.competition(ctx, item.CompetitionID)
	if err != nil {
		return game.Game{}, err
	}
	item.ID = ""
	item.CompetitionID = parent.ID
	if err := item.Validate(); err != nil {
		return game.Game{}, invalidEntity(err)
	}

	created, err := s.games.Create(ctx, item)
	if err != nil {
		return game.Game{}, s.observe(ctx, fmt.Errorf("create game: %w", err))
	}
	return created, nil
}

func (s *GameService) Update(ctx context.Context, id string, patch game.Patch) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Update")
	defer span.End()

	current, exists, err := s.owned(ctx, id)
	if err != nil {
		return game.Game{}, err
	}
	if !exists {
		return game.Game{}, fmt.Errorf("%w: game=%s", ErrNotFound, id)
	}
	patch = patch.Trimmed()
	if err := patch.Apply(current).Validate(); err != nil {
		return game.Game{}, invalidEntity(err)
	}

	updated, err := s.games.Update(ctx, current.ID, patch)
	if err != nil {
		return game.Game{}, s.observe(ctx, fmt.Errorf("update game: %w", err))
	}
	return updated, nil
}

func (s *GameService) Delete(ctx context.Context, id string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Delete")
	defer span.End()

	current, exists, err := s.owned(ctx, id)
	if err != nil || !exists {
		return err
	}
	if err := s.games.Delete(ctx, current.ID); err != nil {
		return s.observe(ctx, fmt.Errorf("delete game: %w", err))
	}
	return nil
}

// competition loads the parent competition and requires it to belong to the caller.
func (s *GameService) competition(ctx context.Context, competitionID string) (competition.Competition, error) {
	ownerID, err := s.owner()
	if err != nil {
		return competition.Competition{}, err
	}
	competitionID = strings.TrimSpace(competitionID)
	if competitionID == "" {
		return competition.Competition{}, fmt.Errorf("%w: competition id", ErrMissingID)
	}
	parent, exists, err := s.ownedCompetition(ctx, s.competitions, competitionID, ownerID)
	if err != nil {
		return competition.Competition{}, err
	}
	if !exists {
		return competition.Competition{}, fmt.Errorf("%w: competition=%s", ErrNotFound, competitionID)
	}
	return parent, nil
}

// owned loads a game whose competition belongs to the caller.
func (s *GameService) owned(ctx context.Context, id string) (game.Game, bool, error) {
	ownerID, err := s.owner()
	if err != nil {
		return game.Game{}, false, err
	}
	return ownedGame(ctx, s.ownerGuard, s.games, s.competitions, id, ownerID)
}

func ownedGame(
	ctx context.Context,
	guard ownerGuard,
	games game.Repository,
	competitions competition.Repository,
	id, ownerID string,
) (game.Game, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return game.Game{}, false, ErrMissingID
	}
	item, exists, err := games.GetByID(ctx, id)
	if err != nil {
		return game.Game{}, false, guard.observe(ctx, fmt.Errorf("get game: %w", err))
	}
	if !exists {
		return game.Game{}, false, nil
	}
	_, parentExists, err := guard.ownedCompetition(ctx, competitions, item.CompetitionID, ownerID)
	if err != nil {
		return game.Game{}, true, err
	}
	if !parentExists {
		// Orphaned rows are only reachable through the unscoped list.
		return game.Game{}, true, fmt.Errorf("%w: game=%s", ErrForbidden, id)
	}
	return item, true, nil
}
