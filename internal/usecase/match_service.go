package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/competition-manager/internal/domain/competition"
	"github.com/riskibarqy/competition-manager/internal/domain/game"
	"github.com/riskibarqy/competition-manager/internal/domain/match"
)

// MatchService scopes matches through game and competition.
type MatchService struct {
	ownerGuard
	matches      match.Repository
	games        game.Repository
	competitions competition.Repository
}

func NewMatchService(matches match.Repository, games game.Repository, competitions competition.Repository, sessions IdentityProvider) *MatchService {
	return &MatchService{
		ownerGuard:   ownerGuard{sessions: sessions},
		matches:      matches,
		games:        games,
		competitions: competitions,
	}
}

func (s *MatchService) ListAll(ctx context.Context) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListAll")
	defer span.End()

	if _, err := s.owner(); err != nil {
		return nil, err
	}
	items, err := s.matches.List(ctx)
	if err != nil {
		return nil, s.observe(ctx, fmt.Errorf("list matches: %w", err))
	}
	return items, nil
}

func (s *MatchService) ListByGame(ctx context.Context, gameID string) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListByGame")
	defer span.End()

	parent, err := s.game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	items, err := s.matches.ListByGame(ctx, parent.ID)
	if err != nil {
		return nil, s.observe(ctx, fmt.Errorf("list matches by game: %w", err))
	}
	return items, nil
}

func (s *MatchService) Create(ctx context.Context, item match.Match) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Create")
	defer span.End()

	parent, err := s.game(ctx, item.GameID)
	if err != nil {
		return match.Match{}, err
	}
	item.ID = ""
	item.GameID = parent.ID
	if err := item.Validate(); err != nil {
		return match.Match{}, invalidEntity(err)
	}
	if err := checkWinner(parent, item.WinnerID); err != nil {
		return match.Match{}, err
	}

	created, err := s.matches.Create(ctx, item)
	if err != nil {
		return match.Match{}, s.observe(ctx, fmt.Errorf("create match: %w", err))
	}
	return created, nil
}

func (s *MatchService) Update(ctx context.Context, id string, patch match.Patch) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Update")
	defer span.End()

	current, parent, exists, err := s.owned(ctx, id)
	if err != nil {
		return match.Match{}, err
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, id)
	}
	patch = patch.Trimmed()
	merged := patch.Apply(current)
	if err := merged.Validate(); err != nil {
		return match.Match{}, invalidEntity(err)
	}
	if err := checkWinner(parent, merged.WinnerID); err != nil {
		return match.Match{}, err
	}

	updated, err := s.matches.Update(ctx, current.ID, patch)
	if err != nil {
		return match.Match{}, s.observe(ctx, fmt.Errorf("update match: %w", err))
	}
	return updated, nil
}

func (s *MatchService) Delete(ctx context.Context, id string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Delete")
	defer span.End()

	current, _, exists, err := s.owned(ctx, id)
	if err != nil || !exists {
		return err
	}
	if err := s.matches.Delete(ctx, current.ID); err != nil {
		return s.observe(ctx, fmt.Errorf("delete match: %w", err))
	}
	return nil
}

func (s *MatchService) game(ctx context.Context, gameID string) (game.Game, error) {
	ownerID, err := s.owner()
	if err != nil {
		return game.Game{}, err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return game.Game{}, fmt.Errorf("%w: game id", ErrMissingID)
	}
	parent, exists, err := ownedGame(ctx, s.ownerGuard, s.games, s.competitions, gameID, ownerID)
	if err != nil {
		return game.Game{}, err
	}
	if !exists {
		return game.Game{}, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
	}
	return parent, nil
}

func (s *MatchService) owned(ctx context.Context, id string) (match.Match, game.Game, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return match.Match{}, game.Game{}, false, ErrMissingID
	}
	if _, err := s.owner(); err != nil {
		return match.Match{}, game.Game{}, false, err
	}
	item, exists, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return match.Match{}, game.Game{}, false, s.observe(ctx, fmt.Errorf("get match: %w", err))
	}
	if !exists {
		return match.Match{}, game.Game{}, false, nil
	}
	parent, err := s.game(ctx, item.GameID)
	if errors.Is(err, ErrNotFound) {
		return match.Match{}, game.Game{}, true, fmt.Errorf("%w: match=%s", ErrForbidden, id)
	}
	if err != nil {
		return match.Match{}, game.Game{}, true, err
	}
	return item, parent, true, nil
}

func checkWinner(parent game.Game, winnerID string) error {
	if winnerID == "" {
		return nil
	}
	if winnerID != parent.PlayerOneID && winnerID != parent.PlayerTwoID {
		return fmt.Errorf("%w: match winner must be a player of game %s", ErrInvalidInput, parent.ID)
	}
	return nil
}
