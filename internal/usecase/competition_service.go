package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/competition-manager/internal/domain/competition"
	"github.com/riskibarqy/competition-manager/internal/domain/game"
	"github.com/riskibarqy/competition-manager/internal/domain/match"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const defaultCascadeWorkers = 4

type CompetitionService struct {
	ownerGuard
	competitions   competition.Repository
	games          game.Repository
	matches        match.Repository
	cascadeWorkers int
}

// GameDetail is a game together with its matches.
type GameDetail struct {
	Game    game.Game
	Matches []match.Match
}

type CompetitionDetail struct {
	Competition competition.Competition
	Games       []GameDetail
}

func NewCompetitionService(
	competitions competition.Repository,
	games game.Repository,
	matches match.Repository,
	sessions IdentityProvider,
	cascadeWorkers int,
) *CompetitionService {
	if cascadeWorkers < 1 {
		cascadeWorkers = defaultCascadeWorkers
	}
	return &CompetitionService{
		ownerGuard:     ownerGuard{sessions: sessions},
		competitions:   competitions,
		games:          games,
		matches:        matches,
		cascadeWorkers: cascadeWorkers,
	}
}

// ListAll returns every competition regardless of owner.
func (s *CompetitionService) ListAll(ctx context.Context) ([]competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.ListAll")
	defer span.End()

	if _, err := s.owner(); err != nil {
		return nil, err
	}
	items, err := s.competitions.List(ctx)
	if err != nil {
		return nil, s.observe(ctx, fmt.Errorf("list competitions: %w", err))
	}
	return items, nil
}

func (s *CompetitionService) ListMine(ctx context.Context) ([]competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.ListMine")
	defer span.End()

	ownerID, err := s.owner()
	if err != nil {
		return nil, err
	}
	items, err := s.competitions.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.observe(ctx, fmt.Errorf("list competitions by owner: %w", err))
	}
	return items, nil
}

func (s *CompetitionService) Get(ctx context.Context, id string) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.Get")
	defer span.End()

	ownerID, err := s.owner()
	if err != nil {
		return competition.Competition{}, err
	}
	return s.load(ctx, id, ownerID)
}

// Detail returns a competition with its games and their matches.
func (s *CompetitionService) Detail(ctx context.Context, id string) (CompetitionDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.Detail")
	defer span.End()

	ownerID, err := s.owner()
	if err != nil {
		return CompetitionDetail{}, err
	}
	item, err := s.load(ctx, id, ownerID)
	if err != nil {
		return CompetitionDetail{}, err
	}

	games, err := s.games.ListByCompetition(ctx, item.ID)
	if err != nil {
		return CompetitionDetail{}, s.observe(ctx, fmt.Errorf("list games by competition: %w", err))
	}

	type gameMatches struct {
		gameID  string
		matches []match.Match
	}
	p := pool.NewWithResults[gameMatches]().
		WithMaxGoroutines(s.cascadeWorkers).
		WithErrors().
		WithContext(ctx).
		WithCancelOnError()
	for _, g := range games {
		gameID := g.ID
		p.Go(func(ctx context.Context) (gameMatches, error) {
			matches, err := s.matches.ListByGame(ctx, gameID)
			if err != nil {
				return gameMatches{}, fmt.Errorf("list matches by game %s: %w", gameID, err)
			}
			return gameMatches{gameID: gameID, matches: matches}, nil
		})
	}
	results, err := p.Wait()
	if err != nil {
		return CompetitionDetail{}, s.observe(ctx, err)
	}

	byGame := make(map[string][]match.Match, len(results))
	for _, r := range results {
		byGame[r.gameID] = r.matches
	}
	detail := CompetitionDetail{Competition: item, Games: make([]GameDetail, 0, len(games))}
	for _, g := range games {
		matches := byGame[g.ID]
		if matches == nil {
			matches = []match.Match{}
		}
		detail.Games = append(detail.Games, GameDetail{Game: g, Matches: matches})
	}
	return detail, nil
}

// Create stores a new pending competition owned by the signed-in user.
func (s *CompetitionService) Create(ctx context.Context, item competition.Competition) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.Create")
	defer span.End()

	ownerID, err := s.owner()
	if err != nil {
		return competition.Competition{}, err
	}
	item.ID = ""
	item.UserID = ownerID
	item.Status = competition.StatusPending
	item.Name = strings.TrimSpace(item.Name)
	item.Location = strings.TrimSpace(item.Location)
	item.StartDate = strings.TrimSpace(item.StartDate)
	item.EndDate = strings.TrimSpace(item.EndDate)
	if err := item.Validate(); err != nil {
		return competition.Competition{}, invalidEntity(err)
	}

	created, err := s.competitions.Create(ctx, item)
	if err != nil {
		return competition.Competition{}, s.observe(ctx, fmt.Errorf("create competition: %w", err))
	}
	return created, nil
}

// Update edits fields other than status.
func (s *CompetitionService) Update(ctx context.Context, id string, patch competition.Patch) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.Update")
	defer span.End()

	if patch.Status != nil {
		return competition.Competition{}, fmt.Errorf("%w: status changes go through the status endpoint", ErrInvalidStatusTransition)
	}
	ownerID, err := s.owner()
	if err != nil {
		return competition.Competition{}, err
	}
	current, err := s.load(ctx, id, ownerID)
	if err != nil {
		return competition.Competition{}, err
	}
	patch = patch.Trimmed()
	if err := patch.Apply(current).Validate(); err != nil {
		return competition.Competition{}, invalidEntity(err)
	}

	updated, err := s.competitions.Update(ctx, current.ID, patch)
	if err != nil {
		return competition.Competition{}, s.observe(ctx, fmt.Errorf("update competition: %w", err))
	}
	return updated, nil
}

// ChangeStatus moves a competition one step forward to the given status.
func (s *CompetitionService) ChangeStatus(ctx context.Context, id string, to competition.Status) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.ChangeStatus",
		attribute.String("competition.id", id),
		attribute.String("competition.status", string(to)),
	)
	defer span.End()

	ownerID, err := s.owner()
	if err != nil {
		return competition.Competition{}, err
	}
	current, err := s.load(ctx, id, ownerID)
	if err != nil {
		return competition.Competition{}, err
	}
	return s.transition(ctx, current, to)
}

// Advance moves a competition to its next status.
func (s *CompetitionService) Advance(ctx context.Context, id string) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.Advance")
	defer span.End()

	ownerID, err := s.owner()
	if err != nil {
		return competition.Competition{}, err
	}
	current, err := s.load(ctx, id, ownerID)
	if err != nil {
		return competition.Competition{}, err
	}
	next, ok := current.Status.Next()
	if !ok {
		return competition.Competition{}, fmt.Errorf("%w: competition=%s is already %s", ErrInvalidStatusTransition, current.ID, current.Status)
	}
	return s.transition(ctx, current, next)
}

// Delete removes a competition. With cascade its games and matches are removed first.
func (s *CompetitionService) Delete(ctx context.Context, id string, cascade bool) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.Delete",
		attribute.String("competition.id", id),
		attribute.Bool("competition.cascade", cascade),
	)
	defer span.End()

	ownerID, err := s.owner()
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrMissingID
	}
	item, exists, err := s.ownedCompetition(ctx, s.competitions, id, ownerID)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	if cascade {
		if err := s.deleteChildren(ctx, item.ID); err != nil {
			return s.observe(ctx, err)
		}
	}
	if err := s.competitions.Delete(ctx, item.ID); err != nil {
		return s.observe(ctx, fmt.Errorf("delete competition: %w", err))
	}
	return nil
}

func (s *CompetitionService) transition(ctx context.Context, current competition.Competition, to competition.Status) (competition.Competition, error) {
	if !competition.CanTransition(current.Status, to) {
		return competition.Competition{}, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current.Status, to)
	}
	updated, err := s.competitions.Update(ctx, current.ID, competition.Patch{Status: &to})
	if err != nil {
		return competition.Competition{}, s.observe(ctx, fmt.Errorf("update competition status: %w", err))
	}
	return updated, nil
}

func (s *CompetitionService) load(ctx context.Context, id, ownerID string) (competition.Competition, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return competition.Competition{}, ErrMissingID
	}
	item, exists, err := s.ownedCompetition(ctx, s.competitions, id, ownerID)
	if err != nil {
		return competition.Competition{}, err
	}
	if !exists {
		return competition.Competition{}, fmt.Errorf("%w: competition=%s", ErrNotFound, id)
	}
	return item, nil
}

func (s *CompetitionService) deleteChildren(ctx context.Context, competitionID string) error {
	games, err := s.games.ListByCompetition(ctx, competitionID)
	if err != nil {
		return fmt.Errorf("list games for cascade: %w", err)
	}
	if len(games) == 0 {
		return nil
	}

	workers, err := ants.NewPool(s.cascadeWorkers)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer workers.Release()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, g := range games {
		gameID := g.ID
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()
			if err := s.deleteGame(ctx, gameID); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}); err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("submit cascade task: %w", err))
			mu.Unlock()
		}
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (s *CompetitionService) deleteGame(ctx context.Context, gameID string) error {
	matches, err := s.matches.ListByGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("list matches for cascade game=%s: %w", gameID, err)
	}
	for _, m := range matches {
		if err := s.matches.Delete(ctx, m.ID); err != nil {
			return fmt.Errorf("delete match %s: %w", m.ID, err)
		}
	}
	if err := s.games.Delete(ctx, gameID); err != nil {
		return fmt.Errorf("delete game %s: %w", gameID, err)
	}
	return nil
}
