package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/riskibarqy/competition-manager/internal/domain/competition"
	"github.com/riskibarqy/competition-manager/internal/domain/game"
	"github.com/riskibarqy/competition-manager/internal/domain/match"
	"github.com/riskibarqy/competition-manager/internal/domain/user"
	competitionmock "github.com/riskibarqy/competition-manager/internal/mocks/domain/competition"
	gamemock "github.com/riskibarqy/competition-manager/internal/mocks/domain/game"
	matchmock "github.com/riskibarqy/competition-manager/internal/mocks/domain/match"
	"github.com/stretchr/testify/mock"
)

// stubSessions is a fixed identity that records invalidations.
type stubSessions struct {
	mu          sync.Mutex
	identity    user.Identity
	signedIn    bool
	invalidated int
}

func signedInAs(id string) *stubSessions {
	return &stubSessions{identity: user.Identity{ID: id, Email: id + "@example.com"}, signedIn: true}
}

func (s *stubSessions) CurrentIdentity() (user.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, s.signedIn
}

func (s *stubSessions) Invalidate(context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated++
	s.signedIn = false
}

type competitionFixture struct {
	service      *CompetitionService
	competitions *competitionmock.Repository
	games        *gamemock.Repository
	matches      *matchmock.Repository
	sessions     *stubSessions
}

func newCompetitionFixture(t *testing.T) competitionFixture {
	t.Helper()
	f := competitionFixture{
		competitions: competitionmock.NewRepository(t),
		games:        gamemock.NewRepository(t),
		matches:      matchmock.NewRepository(t),
		sessions:     signedInAs("u1"),
	}
	f.service = NewCompetitionService(f.competitions, f.games, f.matches, f.sessions, 2)
	return f
}

func TestCompetitionService_CreateStampsOwnerAndPending(t *testing.T) {
	t.Parallel()

	f := newCompetitionFixture(t)
	f.competitions.
		On("Create", mock.Anything, mock.MatchedBy(func(c competition.Competition) bool {
			return c.UserID == "u1" && c.Status == competition.StatusPending && c.Name == "Copa" && c.ID == ""
		})).
		Return(competition.Competition{ID: "c1", Name: "Copa", UserID: "u1", Status: competition.StatusPending}, nil).
		Once()

	created, err := f.service.Create(context.Background(), competition.Competition{
		ID:     "client-chosen",
		Name:   " Copa ",
		UserID: "someone-else",
		Status: competition.StatusFinished,
	})
	if err != nil {
		t.Fatalf("create competition: %v", err)
	}
	if created.ID != "c1" {
		t.Fatalf("unexpected competition: %+v", created)
	}
}

func TestCompetitionService_RequiresIdentity(t *testing.T) {
	t.Parallel()

	f := newCompetitionFixture(t)
	f.sessions.signedIn = false

	if _, err := f.service.ListMine(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := f.service.Create(context.Background(), competition.Competition{Name: "Copa"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCompetitionService_CreateInvalidNeverReachesRepository(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		item  competition.Competition
		field string
	}{
		{name: "blank name", item: competition.Competition{Name: "   "}, field: "name"},
		{name: "malformed start", item: competition.Competition{Name: "Copa", StartDate: "20/10/2026"}, field: "start_date"},
		{name: "end before start", item: competition.Competition{Name: "Copa", StartDate: "2026-10-20", EndDate: "2026-10-01"}, field: "end_date"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newCompetitionFixture(t)
			_, err := f.service.Create(context.Background(), tc.item)
			assertValidationField(t, err, tc.field)
		})
	}
}

func TestCompetitionService_UpdateTrimsPatch(t *testing.T) {
	t.Parallel()

	f := newCompetitionFixture(t)
	f.competitions.On("GetByID", mock.Anything, "c1").
		Return(competition.Competition{ID: "c1", Name: "Copa", UserID: "u1", Status: competition.StatusPending}, true, nil).
		Twice()
	f.competitions.On("Update", mock.Anything, "c1", competition.Patch{Name: ptr("Copa Norte"), Location: ptr("Recife")}).
		Return(competition.Competition{ID: "c1", Name: "Copa Norte", Location: "Recife", UserID: "u1"}, nil).
		Once()

	updated, err := f.service.Update(context.Background(), "c1", competition.Patch{Name: ptr("  Copa Norte "), Location: ptr(" Recife\n")})
	if err != nil {
		t.Fatalf("update competition: %v", err)
	}
	if updated.Name != "Copa Norte" {
		t.Fatalf("unexpected competition: %+v", updated)
	}

	_, err = f.service.Update(context.Background(), "c1", competition.Patch{Name: ptr(" ")})
	assertValidationField(t, err, "name")
}

func TestCompetitionService_StatusTransitions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newCompetitionFixture(t)
	pending := competition.Competition{ID: "c1", Name: "Copa", UserID: "u1", Status: competition.StatusPending}
	inProgress := pending
	inProgress.Status = competition.StatusInProgress

	f.competitions.On("GetByID", mock.Anything, "c1").Return(pending, true, nil).Once()
	f.competitions.
		On("Update", mock.Anything, "c1", mock.MatchedBy(func(p competition.Patch) bool {
			return p.Status != nil && *p.Status == competition.StatusInProgress && p.Name == nil
		})).
		Return(inProgress, nil).
		Once()

	updated, err := f.service.ChangeStatus(ctx, "c1", competition.StatusInProgress)
	if err != nil {
		t.Fatalf("change status: %v", err)
	}
	if updated.Status != competition.StatusInProgress {
		t.Fatalf("unexpected status: %s", updated.Status)
	}

	f.competitions.On("GetByID", mock.Anything, "c1").Return(inProgress, true, nil).Once()
	if _, err := f.service.ChangeStatus(ctx, "c1", competition.StatusPending); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected backward transition to be rejected, got %v", err)
	}
}

func TestCompetitionService_NoSkippingAndFinishedIsTerminal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newCompetitionFixture(t)
	f.competitions.On("GetByID", mock.Anything, "c1").
		Return(competition.Competition{ID: "c1", UserID: "u1", Status: competition.StatusPending}, true, nil).
		Once()
	f.competitions.On("GetByID", mock.Anything, "c2").
		Return(competition.Competition{ID: "c2", UserID: "u1", Status: competition.StatusFinished}, true, nil).
		Once()

	if _, err := f.service.ChangeStatus(ctx, "c1", competition.StatusFinished); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected skip to be rejected, got %v", err)
	}
	if _, err := f.service.Advance(ctx, "c2"); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected finished to be terminal, got %v", err)
	}
}

func TestCompetitionService_AdvanceMovesToNextStatus(t *testing.T) {
	t.Parallel()

	f := newCompetitionFixture(t)
	current := competition.Competition{ID: "c1", UserID: "u1", Status: competition.StatusInProgress}
	f.competitions.On("GetByID", mock.Anything, "c1").Return(current, true, nil).Once()
	f.competitions.
		On("Update", mock.Anything, "c1", mock.MatchedBy(func(p competition.Patch) bool {
			return p.Status != nil && *p.Status == competition.StatusFinished
		})).
		Return(competition.Competition{ID: "c1", UserID: "u1", Status: competition.StatusFinished}, nil).
		Once()

	updated, err := f.service.Advance(context.Background(), "c1")
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if updated.Status != competition.StatusFinished {
		t.Fatalf("unexpected status: %s", updated.Status)
	}
}

func TestCompetitionService_UpdateRefusesStatus(t *testing.T) {
	t.Parallel()

	f := newCompetitionFixture(t)
	status := competition.StatusFinished
	if _, err := f.service.Update(context.Background(), "c1", competition.Patch{Status: &status}); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected status edit to be refused, got %v", err)
	}
}

func TestCompetitionService_ForeignCompetitionIsForbidden(t *testing.T) {
	t.Parallel()

	f := newCompetitionFixture(t)
	f.competitions.On("GetByID", mock.Anything, "c9").
		Return(competition.Competition{ID: "c9", UserID: "u2", Status: competition.StatusPending}, true, nil).
		Twice()

	if _, err := f.service.Get(context.Background(), "c9"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := f.service.Delete(context.Background(), "c9", false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}
}

func TestCompetitionService_DeleteMissingSucceeds(t *testing.T) {
	t.Parallel()

	f := newCompetitionFixture(t)
	f.competitions.On("GetByID", mock.Anything, "gone").Return(competition.Competition{}, false, nil).Twice()

	for i := 0; i < 2; i++ {
		if err := f.service.Delete(context.Background(), "gone", true); err != nil {
			t.Fatalf("delete attempt %d: %v", i+1, err)
		}
	}
}

func TestCompetitionService_DeleteCascade(t *testing.T) {
	t.Parallel()

	f := newCompetitionFixture(t)
	f.competitions.On("GetByID", mock.Anything, "c1").
		Return(competition.Competition{ID: "c1", UserID: "u1"}, true, nil).
		Once()
	f.games.On("ListByCompetition", mock.Anything, "c1").
		Return([]game.Game{{ID: "g1", CompetitionID: "c1"}, {ID: "g2", CompetitionID: "c1"}}, nil).
		Once()
	f.matches.On("ListByGame", mock.Anything, "g1").Return([]match.Match{{ID: "m1"}, {ID: "m2"}}, nil).Once()
	f.matches.On("ListByGame", mock.Anything, "g2").Return([]match.Match{}, nil).Once()
	f.matches.On("Delete", mock.Anything, "m1").Return(nil).Once()
	f.matches.On("Delete", mock.Anything, "m2").Return(nil).Once()
	f.games.On("Delete", mock.Anything, "g1").Return(nil).Once()
	f.games.On("Delete", mock.Anything, "g2").Return(nil).Once()
	f.competitions.On("Delete", mock.Anything, "c1").Return(nil).Once()

	if err := f.service.Delete(context.Background(), "c1", true); err != nil {
		t.Fatalf("cascade delete: %v", err)
	}
}

func TestCompetitionService_CascadeFailureKeepsCompetition(t *testing.T) {
	t.Parallel()

	f := newCompetitionFixture(t)
	f.competitions.On("GetByID", mock.Anything, "c1").
		Return(competition.Competition{ID: "c1", UserID: "u1"}, true, nil).
		Once()
	f.games.On("ListByCompetition", mock.Anything, "c1").Return([]game.Game{{ID: "g1"}}, nil).Once()
	f.matches.On("ListByGame", mock.Anything, "g1").Return(nil, &StoreError{Op: "select", Table: "matches", Err: errors.New("boom")}).Once()

	if err := f.service.Delete(context.Background(), "c1", true); !errors.Is(err, ErrStore) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestCompetitionService_UnauthorizedStoreInvalidatesSession(t *testing.T) {
	t.Parallel()

	f := newCompetitionFixture(t)
	storeErr := &StoreError{Op: "select", Table: "competitions", Err: fmt.Errorf("%w: JWT expired", ErrUnauthorized)}
	f.competitions.On("ListByOwner", mock.Anything, "u1").Return(nil, storeErr).Once()

	_, err := f.service.ListMine(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if f.sessions.invalidated != 1 {
		t.Fatalf("expected session to be invalidated once, got %d", f.sessions.invalidated)
	}
	if _, ok := f.sessions.CurrentIdentity(); ok {
		t.Fatalf("expected caller to be signed out")
	}
}

func TestCompetitionService_Detail(t *testing.T) {
	t.Parallel()

	f := newCompetitionFixture(t)
	f.competitions.On("GetByID", mock.Anything, "c1").
		Return(competition.Competition{ID: "c1", UserID: "u1", Name: "Copa"}, true, nil).
		Once()
	f.games.On("ListByCompetition", mock.Anything, "c1").
		Return([]game.Game{{ID: "g1"}, {ID: "g2"}}, nil).
		Once()
	f.matches.On("ListByGame", mock.Anything, "g1").Return([]match.Match{{ID: "m1", GameID: "g1"}}, nil).Once()
	f.matches.On("ListByGame", mock.Anything, "g2").Return([]match.Match{}, nil).Once()

	detail, err := f.service.Detail(context.Background(), "c1")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Competition.Name != "Copa" || len(detail.Games) != 2 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	if detail.Games[0].Game.ID != "g1" || len(detail.Games[0].Matches) != 1 || len(detail.Games[1].Matches) != 0 {
		t.Fatalf("unexpected game details: %+v", detail.Games)
	}
}

func TestCompetitionService_ListAllIsUnscoped(t *testing.T) {
	t.Parallel()

	f := newCompetitionFixture(t)
	f.competitions.On("List", mock.Anything).
		Return([]competition.Competition{{ID: "c1", UserID: "u1"}, {ID: "c2", UserID: "u2"}}, nil).
		Once()

	items, err := f.service.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected every competition, got %d", len(items))
	}
}
