package game

import (
	"strings"
	"time"

	"github.com/riskibarqy/competition-manager/internal/domain/fielderr"
)

// Game is a pairing of two players inside a competition.
type Game struct {
	ID            string
	CompetitionID string
	Round         int
	ScheduledAt   *time.Time
	PlayerOneID   string
	PlayerTwoID   string
	WinnerID      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (g Game) Validate() error {
	if strings.TrimSpace(g.CompetitionID) == "" {
		return fielderr.Required("competicao_id")
	}
	if g.Round < 0 {
		return fielderr.Invalid("round", "must be >= 0")
	}
	if g.PlayerOneID != "" && g.PlayerOneID == g.PlayerTwoID {
		return fielderr.Invalid("player_two_id", "must differ from player_one_id")
	}
	if g.WinnerID != "" && g.WinnerID != g.PlayerOneID && g.WinnerID != g.PlayerTwoID {
		return fielderr.Invalid("winner_id", "must be one of the game players")
	}
	return nil
}

// Patch carries the fields of a partial update. An empty WinnerID clears the winner.
type Patch struct {
	Round       *int
	ScheduledAt *time.Time
	PlayerOneID *string
	PlayerTwoID *string
	WinnerID    *string
}

func (p Patch) IsEmpty() bool {
	return p.Round == nil && p.ScheduledAt == nil && p.PlayerOneID == nil && p.PlayerTwoID == nil && p.WinnerID == nil
}

// Trimmed returns the patch with surrounding spaces removed from its player references.
func (p Patch) Trimmed() Patch {
	for _, field := range []**string{&p.PlayerOneID, &p.PlayerTwoID, &p.WinnerID} {
		if *field != nil {
			t := strings.TrimSpace(**field)
			*field = &t
		}
	}
	return p
}

func (p Patch) Apply(item Game) Game {
	if p.Round != nil {
		item.Round = *p.Round
	}
	if p.ScheduledAt != nil {
		at := *p.ScheduledAt
		item.ScheduledAt = &at
	}
	if p.PlayerOneID != nil {
		item.PlayerOneID = *p.PlayerOneID
	}
	if p.PlayerTwoID != nil {
		item.PlayerTwoID = *p.PlayerTwoID
	}
	if p.WinnerID != nil {
		item.WinnerID = *p.WinnerID
	}
	return item
}
