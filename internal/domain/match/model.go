package match

import (
	"strings"
	"time"

	"github.com/riskibarqy/competition-manager/internal/domain/fielderr"
)

// Match is one leg of a game with the score of each player.
type Match struct {
	ID             string
	GameID         string
	Number         int
	PlayerOneScore int
	PlayerTwoScore int
	WinnerID       string
	PlayedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (m Match) Validate() error {
	if strings.TrimSpace(m.GameID) == "" {
		return fielderr.Required("game_id")
	}
	if m.Number < 0 {
		return fielderr.Invalid("number", "must be >= 0")
	}
	if m.PlayerOneScore < 0 {
		return fielderr.Invalid("player_one_score", "must be >= 0")
	}
	if m.PlayerTwoScore < 0 {
		return fielderr.Invalid("player_two_score", "must be >= 0")
	}
	return nil
}

type Patch struct {
	Number         *int
	PlayerOneScore *int
	PlayerTwoScore *int
	WinnerID       *string
	PlayedAt       *time.Time
}

func (p Patch) IsEmpty() bool {
	return p.Number == nil && p.PlayerOneScore == nil && p.PlayerTwoScore == nil && p.WinnerID == nil && p.PlayedAt == nil
}

func (p Patch) Trimmed() Patch {
	if p.WinnerID != nil {
		t := strings.TrimSpace(*p.WinnerID)
		p.WinnerID = &t
	}
	return p
}

func (p Patch) Apply(item Match) Match {
	if p.Number != nil {
		item.Number = *p.Number
	}
	if p.PlayerOneScore != nil {
		item.PlayerOneScore = *p.PlayerOneScore
	}
	if p.PlayerTwoScore != nil {
		item.PlayerTwoScore = *p.PlayerTwoScore
	}
	if p.WinnerID != nil {
		item.WinnerID = *p.WinnerID
	}
	if p.PlayedAt != nil {
		at := *p.PlayedAt
		item.PlayedAt = &at
	}
	return item
}
