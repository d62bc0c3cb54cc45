package httpapi

import (
	"time"

	"github.com/riskibarqy/competition-manager/internal/domain/competition"
	"github.com/riskibarqy/competition-manager/internal/domain/game"
	"github.com/riskibarqy/competition-manager/internal/domain/match"
	"github.com/riskibarqy/competition-manager/internal/domain/player"
	"github.com/riskibarqy/competition-manager/internal/domain/user"
	"github.com/riskibarqy/competition-manager/internal/usecase"
)

type credentialsRequest struct {
	Email    string `json:"email" validate:"max=320"`
	Password string `json:"password" validate:"max=72"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"max=320"`
	Password string `json:"password" validate:"max=72"`
	Name     string `json:"name" validate:"max=100"`
}

type createCompetitionRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Location  string `json:"location" validate:"max=200"`
}

type updateCompetitionRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=200"`
	StartDate *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Location  *string `json:"location" validate:"omitempty,max=200"`
	Status    *string `json:"status"`
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=pending in_progress finished"`
}

type createPlayerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Nickname string `json:"nickname" validate:"max=100"`
	Phone    string `json:"phone" validate:"max=32"`
}

type updatePlayerRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Nickname *string `json:"nickname" validate:"omitempty,max=100"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

type createGameRequest struct {
	Round       int        `json:"round" validate:"gte=0"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	PlayerOneID string     `json:"player_one_id"`
	PlayerTwoID string     `json:"player_two_id"`
	WinnerID    string     `json:"winner_id"`
}

type updateGameRequest struct {
	Round       *int       `json:"round" validate:"omitempty,gte=0"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	PlayerOneID *string    `json:"player_one_id"`
	PlayerTwoID *string    `json:"player_two_id"`
	WinnerID    *string    `json:"winner_id"`
}

type createMatchRequest struct {
	Number         int        `json:"number" validate:"gte=0"`
	PlayerOneScore int        `json:"player_one_score" validate:"gte=0"`
	PlayerTwoScore int        `json:"player_two_score" validate:"gte=0"`
	WinnerID       string     `json:"winner_id"`
	PlayedAt       *time.Time `json:"played_at"`
}

type updateMatchRequest struct {
	Number         *int       `json:"number" validate:"omitempty,gte=0"`
	PlayerOneScore *int       `json:"player_one_score" validate:"omitempty,gte=0"`
	PlayerTwoScore *int       `json:"player_two_score" validate:"omitempty,gte=0"`
	WinnerID       *string    `json:"winner_id"`
	PlayedAt       *time.Time `json:"played_at"`
}

type identityDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type competitionDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate string    `json:"start_date,omitempty"`
	EndDate   string    `json:"end_date,omitempty"`
	Location  string    `json:"location,omitempty"`
	Status    string    `json:"status"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type competitionDetailDTO struct {
	Competition competitionDTO  `json:"competition"`
	Games       []gameDetailDTO `json:"games"`
}

type playerDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nickname  string    `json:"nickname,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type gameDTO struct {
	ID            string     `json:"id"`
	CompetitionID string     `json:"competition_id"`
	Round         int        `json:"round"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
	PlayerOneID   string     `json:"player_one_id,omitempty"`
	PlayerTwoID   string     `json:"player_two_id,omitempty"`
	WinnerID      string     `json:"winner_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type gameDetailDTO struct {
	Game    gameDTO    `json:"game"`
	Matches []matchDTO `json:"matches"`
}

type matchDTO struct {
	ID             string     `json:"id"`
	GameID         string     `json:"game_id"`
	Number         int        `json:"number"`
	PlayerOneScore int        `json:"player_one_score"`
	PlayerTwoScore int        `json:"player_two_score"`
	WinnerID       string     `json:"winner_id,omitempty"`
	PlayedAt       *time.Time `json:"played_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func identityToDTO(v user.Identity) identityDTO {
	return identityDTO{ID: v.ID, Email: v.Email, Name: v.Name}
}

func competitionToDTO(v competition.Competition) competitionDTO {
	return competitionDTO{
		ID:        v.ID,
		Name:      v.Name,
		StartDate: v.StartDate,
		EndDate:   v.EndDate,
		Location:  v.Location,
		Status:    string(v.Status),
		UserID:    v.UserID,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func competitionsToDTO(items []competition.Competition) []competitionDTO {
	out := make([]competitionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, competitionToDTO(item))
	}
	return out
}

func competitionDetailToDTO(v usecase.CompetitionDetail) competitionDetailDTO {
	games := make([]gameDetailDTO, 0, len(v.Games))
	for _, g := range v.Games {
		games = append(games, gameDetailDTO{
			Game:    gameToDTO(g.Game),
			Matches: matchesToDTO(g.Matches),
		})
	}
	return competitionDetailDTO{Competition: competitionToDTO(v.Competition), Games: games}
}

func playerToDTO(v player.Player) playerDTO {
	return playerDTO{
		ID:        v.ID,
		Name:      v.Name,
		Nickname:  v.Nickname,
		Phone:     v.Phone,
		UserID:    v.UserID,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func playersToDTO(items []player.Player) []playerDTO {
	out := make([]playerDTO, 0, len(items))
	for _, item := range items {
		out = append(out, playerToDTO(item))
	}
	return out
}

func gameToDTO(v game.Game) gameDTO {
	return gameDTO{
		ID:            v.ID,
		CompetitionID: v.CompetitionID,
		Round:         v.Round,
		ScheduledAt:   v.ScheduledAt,
		PlayerOneID:   v.PlayerOneID,
		PlayerTwoID:   v.PlayerTwoID,
		WinnerID:      v.WinnerID,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func gamesToDTO(items []game.Game) []gameDTO {
	out := make([]gameDTO, 0, len(items))
	for _, item := range items {
		out = append(out, gameToDTO(item))
	}
	return out
}

func matchToDTO(v match.Match) matchDTO {
	return matchDTO{
		ID:             v.ID,
		GameID:         v.GameID,
		Number:         v.Number,
		PlayerOneScore: v.PlayerOneScore,
		PlayerTwoScore: v.PlayerTwoScore,
		WinnerID:       v.WinnerID,
		PlayedAt:       v.PlayedAt,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

func matchesToDTO(items []match.Match) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchToDTO(item))
	}
	return out
}
