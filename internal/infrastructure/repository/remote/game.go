package remote

import (
	"context"

	"github.com/riskibarqy/competition-manager/internal/domain/game"
	"github.com/riskibarqy/competition-manager/internal/platform/datastore"
	"github.com/riskibarqy/competition-manager/internal/platform/logging"
)

var GameSchema = Schema{
	Table:        "games",
	ParentColumn: "competicao_id",
	Required:     []string{"competicao_id"},
}

type GameRepository struct {
	*Table[game.Game, game.Patch]
}

var _ game.Repository = (*GameRepository)(nil)

func NewGameRepository(store datastore.Store, logger *logging.Logger) *GameRepository {
	return &GameRepository{
		Table: NewTable(store, GameSchema, Codec[game.Game, game.Patch]{
			Encode:      encodeGame,
			EncodePatch: encodeGamePatch,
			Decode:      decodeGame,
		}, logger),
	}
}

func (r *GameRepository) ListByCompetition(ctx context.Context, competitionID string) ([]game.Game, error) {
	return r.ListByParent(ctx, competitionID)
}

func encodeGame(item game.Game) datastore.Row {
	row := datastore.Row{
		"id":            item.ID,
		"competicao_id": item.CompetitionID,
		"round":         item.Round,
		"scheduled_at":  nullableTime(item.ScheduledAt),
		"player_one_id": nullable(item.PlayerOneID),
		"player_two_id": nullable(item.PlayerTwoID),
		"winner_id":     nullable(item.WinnerID),
	}
	if !item.CreatedAt.IsZero() {
		row[columnCreatedAt] = item.CreatedAt.UTC()
	}
	return row
}

func encodeGamePatch(patch game.Patch) datastore.Row {
	row := datastore.Row{}
	if patch.Round != nil {
		row["round"] = *patch.Round
	}
	if patch.ScheduledAt != nil {
		row["scheduled_at"] = nullableTime(patch.ScheduledAt)
	}
	if patch.PlayerOneID != nil {
		row["player_one_id"] = nullable(*patch.PlayerOneID)
	}
	if patch.PlayerTwoID != nil {
		row["player_two_id"] = nullable(*patch.PlayerTwoID)
	}
	if patch.WinnerID != nil {
		row["winner_id"] = nullable(*patch.WinnerID)
	}
	return row
}

func decodeGame(row datastore.Row) game.Game {
	return game.Game{
		ID:            getString(row, "id"),
		CompetitionID: getString(row, "competicao_id"),
		Round:         getInt(row, "round"),
		ScheduledAt:   getTimePtr(row, "scheduled_at"),
		PlayerOneID:   getString(row, "player_one_id"),
		PlayerTwoID:   getString(row, "player_two_id"),
		WinnerID:      getString(row, "winner_id"),
		CreatedAt:     getTime(row, columnCreatedAt),
		UpdatedAt:     getTime(row, columnUpdatedAt),
	}
}
