package remote

import (
	"context"

	"github.com/riskibarqy/competition-manager/internal/domain/match"
	"github.com/riskibarqy/competition-manager/internal/platform/datastore"
	"github.com/riskibarqy/competition-manager/internal/platform/logging"
)

var MatchSchema = Schema{
	Table:        "matches",
	ParentColumn: "game_id",
	Required:     []string{"game_id"},
}

type MatchRepository struct {
	*Table[match.Match, match.Patch]
}

var _ match.Repository = (*MatchRepository)(nil)

func NewMatchRepository(store datastore.Store, logger *logging.Logger) *MatchRepository {
	return &MatchRepository{
		Table: NewTable(store, MatchSchema, Codec[match.Match, match.Patch]{
			Encode:      encodeMatch,
			EncodePatch: encodeMatchPatch,
			Decode:      decodeMatch,
		}, logger),
	}
}

func (r *MatchRepository) ListByGame(ctx context.Context, gameID string) ([]match.Match, error) {
	return r.ListByParent(ctx, gameID)
}

func encodeMatch(item match.Match) datastore.Row {
	row := datastore.Row{
		"id":               item.ID,
		"game_id":          item.GameID,
		"number":           item.Number,
		"player_one_score": item.PlayerOneScore,
		"player_two_score": item.PlayerTwoScore,
		"winner_id":        nullable(item.WinnerID),
		"played_at":        nullableTime(item.PlayedAt),
	}
	if !item.CreatedAt.IsZero() {
		row[columnCreatedAt] = item.CreatedAt.UTC()
	}
	return row
}

func encodeMatchPatch(patch match.Patch) datastore.Row {
	row := datastore.Row{}
	if patch.Number != nil {
		row["number"] = *patch.Number
	}
	if patch.PlayerOneScore != nil {
		row["player_one_score"] = *patch.PlayerOneScore
	}
	if patch.PlayerTwoScore != nil {
		row["player_two_score"] = *patch.PlayerTwoScore
	}
	if patch.WinnerID != nil {
		row["winner_id"] = nullable(*patch.WinnerID)
	}
	if patch.PlayedAt != nil {
		row["played_at"] = nullableTime(patch.PlayedAt)
	}
	return row
}

func decodeMatch(row datastore.Row) match.Match {
	return match.Match{
		ID:             getString(row, "id"),
		GameID:         getString(row, "game_id"),
		Number:         getInt(row, "number"),
		PlayerOneScore: getInt(row, "player_one_score"),
		PlayerTwoScore: getInt(row, "player_two_score"),
		WinnerID:       getString(row, "winner_id"),
		PlayedAt:       getTimePtr(row, "played_at"),
		CreatedAt:      getTime(row, columnCreatedAt),
		UpdatedAt:      getTime(row, columnUpdatedAt),
	}
}
