package remote

import (
	"github.com/riskibarqy/competition-manager/internal/domain/player"
	"github.com/riskibarqy/competition-manager/internal/platform/datastore"
	"github.com/riskibarqy/competition-manager/internal/platform/logging"
)

var PlayerSchema = Schema{
	Table:       "players",
	OwnerColumn: "user_id",
	OrderColumn: columnCreatedAt,
	Required:    []string{"nome", "user_id"},
}

type PlayerRepository struct {
	*Table[player.Player, player.Patch]
}

var _ player.Repository = (*PlayerRepository)(nil)

func NewPlayerRepository(store datastore.Store, logger *logging.Logger) *PlayerRepository {
	return &PlayerRepository{
		Table: NewTable(store, PlayerSchema, Codec[player.Player, player.Patch]{
			Encode:      encodePlayer,
			EncodePatch: encodePlayerPatch,
			Decode:      decodePlayer,
		}, logger),
	}
}

func encodePlayer(item player.Player) datastore.Row {
	row := datastore.Row{
		"id":      item.ID,
		"nome":    item.Name,
		"apelido": nullable(item.Nickname),
		"celular": nullable(item.Phone),
		"user_id": item.UserID,
	}
	if !item.CreatedAt.IsZero() {
		row[columnCreatedAt] = item.CreatedAt.UTC()
	}
	return row
}

func encodePlayerPatch(patch player.Patch) datastore.Row {
	row := datastore.Row{}
	if patch.Name != nil {
		row["nome"] = *patch.Name
	}
	if patch.Nickname != nil {
		row["apelido"] = nullable(*patch.Nickname)
	}
	if patch.Phone != nil {
		row["celular"] = nullable(*patch.Phone)
	}
	return row
}

func decodePlayer(row datastore.Row) player.Player {
	return player.Player{
		ID:        getString(row, "id"),
		Name:      getString(row, "nome"),
		Nickname:  getString(row, "apelido"),
		Phone:     getString(row, "celular"),
		UserID:    getString(row, "user_id"),
		CreatedAt: getTime(row, columnCreatedAt),
		UpdatedAt: getTime(row, columnUpdatedAt),
	}
}
