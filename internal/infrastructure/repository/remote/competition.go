package remote

import (
	"github.com/riskibarqy/competition-manager/internal/domain/competition"
	"github.com/riskibarqy/competition-manager/internal/platform/datastore"
	"github.com/riskibarqy/competition-manager/internal/platform/logging"
)

var CompetitionSchema = Schema{
	Table:       "competitions",
	OwnerColumn: "user_id",
	OrderColumn: columnCreatedAt,
	Required:    []string{"name", "user_id"},
}

type CompetitionRepository struct {
	*Table[competition.Competition, competition.Patch]
}

var _ competition.Repository = (*CompetitionRepository)(nil)

func NewCompetitionRepository(store datastore.Store, logger *logging.Logger) *CompetitionRepository {
	return &CompetitionRepository{
		Table: NewTable(store, CompetitionSchema, Codec[competition.Competition, competition.Patch]{
			Encode:      encodeCompetition,
			EncodePatch: encodeCompetitionPatch,
			Decode:      decodeCompetition,
		}, logger),
	}
}

func encodeCompetition(item competition.Competition) datastore.Row {
	if item.Status == "" {
		item.Status = competition.StatusPending
	}
	row := datastore.Row{
		"id":         item.ID,
		"name":       item.Name,
		"start_date": nullable(item.StartDate),
		"end_date":   nullable(item.EndDate),
		"location":   nullable(item.Location),
		"status":     string(item.Status),
		"user_id":    item.UserID,
	}
	if !item.CreatedAt.IsZero() {
		row[columnCreatedAt] = item.CreatedAt.UTC()
	}
	return row
}

func encodeCompetitionPatch(patch competition.Patch) datastore.Row {
	row := datastore.Row{}
	if patch.Name != nil {
		row["name"] = *patch.Name
	}
	if patch.StartDate != nil {
		row["start_date"] = nullable(*patch.StartDate)
	}
	if patch.EndDate != nil {
		row["end_date"] = nullable(*patch.EndDate)
	}
	if patch.Location != nil {
		row["location"] = nullable(*patch.Location)
	}
	if patch.Status != nil {
		row["status"] = string(*patch.Status)
	}
	return row
}

func decodeCompetition(row datastore.Row) competition.Competition {
	return competition.Competition{
		ID:        getString(row, "id"),
		Name:      getString(row, "name"),
		StartDate: getDate(row, "start_date"),
		EndDate:   getDate(row, "end_date"),
		Location:  getString(row, "location"),
		Status:    competition.Status(getString(row, "status")),
		UserID:    getString(row, "user_id"),
		CreatedAt: getTime(row, columnCreatedAt),
		UpdatedAt: getTime(row, columnUpdatedAt),
	}
}
