package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/competition-manager/internal/domain/competition"
	"github.com/riskibarqy/competition-manager/internal/domain/game"
	"github.com/riskibarqy/competition-manager/internal/usecase"
)

func (h *Handler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompetitions")
	defer span.End()

	all, err := h.scopeAll(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var items []competition.Competition
	if all {
		items, err = h.competitionService.ListAll(ctx)
	} else {
		items, err = h.competitionService.ListMine(ctx)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "list competitions failed", "scope_all", all, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, competitionsToDTO(items))
}

func (h *Handler) CreateCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateCompetition")
	defer span.End()

	var req createCompetitionRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.competitionService.Create(ctx, competition.Competition{
		Name:      strings.TrimSpace(req.Name),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Location:  strings.TrimSpace(req.Location),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create competition failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, competitionToDTO(created))
}

func (h *Handler) GetCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCompetition")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("competitionID"))
	detail, err := h.competitionService.Detail(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "get competition failed", "competition_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, competitionDetailToDTO(detail))
}

func (h *Handler) UpdateCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateCompetition")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("competitionID"))
	var req updateCompetitionRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	patch := competition.Patch{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Location:  req.Location,
	}
	if req.Status != nil {
		status, err := competition.ParseStatus(*req.Status)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
			return
		}
		patch.Status = &status
	}

	updated, err := h.competitionService.Update(ctx, id, patch)
	if err != nil {
		h.logger.WarnContext(ctx, "update competition failed", "competition_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, competitionToDTO(updated))
}

// ChangeCompetitionStatus moves to the requested status, or to the next one
// when the body names none.
func (h *Handler) ChangeCompetitionStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ChangeCompetitionStatus")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("competitionID"))
	var req changeStatusRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var (
		updated competition.Competition
		err     error
	)
	if req.Status == "" {
		updated, err = h.competitionService.Advance(ctx, id)
	} else {
		updated, err = h.competitionService.ChangeStatus(ctx, id, competition.Status(req.Status))
	}
	if err != nil {
		h.logger.WarnContext(ctx, "change competition status failed", "competition_id", id, "status", req.Status, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, competitionToDTO(updated))
}

func (h *Handler) DeleteCompetition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteCompetition")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("competitionID"))
	cascade, err := queryBool(r, "cascade")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.competitionService.Delete(ctx, id, cascade); err != nil {
		h.logger.WarnContext(ctx, "delete competition failed", "competition_id", id, "cascade", cascade, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCompetitionGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompetitionGames")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("competitionID"))
	items, err := h.gameService.ListByCompetition(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "list competition games failed", "competition_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gamesToDTO(items))
}

func (h *Handler) CreateCompetitionGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateCompetitionGame")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("competitionID"))
	var req createGameRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.gameService.Create(ctx, game.Game{
		CompetitionID: id,
		Round:         req.Round,
		ScheduledAt:   req.ScheduledAt,
		PlayerOneID:   strings.TrimSpace(req.PlayerOneID),
		PlayerTwoID:   strings.TrimSpace(req.PlayerTwoID),
		WinnerID:      strings.TrimSpace(req.WinnerID),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create game failed", "competition_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, gameToDTO(created))
}
