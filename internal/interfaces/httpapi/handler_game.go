package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/competition-manager/internal/domain/game"
	"github.com/riskibarqy/competition-manager/internal/domain/match"
	"github.com/riskibarqy/competition-manager/internal/usecase"
)

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	if !h.unscopedListEnabled {
		writeError(ctx, w, fmt.Errorf("%w: unscoped listing is disabled", usecase.ErrForbidden))
		return
	}

	items, err := h.gameService.ListAll(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list games failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gamesToDTO(items))
}

func (h *Handler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateGame")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("gameID"))
	var req updateGameRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.gameService.Update(ctx, id, game.Patch{
		Round:       req.Round,
		ScheduledAt: req.ScheduledAt,
		PlayerOneID: req.PlayerOneID,
		PlayerTwoID: req.PlayerTwoID,
		WinnerID:    req.WinnerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update game failed", "game_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(updated))
}

func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteGame")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("gameID"))
	if err := h.gameService.Delete(ctx, id); err != nil {
		h.logger.WarnContext(ctx, "delete game failed", "game_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListGameMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGameMatches")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("gameID"))
	items, err := h.matchService.ListByGame(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "list game matches failed", "game_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(items))
}

func (h *Handler) CreateGameMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateGameMatch")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("gameID"))
	var req createMatchRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.matchService.Create(ctx, match.Match{
		GameID:         id,
		Number:         req.Number,
		PlayerOneScore: req.PlayerOneScore,
		PlayerTwoScore: req.PlayerTwoScore,
		WinnerID:       strings.TrimSpace(req.WinnerID),
		PlayedAt:       req.PlayedAt,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "game_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(created))
}
