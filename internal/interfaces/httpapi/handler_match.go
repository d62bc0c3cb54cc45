package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/competition-manager/internal/domain/match"
	"github.com/riskibarqy/competition-manager/internal/usecase"
)

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	if !h.unscopedListEnabled {
		writeError(ctx, w, fmt.Errorf("%w: unscoped listing is disabled", usecase.ErrForbidden))
		return
	}

	items, err := h.matchService.ListAll(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(items))
}

func (h *Handler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMatch")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("matchID"))
	var req updateMatchRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.matchService.Update(ctx, id, match.Patch{
		Number:         req.Number,
		PlayerOneScore: req.PlayerOneScore,
		PlayerTwoScore: req.PlayerTwoScore,
		WinnerID:       req.WinnerID,
		PlayedAt:       req.PlayedAt,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update match failed", "match_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(updated))
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteMatch")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("matchID"))
	if err := h.matchService.Delete(ctx, id); err != nil {
		h.logger.WarnContext(ctx, "delete match failed", "match_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
