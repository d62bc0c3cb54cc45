package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/competition-manager/internal/domain/player"
)

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	all, err := h.scopeAll(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var items []player.Player
	if all {
		items, err = h.playerService.ListAll(ctx)
	} else {
		items, err = h.playerService.ListMine(ctx)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "scope_all", all, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playersToDTO(items))
}

func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreatePlayer")
	defer span.End()

	var req createPlayerRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.playerService.Create(ctx, player.Player{
		Name:     strings.TrimSpace(req.Name),
		Nickname: strings.TrimSpace(req.Nickname),
		Phone:    strings.TrimSpace(req.Phone),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create player failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, playerToDTO(created))
}

func (h *Handler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdatePlayer")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("playerID"))
	var req updatePlayerRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.playerService.Update(ctx, id, player.Patch{
		Name:     req.Name,
		Nickname: req.Nickname,
		Phone:    req.Phone,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update player failed", "player_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToDTO(updated))
}

func (h *Handler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeletePlayer")
	defer span.End()

	id := strings.TrimSpace(r.PathValue("playerID"))
	if err := h.playerService.Delete(ctx, id); err != nil {
		h.logger.WarnContext(ctx, "delete player failed", "player_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
