package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/competition-manager/internal/usecase"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Register")
	defer span.End()

	var req registerRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	identity, err := h.sessionService.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "register failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, identityToDTO(identity))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Login")
	defer span.End()

	var req credentialsRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	identity, err := h.sessionService.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, identityToDTO(identity))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Logout")
	defer span.End()

	if err := h.sessionService.Logout(ctx); err != nil {
		h.logger.WarnContext(ctx, "logout failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "signed_out"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Me")
	defer span.End()

	identity, ok := identityFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: identity is missing from request context", usecase.ErrUnauthorized))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, identityToDTO(identity))
}
