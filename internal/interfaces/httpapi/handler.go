package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/competition-manager/internal/platform/logging"
	"github.com/riskibarqy/competition-manager/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	sessionService      *usecase.SessionService
	competitionService  *usecase.CompetitionService
	playerService       *usecase.PlayerService
	gameService         *usecase.GameService
	matchService        *usecase.MatchService
	unscopedListEnabled bool
	logger              *logging.Logger
	validator           *validator.Validate
}

type HandlerOptions struct {
	// UnscopedListEnabled exposes the get-all listings that ignore ownership.
	UnscopedListEnabled bool
}

func NewHandler(
	sessionService *usecase.SessionService,
	competitionService *usecase.CompetitionService,
	playerService *usecase.PlayerService,
	gameService *usecase.GameService,
	matchService *usecase.MatchService,
	opts HandlerOptions,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		sessionService:      sessionService,
		competitionService:  competitionService,
		playerService:       playerService,
		gameService:         gameService,
		matchService:        matchService,
		unscopedListEnabled: opts.UnscopedListEnabled,
		logger:              logger,
		validator:           newValidator(),
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return &usecase.ValidationError{Field: first.Field(), Reason: "failed " + first.Tag() + " check"}
		}
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeBody reads a JSON object into dst. An empty body leaves dst untouched
// when allowEmpty is set.
func decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// scopeAll reports whether the caller asked for the unscoped listing.
func (h *Handler) scopeAll(r *http.Request) (bool, error) {
	scope := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("scope")))
	switch scope {
	case "", "mine":
		return false, nil
	case "all":
		if !h.unscopedListEnabled {
			return false, fmt.Errorf("%w: unscoped listing is disabled", usecase.ErrForbidden)
		}
		return true, nil
	default:
		return false, fmt.Errorf("%w: unknown scope %q", usecase.ErrInvalidInput, scope)
	}
}

func queryBool(r *http.Request, key string) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", usecase.ErrInvalidInput, key)
	}
	return v, nil
}
