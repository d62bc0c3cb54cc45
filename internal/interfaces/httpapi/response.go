package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/competition-manager/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "competition-manager"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain   string `json:"domain"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

// errorRules is walked in order. Several kinds also wrap ErrInvalidInput or
// ErrAuth, so the specific ones come first.
var errorRules = []struct {
	target error
	mapped mappedError
}{
	{usecase.ErrInvalidStatusTransition, mappedError{http.StatusConflict, "invalidStatusTransition", "FAILED_PRECONDITION"}},
	{usecase.ErrMissingInput, mappedError{http.StatusBadRequest, "missingCredentials", "INVALID_ARGUMENT"}},
	{usecase.ErrRegistrationFailed, mappedError{http.StatusBadRequest, "registrationFailed", "INVALID_ARGUMENT"}},
	{usecase.ErrInvalidCredentials, mappedError{http.StatusUnauthorized, "invalidCredentials", "UNAUTHENTICATED"}},
	{usecase.ErrNoIdentityReturned, mappedError{http.StatusUnauthorized, "noIdentityReturned", "UNAUTHENTICATED"}},
	{usecase.ErrInvalidInput, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrNotFound, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrUnauthorized, mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{usecase.ErrForbidden, mappedError{http.StatusForbidden, "forbidden", "PERMISSION_DENIED"}},
	{usecase.ErrDependencyUnavailable, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
	{usecase.ErrAuth, mappedError{http.StatusUnauthorized, "authFailed", "UNAUTHENTICATED"}},
}

var internalError = mappedError{http.StatusInternalServerError, "internalError", "INTERNAL"}

const internalErrorMessage = "internal server error"

func mapError(ctx context.Context, err error) mappedError {
	_, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	for _, rule := range errorRules {
		if errors.Is(err, rule.target) {
			return rule.mapped
		}
	}
	return internalError
}

func errorEnvelope(mapped mappedError, message, location string) googleResponseEnvelope {
	return googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors: []googleErrorItem{{
				Domain:   errorDomain,
				Reason:   mapped.Reason,
				Message:  message,
				Location: location,
			}},
		},
	}
}

// writeError renders err in the error envelope. Unclassified errors are
// reported without their text.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	recordFailure(ctx, mapped.HTTPStatus, err)

	message := err.Error()
	if mapped == internalError {
		message = internalErrorMessage
	}
	var location string
	var validationErr *usecase.ValidationError
	if errors.As(err, &validationErr) {
		location = requestField(validationErr.Field)
	}

	writeJSON(ctx, w, mapped.HTTPStatus, errorEnvelope(mapped, message, location))
}

// storedColumns maps stored column names that differ from the JSON field
// a client sent.
var storedColumns = map[string]string{
	"nome":          "name",
	"apelido":       "nickname",
	"celular":       "phone",
	"competicao_id": "competition_id",
}

func requestField(field string) string {
	if name, ok := storedColumns[field]; ok {
		return name
	}
	return field
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, internalError.HTTPStatus, errorEnvelope(internalError, internalErrorMessage, ""))
}
