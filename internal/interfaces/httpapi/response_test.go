package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/competition-manager/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_StatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"status transition", fmt.Errorf("%w: already finished", usecase.ErrInvalidStatusTransition), http.StatusConflict},
		{"missing credentials", usecase.ErrMissingInput, http.StatusBadRequest},
		{"invalid credentials", fmt.Errorf("%w: %w", usecase.ErrInvalidCredentials, usecase.ErrInvalidInput), http.StatusUnauthorized},
		{"registration failed", fmt.Errorf("%w: %w", usecase.ErrRegistrationFailed, usecase.ErrInvalidInput), http.StatusBadRequest},
		{"validation", &usecase.ValidationError{Field: "name"}, http.StatusBadRequest},
		{"not found", usecase.ErrNotFound, http.StatusNotFound},
		{"unauthorized", usecase.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", usecase.ErrForbidden, http.StatusForbidden},
		{"store unavailable", &usecase.StoreError{Op: "select", Table: "players", Err: usecase.ErrDependencyUnavailable}, http.StatusServiceUnavailable},
		{"sign out unavailable", fmt.Errorf("%w: %w", usecase.ErrSignOutFailed, usecase.ErrDependencyUnavailable), http.StatusServiceUnavailable},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mapError(context.Background(), tc.err).HTTPStatus; got != tc.want {
				t.Fatalf("mapError(%v)=%d want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestWriteError_ValidationLocation(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, &usecase.ValidationError{Field: "nome"})

	var body struct {
		Error struct {
			Errors []struct {
				Location string `json:"location"`
			} `json:"errors"`
		} `json:"error"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if len(body.Error.Errors) != 1 || body.Error.Errors[0].Location != "nome" {
		t.Fatalf("expected location=nome, got %+v", body.Error.Errors)
	}
}

func TestWriteError_HidesUnclassifiedMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("dial tcp 10.0.0.5:5432: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if body.Error.Message != "internal server error" || body.Error.Status != "INTERNAL" {
		t.Fatalf("unexpected error body %+v", body.Error)
	}
}
