package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/nikdesigns/esports-track/internal/platform/fetch"
	"github.com/nikdesigns/esports-track/internal/usecase"
)

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	body := errorBody{Error: err.Error()}
	if statusErr, ok := fetch.AsStatusError(err); ok && statusErr.Body != "" {
		body.Details = statusErr.Body
	}
	writeJSON(ctx, w, statusFor(err), body)
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrNotConfigured):
		return http.StatusInternalServerError
	case errors.Is(err, usecase.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
