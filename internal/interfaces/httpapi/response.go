package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/mba-league/mbabot/internal/usecase"
)

// responseEnvelope is the bridge wire format. Business failures ride a
// 200 with success=false so side-channel callers can branch on the
// message without parsing status codes.
type responseEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, http.StatusOK, responseEnvelope{
		Success: true,
		Data:    data,
	})
}

// writeFailure maps usecase sentinels to a success=false envelope and
// everything else to an opaque 500.
func writeFailure(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeFailure")
	defer span.End()

	if !isBusinessError(err) {
		writeInternalError(ctx, w)
		return
	}

	writeJSON(ctx, w, http.StatusOK, responseEnvelope{
		Success: false,
		Message: err.Error(),
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, responseEnvelope{
		Success: false,
		Message: "internal server error",
	})
}

func writeUnauthorized(ctx context.Context, w http.ResponseWriter, message string) {
	ctx, span := startSpan(ctx, "httpapi.writeUnauthorized")
	defer span.End()

	writeJSON(ctx, w, http.StatusUnauthorized, responseEnvelope{
		Success: false,
		Message: message,
	})
}

func writeUnavailable(ctx context.Context, w http.ResponseWriter, message string) {
	ctx, span := startSpan(ctx, "httpapi.writeUnavailable")
	defer span.End()

	writeJSON(ctx, w, http.StatusServiceUnavailable, responseEnvelope{
		Success: false,
		Message: message,
	})
}

var businessErrors = []error{
	usecase.ErrInvalidInput,
	usecase.ErrNotFound,
	usecase.ErrUnauthorized,
	usecase.ErrDependencyUnavailable,
	usecase.ErrAlreadyRostered,
	usecase.ErrIneligible,
	usecase.ErrRosterFull,
	usecase.ErrNotRostered,
	usecase.ErrDemandLimitReached,
	usecase.ErrInvalidTrade,
	usecase.ErrSameTeam,
	usecase.ErrDuplicateProposal,
	usecase.ErrDeliveryFailed,
}

func isBusinessError(err error) bool {
	for _, sentinel := range businessErrors {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
