package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	accountentity "github.com/vadim/infra-metric/internal/domain/account/entity"
	syncentity "github.com/vadim/infra-metric/internal/domain/sync/entity"
	"github.com/vadim/infra-metric/internal/httpx/response"
)

// handleError maps domain errors to HTTP responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var cooldown *syncentity.CooldownError

	switch {
	case errors.Is(err, accountentity.ErrUnknownDimension),
		errors.Is(err, accountentity.ErrUnknownView),
		errors.Is(err, accountentity.ErrUnknownFilter),
		errors.Is(err, accountentity.ErrInvalidThreshold),
		errors.Is(err, accountentity.ErrInvalidTarget):
		response.BadRequest(w, err.Error())
	case errors.Is(err, accountentity.ErrUnknownReport):
		response.NotFound(w, err.Error())
	case errors.Is(err, accountentity.ErrArchiveDisabled):
		response.ServiceUnavailable(w, err.Error())
	case errors.Is(err, syncentity.ErrSyncInProgress):
		response.Conflict(w, err.Error())
	case errors.As(err, &cooldown):
		response.TooManyRequests(w, err.Error(), cooldown.Remaining)
	case errors.Is(err, syncentity.ErrRemoteSync):
		response.BadGateway(w, err.Error())
	default:
		logger.Error("request failed", "error", err)
		response.InternalError(w, "internal error")
	}
}

// queryInt64 parses an optional non-negative integer query parameter
func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return v, nil
}
