package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/infra-metric/internal/domain/sync/entity"
	"github.com/vadim/infra-metric/internal/httpx/response"
)

// SyncOrchestrator defines the sync operations exposed over HTTP
type SyncOrchestrator interface {
	Trigger(ctx context.Context, source entity.TriggerSource) (*entity.SyncResult, error)
	Status() entity.SyncJobStatus
	InFlight() bool
	CooldownRemaining() time.Duration
	Freshness() entity.FreshnessReport
	Subscribe() (<-chan entity.SyncJobStatus, func())
}

// SyncHistory reads past orchestrated attempts
type SyncHistory interface {
	RecentAttempts(ctx context.Context, limit int) ([]entity.SyncJobStatus, error)
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// SyncHandler handles manual sync triggers and status reads
type SyncHandler struct {
	orch         SyncOrchestrator
	history      SyncHistory
	writeTimeout time.Duration
	logger       *slog.Logger
}

// NewSyncHandler creates a new sync handler. writeTimeout bounds how long a
// manual trigger may hold its response open while the job runs.
func NewSyncHandler(orch SyncOrchestrator, history SyncHistory, writeTimeout time.Duration, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{orch: orch, history: history, writeTimeout: writeTimeout, logger: logger}
}

// RegisterRoutes registers sync routes. They must not sit behind a request timeout.
func (h *SyncHandler) RegisterRoutes(r chi.Router) {
	r.Route("/sync", func(r chi.Router) {
		r.Post("/", h.Trigger())
		r.Get("/status", h.Status())
		r.Get("/events", h.Events())
		r.Get("/history", h.History())
	})
}

// StatusResponse is the sync panel state
type StatusResponse struct {
	Job                      entity.SyncJobStatus   `json:"job"`
	InFlight                 bool                   `json:"in_flight"`
	CooldownRemainingSeconds int                    `json:"cooldown_remaining_seconds"`
	Freshness                entity.FreshnessReport `json:"freshness"`
}

func (h *SyncHandler) status() StatusResponse {
	return StatusResponse{
		Job:                      h.orch.Status(),
		InFlight:                 h.orch.InFlight(),
		CooldownRemainingSeconds: int(h.orch.CooldownRemaining().Seconds()),
		Freshness:                h.orch.Freshness(),
	}
}

// TriggerResponse is the outcome of a manual sync
type TriggerResponse struct {
	Result *entity.SyncResult `json:"result"`
	StatusResponse
}

// Trigger handles POST /sync
func (h *SyncHandler) Trigger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.writeTimeout > 0 {
			rc := http.NewResponseController(w)
			if err := rc.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
				h.logger.Debug("write deadline not supported", "error", err)
			}
		}

		result, err := h.orch.Trigger(r.Context(), entity.TriggerManual)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		response.OK(w, TriggerResponse{Result: result, StatusResponse: h.status()})
	}
}

// Status handles GET /sync/status
func (h *SyncHandler) Status() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, h.status())
	}
}

// History handles GET /sync/history
func (h *SyncHandler) History() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt64(r, "limit")
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}
		if limit == 0 {
			limit = defaultHistoryLimit
		}
		limit = min(limit, maxHistoryLimit)

		attempts, err := h.history.RecentAttempts(r.Context(), int(limit))
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		if attempts == nil {
			attempts = []entity.SyncJobStatus{}
		}
		response.OK(w, attempts)
	}
}

// Events handles GET /sync/events, streaming status transitions as server-sent events
func (h *SyncHandler) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		if err := rc.SetWriteDeadline(time.Time{}); err != nil {
			h.logger.Debug("write deadline not supported", "error", err)
		}

		ch, unsubscribe := h.orch.Subscribe()
		defer unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		if err := writeEvent(w, h.orch.Status()); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			h.logger.Warn("streaming unsupported", "error", err)
			return
		}

		for {
			select {
			case <-r.Context().Done():
				return
			case status, ok := <-ch:
				if !ok {
					return
				}
				if err := writeEvent(w, status); err != nil {
					return
				}
				if err := rc.Flush(); err != nil {
					return
				}
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, status entity.SyncJobStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: status\ndata: %s\n\n", data)
	return err
}
