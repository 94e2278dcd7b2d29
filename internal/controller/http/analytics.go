package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/infra-metric/internal/domain/account/analytics"
	"github.com/vadim/infra-metric/internal/domain/account/entity"
	"github.com/vadim/infra-metric/internal/domain/account/service"
	syncentity "github.com/vadim/infra-metric/internal/domain/sync/entity"
	"github.com/vadim/infra-metric/internal/httpx/request"
	"github.com/vadim/infra-metric/internal/httpx/response"
)

// AnalyticsService defines the read operations over the account snapshot
// Interface is defined by consumer (handler), not provider (service)
type AnalyticsService interface {
	Summary() entity.Summary
	Groups(dim entity.Dimension, view entity.View, threshold int64) ([]entity.GroupAggregate, error)
	NoReplies(dim entity.Dimension, threshold int64) (entity.NoReplyReport, error)
	Capacity(ctx context.Context) (service.CapacityPlan, error)
	PlanCapacity(targets map[string]int64) service.CapacityPlan
	SetDailyTarget(ctx context.Context, client string, target int64) error
	Search(query string) []entity.AccountRecord
	Drilldown(q service.DrilldownQuery) ([]entity.AccountRecord, error)
}

// FreshnessProvider reports how old the served data is
type FreshnessProvider interface {
	Freshness() syncentity.FreshnessReport
}

// AnalyticsHandler handles HTTP requests for reports, capacity and search
type AnalyticsHandler struct {
	svc       AnalyticsService
	freshness FreshnessProvider
	logger    *slog.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(svc AnalyticsService, freshness FreshnessProvider, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, freshness: freshness, logger: logger}
}

// RegisterRoutes registers analytics routes
func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/summary", h.Summary())
		r.Get("/groups/{dimension}", h.Groups())
		r.Get("/no-replies", h.NoReplies())
	})
	r.Route("/capacity", func(r chi.Router) {
		r.Get("/", h.Capacity())
		r.Post("/plan", h.Plan())
		r.Put("/targets/{client}", h.SetTarget())
	})
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/search", h.Search())
		r.Get("/drilldown", h.Drilldown())
	})
}

// ReportResponse wraps report data with the freshness of the snapshot
type ReportResponse struct {
	Data      any                        `json:"data"`
	Freshness syncentity.FreshnessReport `json:"freshness"`
}

func (h *AnalyticsHandler) report(w http.ResponseWriter, data any) {
	response.OK(w, ReportResponse{Data: data, Freshness: h.freshness.Freshness()})
}

// Summary handles GET /analytics/summary
func (h *AnalyticsHandler) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.report(w, h.svc.Summary())
	}
}

// Groups handles GET /analytics/groups/{dimension}
func (h *AnalyticsHandler) Groups() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dim, err := entity.ParseDimension(chi.URLParam(r, "dimension"))
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		view, err := entity.ParseView(r.URL.Query().Get("view"))
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		threshold, err := queryInt64(r, "threshold")
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		groups, err := h.svc.Groups(dim, view, threshold)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		h.report(w, groups)
	}
}

// NoReplies handles GET /analytics/no-replies
func (h *AnalyticsHandler) NoReplies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dimParam := r.URL.Query().Get("dimension")
		if dimParam == "" {
			dimParam = string(entity.DimensionProvider)
		}
		dim, err := entity.ParseDimension(dimParam)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		threshold, err := queryInt64(r, "threshold")
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		report, err := h.svc.NoReplies(dim, threshold)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		h.report(w, report)
	}
}

// Capacity handles GET /capacity
func (h *AnalyticsHandler) Capacity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, err := h.svc.Capacity(r.Context())
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		h.report(w, plan)
	}
}

// PlanRequest represents the request body for planning against supplied targets
type PlanRequest struct {
	Targets map[string]int64 `json:"targets" validate:"required,dive,gte=0"`
}

// Plan handles POST /capacity/plan
func (h *AnalyticsHandler) Plan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PlanRequest
		if err := request.Decode(r, &req); err != nil {
			response.BadRequest(w, err.Error())
			return
		}
		h.report(w, h.svc.PlanCapacity(req.Targets))
	}
}

// TargetRequest represents the request body for storing a daily target
type TargetRequest struct {
	DailyTarget *int64 `json:"daily_target" validate:"required,gte=0"`
}

// TargetResponse echoes the stored target
type TargetResponse struct {
	ClientName  string `json:"client_name"`
	DailyTarget int64  `json:"daily_target"`
}

// SetTarget handles PUT /capacity/targets/{client}
func (h *AnalyticsHandler) SetTarget() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		client, err := url.PathUnescape(chi.URLParam(r, "client"))
		if err != nil {
			response.BadRequest(w, "invalid client name")
			return
		}

		var req TargetRequest
		if err := request.Decode(r, &req); err != nil {
			response.BadRequest(w, err.Error())
			return
		}

		if err := h.svc.SetDailyTarget(r.Context(), client, *req.DailyTarget); err != nil {
			handleError(w, h.logger, err)
			return
		}
		response.OK(w, TargetResponse{ClientName: strings.TrimSpace(client), DailyTarget: *req.DailyTarget})
	}
}

// SearchResponse is a capped search result
type SearchResponse struct {
	Query    string                 `json:"query"`
	Accounts []entity.AccountRecord `json:"accounts"`
	Limit    int                    `json:"limit"`
}

// Search handles GET /accounts/search
func (h *AnalyticsHandler) Search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		h.report(w, SearchResponse{
			Query:    q,
			Accounts: h.svc.Search(q),
			Limit:    analytics.MaxSearchResults,
		})
	}
}

// Drilldown handles GET /accounts/drilldown
func (h *AnalyticsHandler) Drilldown() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseDrilldown(r)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}

		accounts, err := h.svc.Drilldown(q)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		h.report(w, accounts)
	}
}

func parseDrilldown(r *http.Request) (service.DrilldownQuery, error) {
	query := r.URL.Query()

	var q service.DrilldownQuery
	if raw := query.Get("dimension"); raw != "" {
		dim, err := entity.ParseDimension(raw)
		if err != nil {
			return q, err
		}
		q.Dimension = dim
		q.Key = query.Get("key")
	}
	minSent, err := queryInt64(r, "min_sent")
	if err != nil {
		return q, entity.ErrInvalidThreshold
	}
	q.MinSent = minSent
	q.Filter = query.Get("filter")
	q.Query = query.Get("q")
	return q, nil
}
