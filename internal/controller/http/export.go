package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vadim/infra-metric/internal/domain/account/entity"
	"github.com/vadim/infra-metric/internal/domain/account/policy"
	"github.com/vadim/infra-metric/internal/httpx/response"
)

// ExportPolicy defines the export operations
type ExportPolicy interface {
	Export(ctx context.Context, in policy.ExportInput) (*policy.ExportOutput, error)
	Archive(ctx context.Context, in policy.ExportInput) (*policy.ArchiveResult, error)
}

// ExportHandler handles CSV export requests
type ExportHandler struct {
	policy ExportPolicy
	logger *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(p ExportPolicy, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{policy: p, logger: logger}
}

// RegisterRoutes registers export routes
func (h *ExportHandler) RegisterRoutes(r chi.Router) {
	r.Route("/export", func(r chi.Router) {
		r.Get("/{report}.csv", h.Download())
		r.Post("/{report}/archive", h.Archive())
	})
}

// Download handles GET /export/{report}.csv
func (h *ExportHandler) Download() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := parseExportInput(r)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}

		out, err := h.policy.Export(r.Context(), in)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}
		response.CSV(w, out.Filename, out.Body)
	}
}

// Archive handles POST /export/{report}/archive
func (h *ExportHandler) Archive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := parseExportInput(r)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}

		res, err := h.policy.Archive(r.Context(), in)
		if err != nil {
			handleError(w, h.logger, err)
			return
		}

		h.logger.Info("export archived", "report", in.Report, "key", res.Key, "rows", res.Rows)
		response.Created(w, res)
	}
}

// parseExportInput reads the report name and the same query parameters the
// matching JSON endpoints accept
func parseExportInput(r *http.Request) (policy.ExportInput, error) {
	in := policy.ExportInput{Report: chi.URLParam(r, "report")}
	query := r.URL.Query()

	if raw := query.Get("dimension"); raw != "" && in.Report != policy.ReportAccounts {
		dim, err := entity.ParseDimension(raw)
		if err != nil {
			return in, err
		}
		in.Dimension = dim
	}
	view, err := entity.ParseView(query.Get("view"))
	if err != nil {
		return in, err
	}
	in.View = view

	threshold, err := queryInt64(r, "threshold")
	if err != nil {
		return in, entity.ErrInvalidThreshold
	}
	in.Threshold = threshold

	if in.Report == policy.ReportAccounts {
		dq, err := parseDrilldown(r)
		if err != nil {
			return in, err
		}
		in.Drilldown = dq
	}
	return in, nil
}
