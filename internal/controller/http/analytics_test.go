package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadim/infra-metric/internal/domain/account/entity"
	"github.com/vadim/infra-metric/internal/domain/account/policy"
	"github.com/vadim/infra-metric/internal/domain/account/service"
	"github.com/vadim/infra-metric/internal/domain/account/store"
	syncentity "github.com/vadim/infra-metric/internal/domain/sync/entity"
)

type staticTargets map[string]int64

func (s staticTargets) DailyTargets(ctx context.Context) (map[string]int64, error) {
	return s, nil
}

func (s staticTargets) SetDailyTarget(ctx context.Context, workspace string, target int64) error {
	s[workspace] = target
	return nil
}

type staticFreshness struct{}

func (staticFreshness) Freshness() syncentity.FreshnessReport {
	return syncentity.FreshnessReport{Classification: syncentity.FreshnessFresh, AgeSeconds: 60}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRecords() []entity.AccountRecord {
	return []entity.AccountRecord{
		{Email: "a1@acme.io", ClientName: "Acme", Provider: "Google", Reseller: "R1", AccountType: "Workspace",
			Status: entity.StatusConnected, DailyLimit: 40, VolumePerAccount: 100, TotalSent: 800, TotalReplied: 40},
		{Email: "a2@acme.io", ClientName: "Acme", Provider: "Google", Reseller: "R1", AccountType: "Workspace",
			Status: entity.StatusConnected, DailyLimit: 10, VolumePerAccount: 100, TotalSent: 200, TotalReplied: 0},
		{Email: "z@zeta.io", ClientName: "Zeta", Provider: "Outlook", Reseller: "R2", AccountType: "Microsoft",
			Status: entity.StatusFailed, TotalSent: 10, TotalReplied: 0},
	}
}

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	st := store.New()
	st.Replace(testRecords(), time.Now())
	svc := service.New(st, staticTargets{"Acme": 100}, true)

	r := chi.NewRouter()
	NewAnalyticsHandler(svc, staticFreshness{}, discardLogger()).RegisterRoutes(r)
	NewExportHandler(policy.New(svc, nil), discardLogger()).RegisterRoutes(r)
	return r
}

func doRequest(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, reader))
	return w
}

func decodeReport(t *testing.T, w *httptest.ResponseRecorder, data any) syncentity.FreshnessReport {
	t.Helper()
	var envelope struct {
		Data      json.RawMessage            `json:"data"`
		Freshness syncentity.FreshnessReport `json:"freshness"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, data))
	return envelope.Freshness
}

func TestSummaryHandler(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/analytics/summary", "")
	require.Equal(t, http.StatusOK, w.Code)

	var summary entity.Summary
	freshness := decodeReport(t, w, &summary)
	assert.Equal(t, 3, summary.AccountCount)
	assert.Equal(t, int64(1010), summary.TotalSent)
	assert.Equal(t, syncentity.FreshnessFresh, freshness.Classification)
}

func TestGroupsHandler(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/analytics/groups/client?view=total_sent", "")
	require.Equal(t, http.StatusOK, w.Code)

	var groups []entity.GroupAggregate
	decodeReport(t, w, &groups)
	require.Len(t, groups, 2)
	assert.Equal(t, "Acme", groups[0].Key)
	assert.Equal(t, 4.0, groups[0].OverallReplyRate)
}

func TestGroupsHandler_BadInput(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		target string
	}{
		{"unknown dimension", "/analytics/groups/planet"},
		{"unknown view", "/analytics/groups/provider?view=sideways"},
		{"bad threshold", "/analytics/groups/provider?threshold=abc"},
		{"negative threshold", "/analytics/groups/provider?threshold=-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestNoRepliesHandler(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/analytics/no-replies?dimension=client", "")
	require.Equal(t, http.StatusOK, w.Code)

	var report entity.NoReplyReport
	decodeReport(t, w, &report)
	assert.Equal(t, int64(150), report.Threshold)
	require.Len(t, report.Accounts, 1)
	assert.Equal(t, "a2@acme.io", report.Accounts[0].Email)
}

func TestCapacityHandler(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/capacity", "")
	require.Equal(t, http.StatusOK, w.Code)

	var plan service.CapacityPlan
	decodeReport(t, w, &plan)
	require.Len(t, plan.Clients, 2)
	assert.Equal(t, "Acme", plan.Clients[0].ClientName)
	assert.Equal(t, float64(50), plan.Clients[0].Shortfall)
	assert.Equal(t, float64(25), plan.Clients[0].UtilizationPercentage)
}

func TestPlanHandler(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/capacity/plan", `{"targets":{"Acme":20}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var plan service.CapacityPlan
	decodeReport(t, w, &plan)
	assert.Equal(t, float64(0), plan.Clients[0].Shortfall)
	assert.Equal(t, 0, plan.Totals.InsufficientClients)
}

func TestPlanHandler_RejectsNegativeTargets(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodPost, "/capacity/plan", `{"targets":{"Acme":-1}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetTargetHandler(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodPut, "/capacity/targets/Acme", `{"daily_target":200}`)
	require.Equal(t, http.StatusOK, w.Code)

	var stored TargetResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, TargetResponse{ClientName: "Acme", DailyTarget: 200}, stored)

	w = doRequest(r, http.MethodGet, "/capacity", "")
	require.Equal(t, http.StatusOK, w.Code)

	var plan service.CapacityPlan
	decodeReport(t, w, &plan)
	assert.Equal(t, float64(150), plan.Clients[0].Shortfall)
}

func TestSetTargetHandler_Validation(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing target", `{}`},
		{"negative target", `{"daily_target":-5}`},
		{"malformed body", `{"daily_target":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPut, "/capacity/targets/Acme", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSearchHandler(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/accounts/search?q=ACME", "")
	require.Equal(t, http.StatusOK, w.Code)

	var res SearchResponse
	decodeReport(t, w, &res)
	assert.Len(t, res.Accounts, 2)
	assert.Equal(t, 50, res.Limit)

	w = doRequest(r, http.MethodGet, "/accounts/search?q=a", "")
	decodeReport(t, w, &res)
	assert.Empty(t, res.Accounts)
	assert.NotNil(t, res.Accounts)
}

func TestDrilldownHandler(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(r, http.MethodGet, "/accounts/drilldown?dimension=client&key=Acme&filter=zero_replies&min_sent=50", "")
	require.Equal(t, http.StatusOK, w.Code)

	var accounts []entity.AccountRecord
	decodeReport(t, w, &accounts)
	require.Len(t, accounts, 1)
	assert.Equal(t, "a2@acme.io", accounts[0].Email)

	w = doRequest(r, http.MethodGet, "/accounts/drilldown?filter=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
