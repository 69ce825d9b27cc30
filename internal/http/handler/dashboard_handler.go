package handler

import (
	"net/http"

	"github.com/coverline/agency-api/internal/mapper"
	"github.com/coverline/agency-api/internal/service"
	"github.com/coverline/agency-api/internal/tenant"
	"go.uber.org/zap"
)

// DashboardHandler serves aggregate metrics
type DashboardHandler struct {
	dashboard *service.DashboardService
	logger    *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// Metrics handles GET /api/v1/dashboard/metrics. ?refresh=true forces
// an authoritative renewals recount before reading.
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())

	refresh := r.URL.Query().Get("refresh") == "true"

	snapshot, err := h.dashboard.Metrics(r.Context(), tc.AgencyID, refresh)
	if err != nil {
		h.logger.Error("failed to load dashboard metrics", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to load dashboard metrics")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToMetricsDTO(snapshot))
}
