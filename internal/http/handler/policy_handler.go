package handler

import (
	"errors"
	"net/http"

	"github.com/coverline/agency-api/internal/mapper"
	"github.com/coverline/agency-api/internal/repository"
	"github.com/coverline/agency-api/internal/service"
	"github.com/coverline/agency-api/internal/tenant"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PolicyHandler handles policy endpoints
type PolicyHandler struct {
	policies *service.PolicyService
	logger   *zap.Logger
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(policies *service.PolicyService, logger *zap.Logger) *PolicyHandler {
	return &PolicyHandler{policies: policies, logger: logger}
}

// ListByCustomer handles GET /api/v1/customers/{id}/policies
func (h *PolicyHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())

	customerID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	policies, err := h.policies.ListByCustomer(r.Context(), tc.AgencyID, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("failed to list policies", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to list policies")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"data": mapper.ToPolicyDTOs(policies),
	})
}

// ListRenewals handles GET /api/v1/policies/renewals
func (h *PolicyHandler) ListRenewals(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())

	policies, err := h.policies.ListUpcomingRenewals(r.Context(), tc.AgencyID)
	if err != nil {
		h.logger.Error("failed to list renewals", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to list renewals")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"data": mapper.ToPolicyDTOs(policies),
	})
}
