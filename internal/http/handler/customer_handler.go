package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/coverline/agency-api/internal/domain"
	"github.com/coverline/agency-api/internal/mapper"
	"github.com/coverline/agency-api/internal/repository"
	"github.com/coverline/agency-api/internal/service"
	"github.com/coverline/agency-api/internal/tenant"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	customers *service.CustomerService
	logger    *zap.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customers *service.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{customers: customers, logger: logger}
}

// List handles GET /api/v1/customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	search := r.URL.Query().Get("search")

	customers, total, err := h.customers.List(r.Context(), tc.AgencyID, search, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list customers", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	respondJSON(w, http.StatusOK, domain.PaginatedResponse{
		Data:       mapper.ToCustomerDTOs(customers),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// GetByID handles GET /api/v1/customers/{id}
func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	customer, err := h.customers.GetByID(r.Context(), tc.AgencyID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("failed to get customer", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to get customer")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToCustomerDTO(customer))
}

// Create handles POST /api/v1/customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())

	var req domain.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	customer, err := h.customers.Create(r.Context(), tc.AgencyID, &req)
	if err != nil {
		h.logger.Error("failed to create customer", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to create customer")
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToCustomerDTO(customer))
}

// Update handles PUT /api/v1/customers/{id}
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var req domain.UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	customer, err := h.customers.Update(r.Context(), tc.AgencyID, id, &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("failed to update customer", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to update customer")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToCustomerDTO(customer))
}

// Delete handles DELETE /api/v1/customers/{id}
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	if err := h.customers.Delete(r.Context(), tc.AgencyID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "customer not found")
			return
		}
		h.logger.Error("failed to delete customer", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to delete customer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MatchSuggestions handles POST /api/v1/customers/matches. It scores a
// prospective customer against the agency's book and returns up to
// three fuzzy candidates for a manual merge decision.
func (h *CustomerHandler) MatchSuggestions(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())

	var req domain.MatchSuggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	customers, matches, err := h.customers.MatchSuggestions(r.Context(), tc.AgencyID, &req)
	if err != nil {
		h.logger.Error("failed to compute match suggestions", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "failed to compute match suggestions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": mapper.ToMatchSuggestionDTOs(customers, matches),
	})
}
