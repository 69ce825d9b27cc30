package service

import (
	"context"
	"time"

	"github.com/coverline/agency-api/internal/domain"
	"github.com/coverline/agency-api/internal/repository"
	"github.com/google/uuid"
)

// PolicyService handles policy reads.
type PolicyService struct {
	customers *repository.CustomerRepository
	policies  *repository.PolicyRepository
}

// NewPolicyService creates a new policy service
func NewPolicyService(customers *repository.CustomerRepository, policies *repository.PolicyRepository) *PolicyService {
	return &PolicyService{customers: customers, policies: policies}
}

// ListByCustomer returns a customer's policies, verifying the customer
// belongs to the agency first.
func (s *PolicyService) ListByCustomer(ctx context.Context, agencyID string, customerID uuid.UUID) ([]domain.Policy, error) {
	if _, err := s.customers.GetByID(ctx, agencyID, customerID); err != nil {
		return nil, err
	}
	return s.policies.ListByCustomer(ctx, agencyID, customerID)
}

// ListUpcomingRenewals returns the agency's active policies expiring
// within the renewal window, soonest first.
func (s *PolicyService) ListUpcomingRenewals(ctx context.Context, agencyID string) ([]domain.Policy, error) {
	return s.policies.ListUpcomingRenewals(ctx, agencyID, time.Now().UTC())
}
