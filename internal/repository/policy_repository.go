package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/coverline/agency-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PolicyRepository handles policy data access
type PolicyRepository struct {
	db *gorm.DB
}

// NewPolicyRepository creates a new policy repository
func NewPolicyRepository(db *gorm.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// Create inserts a new policy
func (r *PolicyRepository) Create(ctx context.Context, policy *domain.Policy) error {
	if err := r.db.WithContext(ctx).Create(policy).Error; err != nil {
		return fmt.Errorf("failed to create policy: %w", err)
	}
	return nil
}

// ListByCustomer returns all policies owned by a customer. Customers
// hold at most a few dozen policies, so no pagination.
func (r *PolicyRepository) ListByCustomer(ctx context.Context, agencyID string, customerID uuid.UUID) ([]domain.Policy, error) {
	var policies []domain.Policy
	err := r.db.WithContext(ctx).
		Scopes(ScopeAgency(agencyID)).
		Where("customer_id = ?", customerID).
		Order("effective_date DESC").
		Find(&policies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	return policies, nil
}

// CountUpcomingRenewals counts active policies expiring within the
// renewal window from now. Cross-customer query over the denormalized
// agency_id column.
func (r *PolicyRepository) CountUpcomingRenewals(ctx context.Context, agencyID string, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Policy{}).
		Scopes(ScopeAgency(agencyID)).
		Where("status = ?", domain.PolicyStatusActive).
		Where("expiration_date >= ? AND expiration_date <= ?", now, now.Add(domain.RenewalWindow)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count upcoming renewals: %w", err)
	}
	return count, nil
}

// ListUpcomingRenewals returns the active policies expiring within the
// renewal window, soonest first.
func (r *PolicyRepository) ListUpcomingRenewals(ctx context.Context, agencyID string, now time.Time) ([]domain.Policy, error) {
	var policies []domain.Policy
	err := r.db.WithContext(ctx).
		Scopes(ScopeAgency(agencyID)).
		Where("status = ?", domain.PolicyStatusActive).
		Where("expiration_date >= ? AND expiration_date <= ?", now, now.Add(domain.RenewalWindow)).
		Order("expiration_date ASC").
		Find(&policies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming renewals: %w", err)
	}
	return policies, nil
}

// SumActivePremium totals the premium over active policies for an
// agency. Used when rebuilding a metrics snapshot from scratch.
func (r *PolicyRepository) SumActivePremium(ctx context.Context, agencyID string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&domain.Policy{}).
		Scopes(ScopeAgency(agencyID)).
		Where("status = ?", domain.PolicyStatusActive).
		Select("COALESCE(SUM(premium), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum premiums: %w", err)
	}
	return total, nil
}
