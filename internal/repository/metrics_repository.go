package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coverline/agency-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MetricsRepository maintains the per-agency metrics snapshot.
type MetricsRepository struct {
	db *gorm.DB
}

// NewMetricsRepository creates a new metrics repository
func NewMetricsRepository(db *gorm.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// ensure lazily creates the agency's snapshot with zero values.
func (r *MetricsRepository) ensure(ctx context.Context, agencyID string) error {
	snapshot := domain.MetricsSnapshot{AgencyID: agencyID, UpdatedAt: time.Now().UTC()}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&snapshot).Error
	if err != nil {
		return fmt.Errorf("failed to initialize metrics snapshot: %w", err)
	}
	return nil
}

// IncrementCustomerCount atomically adds delta to the customer count.
func (r *MetricsRepository) IncrementCustomerCount(ctx context.Context, agencyID string, delta int64) error {
	if err := r.ensure(ctx, agencyID); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).
		Model(&domain.MetricsSnapshot{}).
		Where("agency_id = ?", agencyID).
		Updates(map[string]interface{}{
			"customer_count": gorm.Expr("customer_count + ?", delta),
			"updated_at":     time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to increment customer count: %w", err)
	}
	return nil
}

// AddPremium atomically adds delta to the total premium.
func (r *MetricsRepository) AddPremium(ctx context.Context, agencyID string, delta float64) error {
	if err := r.ensure(ctx, agencyID); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).
		Model(&domain.MetricsSnapshot{}).
		Where("agency_id = ?", agencyID).
		Updates(map[string]interface{}{
			"total_premium": gorm.Expr("total_premium + ?", delta),
			"updated_at":    time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to add premium: %w", err)
	}
	return nil
}

// SetUpcomingRenewals overwrites the cached renewals count with an
// authoritative recomputed value.
func (r *MetricsRepository) SetUpcomingRenewals(ctx context.Context, agencyID string, count int64) error {
	if err := r.ensure(ctx, agencyID); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).
		Model(&domain.MetricsSnapshot{}).
		Where("agency_id = ?", agencyID).
		Updates(map[string]interface{}{
			"upcoming_renewals": count,
			"updated_at":        time.Now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to set upcoming renewals: %w", err)
	}
	return nil
}

// Get returns the agency's snapshot, or a zero snapshot when none
// exists yet.
func (r *MetricsRepository) Get(ctx context.Context, agencyID string) (*domain.MetricsSnapshot, error) {
	var snapshot domain.MetricsSnapshot
	err := r.db.WithContext(ctx).
		Where("agency_id = ?", agencyID).
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.MetricsSnapshot{AgencyID: agencyID}, nil
		}
		return nil, fmt.Errorf("failed to get metrics snapshot: %w", err)
	}
	return &snapshot, nil
}

// ListAgencyIDs returns every agency holding a snapshot. The renewals
// job iterates these.
func (r *MetricsRepository) ListAgencyIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.MetricsSnapshot{}).
		Pluck("agency_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list agencies: %w", err)
	}
	return ids, nil
}
