package service

import (
	"context"
	"time"

	"github.com/coverline/agency-api/internal/cache"
	"github.com/coverline/agency-api/internal/domain"
	"github.com/coverline/agency-api/internal/repository"
	"go.uber.org/zap"
)

// MetricsService keeps the per-agency aggregate snapshot in step with
// customer and policy writes. Aggregate updates are best effort: a
// failed metrics write is logged and swallowed, never surfaced to the
// operation that triggered it.
type MetricsService struct {
	metrics  *repository.MetricsRepository
	policies *repository.PolicyRepository
	cache    *cache.Cache
	logger   *zap.Logger
}

// NewMetricsService creates a new metrics service
func NewMetricsService(
	metrics *repository.MetricsRepository,
	policies *repository.PolicyRepository,
	dashboardCache *cache.Cache,
	logger *zap.Logger,
) *MetricsService {
	return &MetricsService{
		metrics:  metrics,
		policies: policies,
		cache:    dashboardCache,
		logger:   logger,
	}
}

// bestEffort is the single swallow-and-log policy for aggregate writes.
func (s *MetricsService) bestEffort(agencyID, operation string, fn func() error) {
	if err := fn(); err != nil {
		s.logger.Warn("metrics update failed",
			zap.String("agency_id", agencyID),
			zap.String("operation", operation),
			zap.Error(err),
		)
	}
}

// IncrementCustomerCount applies a customer-count delta.
func (s *MetricsService) IncrementCustomerCount(ctx context.Context, agencyID string, delta int64) {
	if delta == 0 {
		return
	}
	s.bestEffort(agencyID, "increment_customer_count", func() error {
		return s.metrics.IncrementCustomerCount(ctx, agencyID, delta)
	})
	s.invalidate(ctx, agencyID)
}

// AddPremium applies a total-premium delta.
func (s *MetricsService) AddPremium(ctx context.Context, agencyID string, delta float64) {
	if delta == 0 {
		return
	}
	s.bestEffort(agencyID, "add_premium", func() error {
		return s.metrics.AddPremium(ctx, agencyID, delta)
	})
	s.invalidate(ctx, agencyID)
}

// ApplyImportDeltas applies the accumulated aggregate changes of one
// import run in a single update rather than one per row.
func (s *MetricsService) ApplyImportDeltas(ctx context.Context, agencyID string, newCustomers int64, newPremium float64, hasRenewals bool) {
	if newCustomers != 0 {
		s.bestEffort(agencyID, "increment_customer_count", func() error {
			return s.metrics.IncrementCustomerCount(ctx, agencyID, newCustomers)
		})
	}
	if newPremium != 0 {
		s.bestEffort(agencyID, "add_premium", func() error {
			return s.metrics.AddPremium(ctx, agencyID, newPremium)
		})
	}
	if hasRenewals {
		s.RecalculateRenewals(ctx, agencyID)
	}
	s.invalidate(ctx, agencyID)
}

// RecalculateRenewals overwrites the cached renewals count with an
// authoritative query. Renewal eligibility compares against "now",
// which drifts; this recomputation is the only path that writes the
// count. A failed query leaves the prior cached value in place.
func (s *MetricsService) RecalculateRenewals(ctx context.Context, agencyID string) {
	s.bestEffort(agencyID, "recalculate_renewals", func() error {
		count, err := s.policies.CountUpcomingRenewals(ctx, agencyID, time.Now().UTC())
		if err != nil {
			return err
		}
		return s.metrics.SetUpcomingRenewals(ctx, agencyID, count)
	})
	s.invalidate(ctx, agencyID)
}

// Snapshot returns the agency's current aggregate snapshot.
func (s *MetricsService) Snapshot(ctx context.Context, agencyID string) (*domain.MetricsSnapshot, error) {
	return s.metrics.Get(ctx, agencyID)
}

func (s *MetricsService) invalidate(ctx context.Context, agencyID string) {
	if err := s.cache.InvalidateDashboard(ctx, agencyID); err != nil {
		s.logger.Warn("dashboard cache invalidation failed",
			zap.String("agency_id", agencyID),
			zap.Error(err),
		)
	}
}
