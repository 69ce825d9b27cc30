package service

import (
	"context"
	"errors"

	"github.com/coverline/agency-api/internal/cache"
	"github.com/coverline/agency-api/internal/domain"
	"go.uber.org/zap"
)

// DashboardService serves the per-agency aggregate snapshot, cache
// first. The snapshot is allowed to be transiently stale; a refresh
// forces an authoritative renewals recount before reading.
type DashboardService struct {
	metrics *MetricsService
	cache   *cache.Cache
	logger  *zap.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(metrics *MetricsService, dashboardCache *cache.Cache, logger *zap.Logger) *DashboardService {
	return &DashboardService{metrics: metrics, cache: dashboardCache, logger: logger}
}

// Metrics returns the agency's dashboard snapshot.
func (s *DashboardService) Metrics(ctx context.Context, agencyID string, refresh bool) (*domain.MetricsSnapshot, error) {
	if refresh {
		s.metrics.RecalculateRenewals(ctx, agencyID)
	} else {
		var cached domain.MetricsSnapshot
		err := s.cache.GetDashboard(ctx, agencyID, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed",
				zap.String("agency_id", agencyID),
				zap.Error(err),
			)
		}
	}

	snapshot, err := s.metrics.Snapshot(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetDashboard(ctx, agencyID, snapshot); err != nil {
		s.logger.Warn("dashboard cache write failed",
			zap.String("agency_id", agencyID),
			zap.Error(err),
		)
	}
	return snapshot, nil
}
