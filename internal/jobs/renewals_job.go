package jobs

import (
	"context"
	"time"

	"github.com/coverline/agency-api/internal/repository"
	"github.com/coverline/agency-api/internal/service"
	"go.uber.org/zap"
)

// RenewalsJob periodically recomputes each agency's upcoming-renewals
// count. The count compares expiration dates against "now", so it
// drifts between recomputations; this job is the authoritative
// correction path.
type RenewalsJob struct {
	metrics     *service.MetricsService
	metricsRepo *repository.MetricsRepository
	logger      *zap.Logger
}

// NewRenewalsJob creates a new renewals recomputation job
func NewRenewalsJob(metrics *service.MetricsService, metricsRepo *repository.MetricsRepository, logger *zap.Logger) *RenewalsJob {
	return &RenewalsJob{
		metrics:     metrics,
		metricsRepo: metricsRepo,
		logger:      logger,
	}
}

// Run recomputes renewals for every agency holding a snapshot.
func (j *RenewalsJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	agencyIDs, err := j.metricsRepo.ListAgencyIDs(ctx)
	if err != nil {
		j.logger.Error("failed to list agencies for renewals recompute", zap.Error(err))
		return
	}

	for _, agencyID := range agencyIDs {
		j.metrics.RecalculateRenewals(ctx, agencyID)
	}
	j.logger.Info("renewals recomputed", zap.Int("agencies", len(agencyIDs)))
}
