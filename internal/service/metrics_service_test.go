package service

import (
	"context"
	"testing"
	"time"

	"github.com/coverline/agency-api/internal/domain"
	"github.com/coverline/agency-api/internal/repository"
	"github.com/coverline/agency-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newMetricsFixture(t *testing.T) (*MetricsService, *repository.MetricsRepository, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	metricsRepo := repository.NewMetricsRepository(db)
	policies := repository.NewPolicyRepository(db)
	return NewMetricsService(metricsRepo, policies, nil, zap.NewNop()), metricsRepo, db
}

func TestMetricsServiceApplyImportDeltas(t *testing.T) {
	svc, repo, _ := newMetricsFixture(t)
	ctx := context.Background()

	svc.ApplyImportDeltas(ctx, "agency-1", 3, 2500.50, false)

	snapshot, err := repo.Get(ctx, "agency-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), snapshot.CustomerCount)
	assert.InDelta(t, 2500.50, snapshot.TotalPremium, 0.001)
	assert.Zero(t, snapshot.UpcomingRenewals)
}

func TestMetricsServiceRecalculateRenewals(t *testing.T) {
	svc, repo, db := newMetricsFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	customerID := seedImportedPolicy(t, db, "agency-1", domain.PolicyStatusActive, now.AddDate(0, 0, 10))
	seedImportedPolicyFor(t, db, "agency-1", customerID, domain.PolicyStatusActive, now.AddDate(0, 0, 60))

	svc.RecalculateRenewals(ctx, "agency-1")

	snapshot, err := repo.Get(ctx, "agency-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), snapshot.UpcomingRenewals)
}

func TestMetricsServiceRecalculateRenewalsFailureKeepsPriorValue(t *testing.T) {
	svc, repo, db := newMetricsFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.SetUpcomingRenewals(ctx, "agency-1", 4))

	// make the renewals query fail
	require.NoError(t, db.Migrator().DropTable(&domain.Policy{}))

	// must not panic or surface the error
	svc.RecalculateRenewals(ctx, "agency-1")

	snapshot, err := repo.Get(ctx, "agency-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), snapshot.UpcomingRenewals)
}

func TestMetricsServiceZeroDeltasAreNoops(t *testing.T) {
	svc, repo, _ := newMetricsFixture(t)
	ctx := context.Background()

	svc.IncrementCustomerCount(ctx, "agency-1", 0)
	svc.AddPremium(ctx, "agency-1", 0)

	snapshot, err := repo.Get(ctx, "agency-1")
	require.NoError(t, err)
	assert.Zero(t, snapshot.CustomerCount)
	assert.Zero(t, snapshot.TotalPremium)
}

func seedImportedPolicy(t *testing.T, db *gorm.DB, agencyID string, status domain.PolicyStatus, expiration time.Time) uuid.UUID {
	t.Helper()
	customer := &domain.Customer{AgencyID: agencyID, FullName: "Seed Customer", Status: domain.CustomerStatusActive}
	require.NoError(t, db.Create(customer).Error)
	seedImportedPolicyFor(t, db, agencyID, customer.ID, status, expiration)
	return customer.ID
}

func seedImportedPolicyFor(t *testing.T, db *gorm.DB, agencyID string, customerID uuid.UUID, status domain.PolicyStatus, expiration time.Time) {
	t.Helper()
	policy := &domain.Policy{
		CustomerID:       customerID,
		AgencyID:         agencyID,
		PolicyType:       "Personal Auto",
		EffectiveDate:    expiration.AddDate(-1, 0, 0),
		ExpirationDate:   expiration,
		InsuranceCompany: "Acme Ins",
		Premium:          100,
		Status:           status,
	}
	require.NoError(t, db.Create(policy).Error)
}
