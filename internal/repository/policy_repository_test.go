package repository

import (
	"context"
	"testing"
	"time"

	"github.com/coverline/agency-api/internal/domain"
	"github.com/coverline/agency-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/google/uuid"
)

func seedPolicy(t *testing.T, repo *PolicyRepository, agencyID string, customerID uuid.UUID, status domain.PolicyStatus, expiration time.Time, premium float64) *domain.Policy {
	t.Helper()
	p := &domain.Policy{
		CustomerID:       customerID,
		AgencyID:         agencyID,
		PolicyType:       "Personal Auto",
		EffectiveDate:    expiration.AddDate(-1, 0, 0),
		ExpirationDate:   expiration,
		InsuranceCompany: "Acme Ins",
		Premium:          premium,
		Status:           status,
	}
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestPolicyRepositoryListByCustomer(t *testing.T) {
	db := testutil.NewTestDB(t)
	policies := NewPolicyRepository(db)
	customers := NewCustomerRepository(db)
	ctx := context.Background()

	customer := seedCustomer(t, customers, "agency-1", "John Smith")
	other := seedCustomer(t, customers, "agency-1", "Maria Garcia")

	now := time.Now().UTC()
	seedPolicy(t, policies, "agency-1", customer.ID, domain.PolicyStatusActive, now.AddDate(0, 6, 0), 1200)
	seedPolicy(t, policies, "agency-1", customer.ID, domain.PolicyStatusActive, now.AddDate(1, 0, 0), 800)
	seedPolicy(t, policies, "agency-1", other.ID, domain.PolicyStatusActive, now.AddDate(0, 3, 0), 500)

	got, err := policies.ListByCustomer(ctx, "agency-1", customer.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestPolicyRepositoryUpcomingRenewals(t *testing.T) {
	db := testutil.NewTestDB(t)
	policies := NewPolicyRepository(db)
	customers := NewCustomerRepository(db)
	ctx := context.Background()

	customer := seedCustomer(t, customers, "agency-1", "John Smith")
	now := time.Now().UTC()

	// inside the 30 day window
	seedPolicy(t, policies, "agency-1", customer.ID, domain.PolicyStatusActive, now.AddDate(0, 0, 10), 1200)
	seedPolicy(t, policies, "agency-1", customer.ID, domain.PolicyStatusActive, now.AddDate(0, 0, 29), 900)
	// outside the window
	seedPolicy(t, policies, "agency-1", customer.ID, domain.PolicyStatusActive, now.AddDate(0, 0, 45), 700)
	// expired already
	seedPolicy(t, policies, "agency-1", customer.ID, domain.PolicyStatusActive, now.AddDate(0, 0, -5), 400)
	// inactive policies never count
	seedPolicy(t, policies, "agency-1", customer.ID, domain.PolicyStatusInactive, now.AddDate(0, 0, 10), 300)
	// other agencies never count
	seedPolicy(t, policies, "agency-2", customer.ID, domain.PolicyStatusActive, now.AddDate(0, 0, 10), 250)

	count, err := policies.CountUpcomingRenewals(ctx, "agency-1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	upcoming, err := policies.ListUpcomingRenewals(ctx, "agency-1", now)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	// soonest first
	assert.True(t, !upcoming[0].ExpirationDate.After(upcoming[1].ExpirationDate))
}

func TestPolicyRepositorySumActivePremium(t *testing.T) {
	db := testutil.NewTestDB(t)
	policies := NewPolicyRepository(db)
	customers := NewCustomerRepository(db)
	ctx := context.Background()

	customer := seedCustomer(t, customers, "agency-1", "John Smith")
	now := time.Now().UTC()

	seedPolicy(t, policies, "agency-1", customer.ID, domain.PolicyStatusActive, now.AddDate(1, 0, 0), 1200)
	seedPolicy(t, policies, "agency-1", customer.ID, domain.PolicyStatusActive, now.AddDate(1, 0, 0), 800.50)
	seedPolicy(t, policies, "agency-1", customer.ID, domain.PolicyStatusInactive, now.AddDate(1, 0, 0), 9999)

	total, err := policies.SumActivePremium(ctx, "agency-1")
	require.NoError(t, err)
	assert.InDelta(t, 2000.50, total, 0.001)

	// empty agency sums to zero
	zero, err := policies.SumActivePremium(ctx, "agency-9")
	require.NoError(t, err)
	assert.Zero(t, zero)
}
