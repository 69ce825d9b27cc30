package service

import (
	"context"
	"testing"

	"github.com/coverline/agency-api/internal/domain"
	"github.com/coverline/agency-api/internal/match"
	"github.com/coverline/agency-api/internal/repository"
	"github.com/coverline/agency-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type customerFixture struct {
	db         *gorm.DB
	svc        *CustomerService
	phoneIndex *repository.PhoneIndexRepository
	metrics    *repository.MetricsRepository
}

func newCustomerFixture(t *testing.T) *customerFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	customers := repository.NewCustomerRepository(db)
	policies := repository.NewPolicyRepository(db)
	phoneIndex := repository.NewPhoneIndexRepository(db)
	metricsRepo := repository.NewMetricsRepository(db)
	metrics := NewMetricsService(metricsRepo, policies, nil, zap.NewNop())

	return &customerFixture{
		db:         db,
		svc:        NewCustomerService(db, customers, policies, phoneIndex, metrics, zap.NewNop()),
		phoneIndex: phoneIndex,
		metrics:    metricsRepo,
	}
}

func TestCustomerServiceCreateNormalizesPhoneAndIndexes(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()

	customer, err := f.svc.Create(ctx, "agency-1", &domain.CreateCustomerRequest{
		FullName: "John Smith",
		Phone:    "(217) 555-1234",
	})
	require.NoError(t, err)
	require.NotNil(t, customer.PhoneE164)
	assert.Equal(t, "+12175551234", *customer.PhoneE164)
	assert.Equal(t, "(217) 555-1234", customer.PhoneRaw)
	assert.Equal(t, domain.CustomerStatusLead, customer.Status)

	indexed, err := f.phoneIndex.GetCustomerID(ctx, "agency-1", "+12175551234")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, indexed)

	snapshot, err := f.metrics.Get(ctx, "agency-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), snapshot.CustomerCount)
}

func TestCustomerServiceCreateUnusablePhoneKeepsRaw(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()

	customer, err := f.svc.Create(ctx, "agency-1", &domain.CreateCustomerRequest{
		FullName: "John Smith",
		Phone:    "555-12",
	})
	require.NoError(t, err)
	assert.Nil(t, customer.PhoneE164)
	assert.Equal(t, "555-12", customer.PhoneRaw)
}

func TestCustomerServiceUpdateMovesPhoneIndex(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()

	customer, err := f.svc.Create(ctx, "agency-1", &domain.CreateCustomerRequest{
		FullName: "John Smith",
		Phone:    "2175551234",
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, "agency-1", customer.ID, &domain.UpdateCustomerRequest{
		FullName: "John Smith",
		Phone:    "3125559876",
	})
	require.NoError(t, err)

	_, err = f.phoneIndex.GetCustomerID(ctx, "agency-1", "+12175551234")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	indexed, err := f.phoneIndex.GetCustomerID(ctx, "agency-1", "+13125559876")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, indexed)
}

func TestCustomerServiceDeleteCleansUpAndAdjustsMetrics(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()

	customer, err := f.svc.Create(ctx, "agency-1", &domain.CreateCustomerRequest{
		FullName: "John Smith",
		Phone:    "2175551234",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, "agency-1", customer.ID))

	_, err = f.svc.GetByID(ctx, "agency-1", customer.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.phoneIndex.GetCustomerID(ctx, "agency-1", "+12175551234")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	snapshot, err := f.metrics.Get(ctx, "agency-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), snapshot.CustomerCount)
}

func TestCustomerServiceMatchSuggestions(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "agency-1", &domain.CreateCustomerRequest{
		FullName: "Jonathan Smith",
		Address:  "123 Main Street",
		City:     "Springfield",
		State:    "IL",
		Zip:      "62701",
	})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "agency-1", &domain.CreateCustomerRequest{
		FullName: "Maria Garcia",
		Address:  "987 Elm Dr",
		City:     "Chicago",
		State:    "IL",
		Zip:      "60601",
	})
	require.NoError(t, err)

	customers, matches, err := f.svc.MatchSuggestions(ctx, "agency-1", &domain.MatchSuggestionsRequest{
		FullName: "John Smith",
		Address:  "123 Main St",
		City:     "Springfield",
		State:    "IL",
		Zip:      "62701",
	})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Len(t, customers, 1)
	assert.Equal(t, "Jonathan Smith", customers[0].FullName)
	assert.Equal(t, match.ConfidenceStrong, matches[0].Confidence)
}
