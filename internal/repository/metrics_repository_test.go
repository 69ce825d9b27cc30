package repository

import (
	"context"
	"testing"

	"github.com/coverline/agency-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRepositoryLazyInit(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMetricsRepository(db)
	ctx := context.Background()

	// reading before any write returns a zero snapshot
	snapshot, err := repo.Get(ctx, "agency-1")
	require.NoError(t, err)
	assert.Zero(t, snapshot.CustomerCount)
	assert.Zero(t, snapshot.TotalPremium)

	// first increment creates the row
	require.NoError(t, repo.IncrementCustomerCount(ctx, "agency-1", 5))

	snapshot, err = repo.Get(ctx, "agency-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), snapshot.CustomerCount)
}

func TestMetricsRepositoryIncrements(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMetricsRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.IncrementCustomerCount(ctx, "agency-1", 3))
	require.NoError(t, repo.IncrementCustomerCount(ctx, "agency-1", 2))
	require.NoError(t, repo.AddPremium(ctx, "agency-1", 1200.50))
	require.NoError(t, repo.AddPremium(ctx, "agency-1", 799.50))
	require.NoError(t, repo.SetUpcomingRenewals(ctx, "agency-1", 7))

	snapshot, err := repo.Get(ctx, "agency-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), snapshot.CustomerCount)
	assert.InDelta(t, 2000.0, snapshot.TotalPremium, 0.001)
	assert.Equal(t, int64(7), snapshot.UpcomingRenewals)
}

func TestMetricsRepositoryTenantsAreIndependent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMetricsRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.IncrementCustomerCount(ctx, "agency-1", 1))
	require.NoError(t, repo.IncrementCustomerCount(ctx, "agency-2", 10))

	one, err := repo.Get(ctx, "agency-1")
	require.NoError(t, err)
	two, err := repo.Get(ctx, "agency-2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), one.CustomerCount)
	assert.Equal(t, int64(10), two.CustomerCount)

	ids, err := repo.ListAgencyIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"agency-1", "agency-2"}, ids)
}
