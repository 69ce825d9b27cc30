package repository

import (
	"context"
	"testing"

	"github.com/coverline/agency-api/internal/domain"
	"github.com/coverline/agency-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCustomer(t *testing.T, repo *CustomerRepository, agencyID, name string) *domain.Customer {
	t.Helper()
	c := &domain.Customer{
		AgencyID: agencyID,
		FullName: name,
		Status:   domain.CustomerStatusLead,
	}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestCustomerRepositoryCRUD(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	created := seedCustomer(t, repo, "agency-1", "John Smith")
	require.NotEqual(t, created.ID.String(), "00000000-0000-0000-0000-000000000000")

	fetched, err := repo.GetByID(ctx, "agency-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", fetched.FullName)

	fetched.City = "Springfield"
	require.NoError(t, repo.Update(ctx, fetched))

	updated, err := repo.GetByID(ctx, "agency-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Springfield", updated.City)

	require.NoError(t, repo.Delete(ctx, "agency-1", created.ID))
	_, err = repo.GetByID(ctx, "agency-1", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerRepositoryAgencyIsolation(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	created := seedCustomer(t, repo, "agency-1", "John Smith")
	seedCustomer(t, repo, "agency-2", "Maria Garcia")

	// another agency cannot read or delete across the boundary
	_, err := repo.GetByID(ctx, "agency-2", created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "agency-2", created.ID), ErrNotFound)

	count, err := repo.Count(ctx, "agency-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCustomerRepositoryListSearch(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	seedCustomer(t, repo, "agency-1", "John Smith")
	seedCustomer(t, repo, "agency-1", "Jane Smith")
	seedCustomer(t, repo, "agency-1", "Maria Garcia")

	customers, total, err := repo.List(ctx, "agency-1", "smith", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, customers, 2)

	// pagination
	page1, total, err := repo.List(ctx, "agency-1", "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page1, 2)

	page2, _, err := repo.List(ctx, "agency-1", "", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page2, 1)
}

func TestCustomerRepositoryFindByNamePrefix(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCustomerRepository(db)
	ctx := context.Background()

	seedCustomer(t, repo, "agency-1", "John Smith")
	seedCustomer(t, repo, "agency-1", "john smithson")
	seedCustomer(t, repo, "agency-1", "Maria Garcia")
	seedCustomer(t, repo, "agency-2", "John Smith")

	matches, err := repo.FindByNamePrefix(ctx, "agency-1", "John Smi", 50)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	none, err := repo.FindByNamePrefix(ctx, "agency-1", "Zeb", 50)
	require.NoError(t, err)
	assert.Empty(t, none)

	empty, err := repo.FindByNamePrefix(ctx, "agency-1", "  ", 50)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
