package repository

import (
	"context"
	"testing"

	"github.com/coverline/agency-api/internal/domain"
	"github.com/coverline/agency-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhoneIndexUpsertAndLookup(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPhoneIndexRepository(db)
	ctx := context.Background()

	first := uuid.New()
	second := uuid.New()

	require.NoError(t, repo.Upsert(ctx, &domain.PhoneIndexEntry{
		AgencyID:   "agency-1",
		PhoneE164:  "+12175551234",
		CustomerID: first,
	}))

	got, err := repo.GetCustomerID(ctx, "agency-1", "+12175551234")
	require.NoError(t, err)
	assert.Equal(t, first, got)

	// re-upserting the same number points it at the new customer
	require.NoError(t, repo.Upsert(ctx, &domain.PhoneIndexEntry{
		AgencyID:   "agency-1",
		PhoneE164:  "+12175551234",
		CustomerID: second,
	}))

	got, err = repo.GetCustomerID(ctx, "agency-1", "+12175551234")
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestPhoneIndexAgencyIsolation(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPhoneIndexRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &domain.PhoneIndexEntry{
		AgencyID:   "agency-1",
		PhoneE164:  "+12175551234",
		CustomerID: uuid.New(),
	}))

	_, err := repo.GetCustomerID(ctx, "agency-2", "+12175551234")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPhoneIndexDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPhoneIndexRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &domain.PhoneIndexEntry{
		AgencyID:   "agency-1",
		PhoneE164:  "+12175551234",
		CustomerID: uuid.New(),
	}))
	require.NoError(t, repo.Delete(ctx, "agency-1", "+12175551234"))

	_, err := repo.GetCustomerID(ctx, "agency-1", "+12175551234")
	assert.ErrorIs(t, err, ErrNotFound)
}
