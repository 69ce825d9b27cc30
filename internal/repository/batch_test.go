package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/coverline/agency-api/internal/domain"
	"github.com/coverline/agency-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBatchCommitAppliesAllOps(t *testing.T) {
	db := testutil.NewTestDB(t)
	batch := NewBatch(db, 500)

	for i := 0; i < 3; i++ {
		customer := &domain.Customer{
			AgencyID: "agency-1",
			FullName: "Customer",
			Status:   domain.CustomerStatusLead,
		}
		require.NoError(t, batch.Add(func(tx *gorm.DB) error {
			return tx.Create(customer).Error
		}))
	}
	assert.Equal(t, 3, batch.Len())

	require.NoError(t, batch.Commit(context.Background()))
	assert.Equal(t, 0, batch.Len())

	var count int64
	require.NoError(t, db.Model(&domain.Customer{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestBatchCommitEmptyIsNoop(t *testing.T) {
	db := testutil.NewTestDB(t)
	batch := NewBatch(db, 500)
	assert.NoError(t, batch.Commit(context.Background()))
}

func TestBatchAddRespectsCeiling(t *testing.T) {
	db := testutil.NewTestDB(t)
	batch := NewBatch(db, 2)

	noop := func(tx *gorm.DB) error { return nil }
	require.NoError(t, batch.Add(noop))
	require.NoError(t, batch.Add(noop))
	assert.ErrorIs(t, batch.Add(noop), ErrBatchFull)
}

func TestBatchCommitRollsBackOnFailure(t *testing.T) {
	db := testutil.NewTestDB(t)
	batch := NewBatch(db, 500)

	require.NoError(t, batch.Add(func(tx *gorm.DB) error {
		return tx.Create(&domain.Customer{
			AgencyID: "agency-1",
			FullName: "Survivor",
			Status:   domain.CustomerStatusLead,
		}).Error
	}))
	require.NoError(t, batch.Add(func(tx *gorm.DB) error {
		return errors.New("boom")
	}))

	err := batch.Commit(context.Background())
	require.Error(t, err)

	// nothing from the failed batch was written
	var count int64
	require.NoError(t, db.Model(&domain.Customer{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	// the queue survives so the caller can inspect or retry
	assert.Equal(t, 2, batch.Len())
}
