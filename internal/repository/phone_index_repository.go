package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/coverline/agency-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PhoneIndexRepository maintains the derived phone -> customer index.
type PhoneIndexRepository struct {
	db *gorm.DB
}

// NewPhoneIndexRepository creates a new phone index repository
func NewPhoneIndexRepository(db *gorm.DB) *PhoneIndexRepository {
	return &PhoneIndexRepository{db: db}
}

// Upsert writes an index entry, replacing the customer reference when
// the number already exists for the agency.
func (r *PhoneIndexRepository) Upsert(ctx context.Context, entry *domain.PhoneIndexEntry) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "agency_id"}, {Name: "phone_e164"}},
			DoUpdates: clause.AssignmentColumns([]string{"customer_id", "updated_at"}),
		}).
		Create(entry).Error
	if err != nil {
		return fmt.Errorf("failed to upsert phone index entry: %w", err)
	}
	return nil
}

// GetCustomerID resolves a normalized phone number to a customer id.
func (r *PhoneIndexRepository) GetCustomerID(ctx context.Context, agencyID, phoneE164 string) (uuid.UUID, error) {
	var entry domain.PhoneIndexEntry
	err := r.db.WithContext(ctx).
		Where("agency_id = ? AND phone_e164 = ?", agencyID, phoneE164).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to look up phone index: %w", err)
	}
	return entry.CustomerID, nil
}

// Delete removes an index entry, typically when a customer's phone
// changes or the customer is deleted.
func (r *PhoneIndexRepository) Delete(ctx context.Context, agencyID, phoneE164 string) error {
	err := r.db.WithContext(ctx).
		Where("agency_id = ? AND phone_e164 = ?", agencyID, phoneE164).
		Delete(&domain.PhoneIndexEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete phone index entry: %w", err)
	}
	return nil
}
