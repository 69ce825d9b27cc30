package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coverline/agency-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// CustomerRepository handles customer data access
type CustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create inserts a new customer
func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// GetByID fetches one customer scoped to the agency
func (r *CustomerRepository) GetByID(ctx context.Context, agencyID string, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.WithContext(ctx).
		Scopes(ScopeAgency(agencyID)).
		First(&customer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &customer, nil
}

// Update saves all customer fields
func (r *CustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	if err := r.db.WithContext(ctx).Save(customer).Error; err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

// Delete removes a customer and, via the FK constraint, its policies
func (r *CustomerRepository) Delete(ctx context.Context, agencyID string, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Scopes(ScopeAgency(agencyID)).
		Delete(&domain.Customer{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of customers, optionally filtered by a search
// term matched against name, email and phone.
func (r *CustomerRepository) List(ctx context.Context, agencyID, search string, page, pageSize int) ([]domain.Customer, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.Customer{}).
		Scopes(ScopeAgency(agencyID))

	if search != "" {
		like := "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
		query = query.Where(
			"LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR phone_raw LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	var customers []domain.Customer
	err := query.
		Order("full_name ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&customers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, total, nil
}

// ListByAgency returns all customers for an agency. Used by the fuzzy
// match endpoint, which scores in memory.
func (r *CustomerRepository) ListByAgency(ctx context.Context, agencyID string) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := r.db.WithContext(ctx).
		Scopes(ScopeAgency(agencyID)).
		Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// FindByNamePrefix returns customers whose lowercased full name falls in
// the lexical range of the prefix. Bounds the importer's duplicate
// lookup to a range scan instead of a full-table scan.
func (r *CustomerRepository) FindByNamePrefix(ctx context.Context, agencyID, prefix string, limit int) ([]domain.Customer, error) {
	lo := strings.ToLower(strings.TrimSpace(prefix))
	if lo == "" {
		return nil, nil
	}
	hi := lo + "\uf8ff"

	var customers []domain.Customer
	err := r.db.WithContext(ctx).
		Scopes(ScopeAgency(agencyID)).
		Where("LOWER(full_name) >= ? AND LOWER(full_name) <= ?", lo, hi).
		Limit(limit).
		Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan customers by name prefix: %w", err)
	}
	return customers, nil
}

// Count returns the number of customers in an agency
func (r *CustomerRepository) Count(ctx context.Context, agencyID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Customer{}).
		Scopes(ScopeAgency(agencyID)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}
