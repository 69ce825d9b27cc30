package service

import (
	"context"
	"fmt"

	"github.com/coverline/agency-api/internal/domain"
	"github.com/coverline/agency-api/internal/match"
	"github.com/coverline/agency-api/internal/normalize"
	"github.com/coverline/agency-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomerService handles customer business logic. Phone numbers are
// normalized to E.164 on every write and mirrored into the phone index
// in the same transaction as the customer row.
type CustomerService struct {
	db         *gorm.DB
	customers  *repository.CustomerRepository
	policies   *repository.PolicyRepository
	phoneIndex *repository.PhoneIndexRepository
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(
	db *gorm.DB,
	customers *repository.CustomerRepository,
	policies *repository.PolicyRepository,
	phoneIndex *repository.PhoneIndexRepository,
	metrics *MetricsService,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		db:         db,
		customers:  customers,
		policies:   policies,
		phoneIndex: phoneIndex,
		metrics:    metrics,
		logger:     logger,
	}
}

// List returns a page of the agency's customers.
func (s *CustomerService) List(ctx context.Context, agencyID, search string, page, pageSize int) ([]domain.Customer, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.customers.List(ctx, agencyID, search, page, pageSize)
}

// GetByID returns one customer.
func (s *CustomerService) GetByID(ctx context.Context, agencyID string, id uuid.UUID) (*domain.Customer, error) {
	return s.customers.GetByID(ctx, agencyID, id)
}

// Create inserts a customer and its phone index entry atomically.
func (s *CustomerService) Create(ctx context.Context, agencyID string, req *domain.CreateCustomerRequest) (*domain.Customer, error) {
	customer := &domain.Customer{
		AgencyID:          agencyID,
		FullName:          req.FullName,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Address:           req.Address,
		City:              req.City,
		State:             req.State,
		Zip:               req.Zip,
		PreferredLanguage: req.PreferredLanguage,
		Tags:              req.Tags,
		Status:            domain.CustomerStatusLead,
		Source:            req.Source,
	}
	if req.Status != "" {
		customer.Status = domain.CustomerStatus(req.Status)
	}
	if req.Phone != "" {
		customer.PhoneRaw = req.Phone
		if e164, ok := normalize.Phone(req.Phone); ok {
			customer.PhoneE164 = &e164
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(customer).Error; err != nil {
			return err
		}
		if customer.PhoneE164 != nil {
			return upsertPhoneIndex(tx, agencyID, *customer.PhoneE164, customer.ID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.metrics.IncrementCustomerCount(ctx, agencyID, 1)
	return customer, nil
}

// Update replaces a customer's editable fields and keeps the phone
// index in step when the normalized phone changes.
func (s *CustomerService) Update(ctx context.Context, agencyID string, id uuid.UUID, req *domain.UpdateCustomerRequest) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, agencyID, id)
	if err != nil {
		return nil, err
	}

	oldPhone := customer.PhoneE164

	customer.FullName = req.FullName
	customer.FirstName = req.FirstName
	customer.LastName = req.LastName
	customer.Email = req.Email
	customer.Address = req.Address
	customer.City = req.City
	customer.State = req.State
	customer.Zip = req.Zip
	customer.PreferredLanguage = req.PreferredLanguage
	customer.Tags = req.Tags
	customer.Source = req.Source
	if req.Status != "" {
		customer.Status = domain.CustomerStatus(req.Status)
	}

	customer.PhoneRaw = req.Phone
	customer.PhoneE164 = nil
	if req.Phone != "" {
		if e164, ok := normalize.Phone(req.Phone); ok {
			customer.PhoneE164 = &e164
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(customer).Error; err != nil {
			return err
		}
		if oldPhone != nil && (customer.PhoneE164 == nil || *oldPhone != *customer.PhoneE164) {
			if err := tx.Where("agency_id = ? AND phone_e164 = ?", agencyID, *oldPhone).
				Delete(&domain.PhoneIndexEntry{}).Error; err != nil {
				return err
			}
		}
		if customer.PhoneE164 != nil {
			return upsertPhoneIndex(tx, agencyID, *customer.PhoneE164, customer.ID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	return customer, nil
}

// Delete removes a customer, its policies, and its phone index entry,
// then applies the aggregate deltas.
func (s *CustomerService) Delete(ctx context.Context, agencyID string, id uuid.UUID) error {
	customer, err := s.customers.GetByID(ctx, agencyID, id)
	if err != nil {
		return err
	}

	policies, err := s.policies.ListByCustomer(ctx, agencyID, id)
	if err != nil {
		return err
	}
	var activePremium float64
	var hadRenewalCandidates bool
	for _, p := range policies {
		if p.Status == domain.PolicyStatusActive {
			activePremium += p.Premium
			hadRenewalCandidates = true
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("agency_id = ? AND customer_id = ?", agencyID, id).
			Delete(&domain.Policy{}).Error; err != nil {
			return err
		}
		if customer.PhoneE164 != nil {
			if err := tx.Where("agency_id = ? AND phone_e164 = ?", agencyID, *customer.PhoneE164).
				Delete(&domain.PhoneIndexEntry{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("agency_id = ?", agencyID).Delete(&domain.Customer{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	s.metrics.IncrementCustomerCount(ctx, agencyID, -1)
	s.metrics.AddPremium(ctx, agencyID, -activePremium)
	if hadRenewalCandidates {
		s.metrics.RecalculateRenewals(ctx, agencyID)
	}
	return nil
}

// MatchSuggestions scores the agency's customers against a prospective
// record and returns up to three fuzzy-match candidates. The bulk
// importer does not use this path; it resolves customers by exact
// triple only.
func (s *CustomerService) MatchSuggestions(ctx context.Context, agencyID string, req *domain.MatchSuggestionsRequest) ([]domain.Customer, []match.Match, error) {
	customers, err := s.customers.ListByAgency(ctx, agencyID)
	if err != nil {
		return nil, nil, err
	}

	candidates := make([]match.Candidate, len(customers))
	byID := make(map[string]*domain.Customer, len(customers))
	for i := range customers {
		c := &customers[i]
		candidates[i] = match.Candidate{
			ID:      c.ID.String(),
			Name:    c.FullName,
			Address: c.Address,
			City:    c.City,
			State:   c.State,
			Zip:     c.Zip,
		}
		byID[c.ID.String()] = c
	}

	matches := match.FindMatches(match.Query{
		Name:    req.FullName,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Zip:     req.Zip,
	}, candidates)

	matched := make([]domain.Customer, len(matches))
	for i, m := range matches {
		matched[i] = *byID[m.Candidate.ID]
	}
	return matched, matches, nil
}

func upsertPhoneIndex(tx *gorm.DB, agencyID, phoneE164 string, customerID uuid.UUID) error {
	entry := &domain.PhoneIndexEntry{
		AgencyID:   agencyID,
		PhoneE164:  phoneE164,
		CustomerID: customerID,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "agency_id"}, {Name: "phone_e164"}},
		DoUpdates: clause.AssignmentColumns([]string{"customer_id", "updated_at"}),
	}).Create(entry).Error
}
