package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coverline/agency-api/internal/config"
	"github.com/coverline/agency-api/internal/domain"
	"github.com/coverline/agency-api/internal/match"
	"github.com/coverline/agency-api/internal/normalize"
	"github.com/coverline/agency-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressFunc reports import progress: after every batch flush and
// periodically between flushes. Always invoked from the import's own
// sequential flow, never concurrently.
type ProgressFunc func(batchNumber, totalBatches, rowsProcessed int)

// CustomerReader is the read surface the importer needs for duplicate
// customer resolution.
type CustomerReader interface {
	FindByNamePrefix(ctx context.Context, agencyID, prefix string, limit int) ([]domain.Customer, error)
}

// PolicyReader is the read surface the importer needs for duplicate
// policy detection.
type PolicyReader interface {
	ListByCustomer(ctx context.Context, agencyID string, customerID uuid.UUID) ([]domain.Policy, error)
}

// ImportService drives the CSV bulk import: resolves each validated row
// to an existing or new customer, skips duplicate policies, and queues
// writes in batches kept safely under the store's operation ceiling.
type ImportService struct {
	db        *gorm.DB
	customers CustomerReader
	policies  PolicyReader
	metrics   *MetricsService
	cfg       *config.ImportConfig
	logger    *zap.Logger
}

// NewImportService creates a new import service
func NewImportService(
	db *gorm.DB,
	customers CustomerReader,
	policies PolicyReader,
	metrics *MetricsService,
	cfg *config.ImportConfig,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		db:        db,
		customers: customers,
		policies:  policies,
		metrics:   metrics,
		cfg:       cfg,
		logger:    logger,
	}
}

// resolvedCustomer tracks one customer touched during this run. Queued
// writes are invisible to store reads until their batch commits, so the
// run keeps its own view of customers it created or matched, along with
// the policies queued for them.
type resolvedCustomer struct {
	id       uuid.UUID
	existing []domain.Policy
	pending  []domain.Policy
}

// ImportCSVData processes validated rows in file order and returns the
// import summary. Rows are processed strictly sequentially: each row's
// customer resolution depends on prior rows' outcomes and the batch
// must fill in a known order.
//
// A single row's failure never aborts the run; it is recorded and the
// import continues. Batch commit failures do abort, since they lose
// previously queued writes. Re-running the same file is safe: existing
// customers are matched by the exact name/address/zip triple and
// duplicate policies are skipped.
func (s *ImportService) ImportCSVData(ctx context.Context, agencyID string, rows []domain.ImportRowResult, onProgress ProgressFunc) (*domain.ImportSummary, error) {
	summary := &domain.ImportSummary{Errors: []domain.ImportRowError{}}

	var valid []domain.ImportRowResult
	for _, row := range rows {
		if row.Valid && row.Data != nil {
			valid = append(valid, row)
			continue
		}
		summary.Skipped++
		summary.Errors = append(summary.Errors, domain.ImportRowError{Row: row.RowIndex, Errors: row.Errors})
	}

	flushThreshold := s.cfg.FlushThreshold()
	totalBatches := estimateBatches(len(valid), flushThreshold)

	batch := repository.NewBatch(s.db, s.cfg.BatchMaxOps)
	resolved := make(map[string]*resolvedCustomer)

	var (
		batchNumber  int
		rowsDone     int
		newCustomers int64
		newPremium   float64
		hasRenewals  bool
	)
	now := time.Now().UTC()

	for _, row := range valid {
		if err := s.processRow(ctx, agencyID, row.Data, batch, resolved, summary, &newCustomers, &newPremium, &hasRenewals, now); err != nil {
			summary.Skipped++
			summary.Errors = append(summary.Errors, domain.ImportRowError{
				Row:    row.RowIndex,
				Errors: []string{err.Error()},
			})
			s.logger.Warn("import row failed",
				zap.String("agency_id", agencyID),
				zap.Int("row", row.RowIndex),
				zap.Error(err),
			)
		}
		rowsDone++

		if batch.Len() >= flushThreshold {
			if err := batch.Commit(ctx); err != nil {
				return nil, fmt.Errorf("import aborted at row %d: %w", row.RowIndex, err)
			}
			batchNumber++
			if onProgress != nil {
				onProgress(batchNumber, totalBatches, rowsDone)
			}
		} else if onProgress != nil && s.cfg.ProgressRowInterval > 0 && rowsDone%s.cfg.ProgressRowInterval == 0 {
			onProgress(batchNumber, totalBatches, rowsDone)
		}
	}

	if batch.Len() > 0 {
		if err := batch.Commit(ctx); err != nil {
			return nil, fmt.Errorf("import aborted at final flush: %w", err)
		}
		batchNumber++
		if onProgress != nil {
			onProgress(batchNumber, totalBatches, rowsDone)
		}
	}

	s.metrics.ApplyImportDeltas(ctx, agencyID, newCustomers, newPremium, hasRenewals)

	s.logger.Info("import completed",
		zap.String("agency_id", agencyID),
		zap.Int("imported", summary.Imported),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("error_rows", len(summary.Errors)),
	)
	return summary, nil
}

// processRow resolves the row's customer, checks for a duplicate policy
// and queues the writes. Customer resolution always precedes the
// duplicate check, which always precedes queuing.
func (s *ImportService) processRow(
	ctx context.Context,
	agencyID string,
	data *domain.ImportedRow,
	batch *repository.Batch,
	resolved map[string]*resolvedCustomer,
	summary *domain.ImportSummary,
	newCustomers *int64,
	newPremium *float64,
	hasRenewals *bool,
	now time.Time,
) error {
	key := match.ExactKey(data.InsuredName, data.Address, data.Zip)

	entry, seenThisRun := resolved[key]
	if !seenThisRun {
		existing, err := s.lookupCustomer(ctx, agencyID, data)
		if err != nil {
			return err
		}

		if existing != nil {
			policies, err := s.policies.ListByCustomer(ctx, agencyID, existing.ID)
			if err != nil {
				return fmt.Errorf("failed to load policies for duplicate check: %w", err)
			}
			entry = &resolvedCustomer{id: existing.ID, existing: policies}
			resolved[key] = entry

			if err := s.queueCustomerUpdate(batch, existing.ID, data, now); err != nil {
				return err
			}
			summary.Updated++
		} else {
			customer := s.buildCustomer(agencyID, data, now)
			entry = &resolvedCustomer{id: customer.ID}
			resolved[key] = entry

			if err := batch.Add(func(tx *gorm.DB) error {
				return tx.Create(customer).Error
			}); err != nil {
				return err
			}
			if customer.PhoneE164 != nil {
				indexEntry := &domain.PhoneIndexEntry{
					AgencyID:   agencyID,
					PhoneE164:  *customer.PhoneE164,
					CustomerID: customer.ID,
					CreatedAt:  now,
					UpdatedAt:  now,
				}
				if err := batch.Add(func(tx *gorm.DB) error {
					return tx.Create(indexEntry).Error
				}); err != nil {
					return err
				}
			}
			summary.Imported++
			*newCustomers++
		}
	} else {
		// repeat of a customer already handled in this run: counts as
		// an update, the record itself needs no second write
		summary.Updated++
	}

	policy := &domain.Policy{
		BaseModel:        domain.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		CustomerID:       entry.id,
		AgencyID:         agencyID,
		PolicyType:       data.PolicyType,
		RawPolicyType:    data.RawPolicyType,
		EffectiveDate:    data.EffectiveDate,
		ExpirationDate:   data.ExpirationDate,
		InsuranceCompany: data.InsuranceCompany,
		Premium:          data.Premium,
		Status:           domain.PolicyStatusActive,
		ImportedAt:       &now,
	}

	if s.isDuplicatePolicy(policy, entry) {
		summary.Skipped++
		return nil
	}

	if err := batch.Add(func(tx *gorm.DB) error {
		return tx.Create(policy).Error
	}); err != nil {
		return err
	}
	entry.pending = append(entry.pending, *policy)

	*newPremium += policy.Premium
	if !policy.ExpirationDate.Before(now) && policy.ExpirationDate.Sub(now) <= domain.RenewalWindow {
		*hasRenewals = true
	}
	return nil
}

// lookupCustomer finds an existing customer by the exact normalized
// name/address/zip triple. The store query is bounded to the lexical
// prefix range of the imported name; the triple filter runs in memory.
func (s *ImportService) lookupCustomer(ctx context.Context, agencyID string, data *domain.ImportedRow) (*domain.Customer, error) {
	prefix := data.InsuredName
	if s.cfg.PrefixScanLength > 0 && len(prefix) > s.cfg.PrefixScanLength {
		prefix = prefix[:s.cfg.PrefixScanLength]
	}

	candidates, err := s.customers.FindByNamePrefix(ctx, agencyID, prefix, 200)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing customers: %w", err)
	}

	key := match.ExactKey(data.InsuredName, data.Address, data.Zip)
	for i := range candidates {
		c := &candidates[i]
		if match.ExactKey(c.FullName, c.Address, c.Zip) == key {
			return c, nil
		}
	}
	return nil, nil
}

func (s *ImportService) buildCustomer(agencyID string, data *domain.ImportedRow, now time.Time) *domain.Customer {
	status := domain.CustomerStatus(s.cfg.DefaultStatus)
	if !status.IsValid() {
		status = domain.CustomerStatusLead
	}

	customer := &domain.Customer{
		BaseModel: domain.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		AgencyID:  agencyID,
		FullName:  data.InsuredName,
		Address:   data.Address,
		City:      data.City,
		State:     data.State,
		Zip:       data.Zip,
		Email:     data.Email,
		Status:    status,
		Source:    "csv-import",
	}

	if first, last, ok := splitName(data.InsuredName); ok {
		customer.FirstName = first
		customer.LastName = last
	}
	if data.Phone != "" {
		customer.PhoneRaw = data.Phone
		if e164, ok := normalize.Phone(data.Phone); ok {
			customer.PhoneE164 = &e164
		}
	}
	return customer
}

func (s *ImportService) queueCustomerUpdate(batch *repository.Batch, id uuid.UUID, data *domain.ImportedRow, now time.Time) error {
	return batch.Add(func(tx *gorm.DB) error {
		return tx.Model(&domain.Customer{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"address":    data.Address,
				"city":       data.City,
				"state":      data.State,
				"zip":        data.Zip,
				"updated_at": now,
			}).Error
	})
}

func (s *ImportService) isDuplicatePolicy(policy *domain.Policy, entry *resolvedCustomer) bool {
	for i := range entry.existing {
		if policy.DuplicateOf(&entry.existing[i]) {
			return true
		}
	}
	for i := range entry.pending {
		if policy.DuplicateOf(&entry.pending[i]) {
			return true
		}
	}
	return false
}

// estimateBatches sizes the progress denominator: up to two writes per
// row (customer + policy), at least one batch.
func estimateBatches(validRows, flushThreshold int) int {
	if flushThreshold <= 0 {
		return 1
	}
	batches := (validRows*2 + flushThreshold - 1) / flushThreshold
	if batches < 1 {
		batches = 1
	}
	return batches
}

// splitName derives first/last from a simple "First Last" shape. More
// complex names keep only the full name.
func splitName(full string) (first, last string, ok bool) {
	parts := strings.Fields(full)
	if len(parts) == 2 {
		return parts[0], parts[1], true
	}
	return "", "", false
}
