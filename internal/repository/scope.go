package repository

import "gorm.io/gorm"

// ScopeAgency restricts a query to one agency's rows. Every tenant-owned
// table carries an agency_id column; repositories apply this scope on
// every read and mutation.
func ScopeAgency(agencyID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("agency_id = ?", agencyID)
	}
}
