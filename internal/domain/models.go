package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a client-side UUID so Postgres and the sqlite test
// databases behave identically.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// CustomerStatus represents the lifecycle status of a customer
type CustomerStatus string

const (
	CustomerStatusLead   CustomerStatus = "lead"
	CustomerStatusQuoted CustomerStatus = "quoted"
	CustomerStatusActive CustomerStatus = "active"
	CustomerStatusLapsed CustomerStatus = "lapsed"
	CustomerStatusClosed CustomerStatus = "closed"
)

// IsValid checks if the CustomerStatus is a valid enum value
func (cs CustomerStatus) IsValid() bool {
	switch cs {
	case CustomerStatusLead, CustomerStatusQuoted, CustomerStatusActive, CustomerStatusLapsed, CustomerStatusClosed:
		return true
	}
	return false
}

// Customer represents an insured (person or business) in the CRM.
// PhoneE164, when set, must be a valid E.164 string and is mirrored by
// exactly one PhoneIndexEntry for the same agency; the customer write and
// the index write are always queued in the same batch.
type Customer struct {
	BaseModel
	AgencyID          string         `gorm:"type:varchar(100);not null;index;column:agency_id"`
	FullName          string         `gorm:"type:varchar(200);not null;index;column:full_name"`
	FirstName         string         `gorm:"type:varchar(100);column:first_name"`
	LastName          string         `gorm:"type:varchar(100);column:last_name"`
	PhoneE164         *string        `gorm:"type:varchar(20);column:phone_e164;index"`
	PhoneRaw          string         `gorm:"type:varchar(50);column:phone_raw"`
	Email             string         `gorm:"type:varchar(255)"`
	Address           string         `gorm:"type:varchar(500)"`
	City              string         `gorm:"type:varchar(100)"`
	State             string         `gorm:"type:varchar(50)"`
	Zip               string         `gorm:"type:varchar(20)"`
	PreferredLanguage string         `gorm:"type:varchar(50);column:preferred_language"`
	Tags              pq.StringArray `gorm:"type:text[]"`
	Status            CustomerStatus `gorm:"type:varchar(50);not null;default:'lead';index"`
	Source            string         `gorm:"type:varchar(100)"`
	AssignedUserID    *string        `gorm:"type:varchar(100);column:assigned_user_id"`
	LastContactAt     *time.Time     `gorm:"column:last_contact_at"`
	LastMessage       string         `gorm:"type:varchar(500);column:last_message"`
	Policies          []Policy       `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"`
}

// PolicyStatus represents the status of a policy
type PolicyStatus string

const (
	PolicyStatusActive   PolicyStatus = "active"
	PolicyStatusInactive PolicyStatus = "inactive"
)

// Policy represents an insurance policy owned by exactly one customer.
// AgencyID and CustomerID are denormalized so policies can be queried
// across customers (renewal windows, reporting).
type Policy struct {
	BaseModel
	CustomerID       uuid.UUID    `gorm:"type:uuid;not null;index;column:customer_id"`
	AgencyID         string       `gorm:"type:varchar(100);not null;index;column:agency_id"`
	PolicyType       string       `gorm:"type:varchar(100);not null;column:policy_type"`
	RawPolicyType    string       `gorm:"type:varchar(100);column:raw_policy_type"`
	EffectiveDate    time.Time    `gorm:"type:date;not null;column:effective_date"`
	ExpirationDate   time.Time    `gorm:"type:date;not null;column:expiration_date"`
	InsuranceCompany string       `gorm:"type:varchar(200);column:insurance_company"`
	Premium          float64      `gorm:"type:decimal(15,2);not null;default:0"`
	Status           PolicyStatus `gorm:"type:varchar(50);not null;default:'active';index"`
	ImportedAt       *time.Time   `gorm:"column:imported_at"`
}

// premiumTolerance is the absolute tolerance used when comparing premiums
// for duplicate detection.
const premiumTolerance = 0.01

// DuplicateOf reports whether p and other describe the same policy: same
// normalized type, same calendar effective date, same carrier
// (case/whitespace-insensitive) and premiums within 0.01.
func (p *Policy) DuplicateOf(other *Policy) bool {
	if p.PolicyType != other.PolicyType {
		return false
	}
	py, pm, pd := p.EffectiveDate.Date()
	oy, om, od := other.EffectiveDate.Date()
	if py != oy || pm != om || pd != od {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(p.InsuranceCompany), strings.TrimSpace(other.InsuranceCompany)) {
		return false
	}
	return math.Abs(p.Premium-other.Premium) <= premiumTolerance
}

// PhoneIndexEntry maps a normalized E.164 phone number back to a customer.
// It is a derived index of Customer, owned by the agency and never edited
// directly by users.
type PhoneIndexEntry struct {
	AgencyID   string    `gorm:"type:varchar(100);primaryKey;column:agency_id"`
	PhoneE164  string    `gorm:"type:varchar(20);primaryKey;column:phone_e164"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index;column:customer_id"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName overrides the default table name
func (PhoneIndexEntry) TableName() string {
	return "phone_index"
}

// MetricsSnapshot is the per-agency cached aggregate consumed by the
// dashboard. It is derived from Customer and Policy state and allowed to be
// transiently stale; the renewals count is only authoritative right after a
// recompute.
type MetricsSnapshot struct {
	AgencyID         string    `gorm:"type:varchar(100);primaryKey;column:agency_id"`
	CustomerCount    int64     `gorm:"not null;default:0;column:customer_count"`
	TotalPremium     float64   `gorm:"type:decimal(15,2);not null;default:0;column:total_premium"`
	UpcomingRenewals int64     `gorm:"not null;default:0;column:upcoming_renewals"`
	UpdatedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName overrides the default table name
func (MetricsSnapshot) TableName() string {
	return "metrics_snapshots"
}

// RenewalWindow is the horizon used to flag policies nearing expiration.
const RenewalWindow = 30 * 24 * time.Hour

// ImportedRow is a validated, normalized spreadsheet row. Dates are
// calendar dates at UTC midnight.
type ImportedRow struct {
	InsuredName      string
	Address          string
	City             string
	State            string
	Zip              string
	PolicyType       string
	RawPolicyType    string
	EffectiveDate    time.Time
	ExpirationDate   time.Time
	InsuranceCompany string
	Premium          float64
	Phone            string
	Email            string
}

// ImportRowResult is the per-row outcome of validation. Transient: it lives
// only for the duration of one import run and the error report.
type ImportRowResult struct {
	RowIndex int // 1-based
	Valid    bool
	Errors   []string
	Data     *ImportedRow
}

// ImportRowError ties a row index to its error messages in the summary.
type ImportRowError struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

// ImportSummary is the result of one bulk import run.
type ImportSummary struct {
	Imported int              `json:"imported"`
	Updated  int              `json:"updated"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors"`
}
