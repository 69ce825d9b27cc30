package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses. Timestamps are ISO 8601 strings.

type CustomerDTO struct {
	ID                uuid.UUID      `json:"id"`
	FullName          string         `json:"fullName"`
	FirstName         string         `json:"firstName,omitempty"`
	LastName          string         `json:"lastName,omitempty"`
	Phone             string         `json:"phone,omitempty"`
	PhoneRaw          string         `json:"phoneRaw,omitempty"`
	Email             string         `json:"email,omitempty"`
	Address           string         `json:"address,omitempty"`
	City              string         `json:"city,omitempty"`
	State             string         `json:"state,omitempty"`
	Zip               string         `json:"zip,omitempty"`
	PreferredLanguage string         `json:"preferredLanguage,omitempty"`
	Tags              []string       `json:"tags,omitempty"`
	Status            CustomerStatus `json:"status"`
	Source            string         `json:"source,omitempty"`
	AssignedUserID    *string        `json:"assignedUserId,omitempty"`
	LastContactAt     *string        `json:"lastContactAt,omitempty"`
	LastMessage       string         `json:"lastMessage,omitempty"`
	CreatedAt         string         `json:"createdAt"`
	UpdatedAt         string         `json:"updatedAt"`
}

type PolicyDTO struct {
	ID               uuid.UUID    `json:"id"`
	CustomerID       uuid.UUID    `json:"customerId"`
	PolicyType       string       `json:"policyType"`
	RawPolicyType    string       `json:"rawPolicyType,omitempty"`
	EffectiveDate    string       `json:"effectiveDate"`
	ExpirationDate   string       `json:"expirationDate"`
	InsuranceCompany string       `json:"insuranceCompany,omitempty"`
	Premium          float64      `json:"premium"`
	Status           PolicyStatus `json:"status"`
	CreatedAt        string       `json:"createdAt"`
	UpdatedAt        string       `json:"updatedAt"`
}

type MetricsDTO struct {
	CustomerCount    int64   `json:"customerCount"`
	TotalPremium     float64 `json:"totalPremium"`
	UpcomingRenewals int64   `json:"upcomingRenewals"`
	UpdatedAt        string  `json:"updatedAt"`
}

// MatchSuggestionDTO is one fuzzy-match candidate for a prospective
// customer merge.
type MatchSuggestionDTO struct {
	Customer   CustomerDTO `json:"customer"`
	Confidence string      `json:"confidence"`
	Score      float64     `json:"score"`
}

// CreateCustomerRequest is the payload for creating a customer
type CreateCustomerRequest struct {
	FullName          string   `json:"fullName" validate:"required,max=200"`
	FirstName         string   `json:"firstName" validate:"max=100"`
	LastName          string   `json:"lastName" validate:"max=100"`
	Phone             string   `json:"phone" validate:"max=50"`
	Email             string   `json:"email" validate:"omitempty,email"`
	Address           string   `json:"address" validate:"max=500"`
	City              string   `json:"city" validate:"max=100"`
	State             string   `json:"state" validate:"max=50"`
	Zip               string   `json:"zip" validate:"max=20"`
	PreferredLanguage string   `json:"preferredLanguage" validate:"max=50"`
	Tags              []string `json:"tags"`
	Status            string   `json:"status" validate:"omitempty,oneof=lead quoted active lapsed closed"`
	Source            string   `json:"source" validate:"max=100"`
}

// UpdateCustomerRequest is the payload for updating a customer
type UpdateCustomerRequest struct {
	FullName          string   `json:"fullName" validate:"required,max=200"`
	FirstName         string   `json:"firstName" validate:"max=100"`
	LastName          string   `json:"lastName" validate:"max=100"`
	Phone             string   `json:"phone" validate:"max=50"`
	Email             string   `json:"email" validate:"omitempty,email"`
	Address           string   `json:"address" validate:"max=500"`
	City              string   `json:"city" validate:"max=100"`
	State             string   `json:"state" validate:"max=50"`
	Zip               string   `json:"zip" validate:"max=20"`
	PreferredLanguage string   `json:"preferredLanguage" validate:"max=50"`
	Tags              []string `json:"tags"`
	Status            string   `json:"status" validate:"omitempty,oneof=lead quoted active lapsed closed"`
	Source            string   `json:"source" validate:"max=100"`
}

// MatchSuggestionsRequest is the payload for the fuzzy merge-suggestion
// endpoint.
type MatchSuggestionsRequest struct {
	FullName string `json:"fullName" validate:"required,max=200"`
	Address  string `json:"address" validate:"max=500"`
	City     string `json:"city" validate:"max=100"`
	State    string `json:"state" validate:"max=50"`
	Zip      string `json:"zip" validate:"max=20"`
}

// PaginatedResponse wraps a paginated list result
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
