// Package mapper converts domain models to API DTOs.
package mapper

import (
	"time"

	"github.com/coverline/agency-api/internal/domain"
	"github.com/coverline/agency-api/internal/match"
)

// ToCustomerDTO converts a customer to its API representation
func ToCustomerDTO(c *domain.Customer) domain.CustomerDTO {
	dto := domain.CustomerDTO{
		ID:                c.ID,
		FullName:          c.FullName,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		PhoneRaw:          c.PhoneRaw,
		Email:             c.Email,
		Address:           c.Address,
		City:              c.City,
		State:             c.State,
		Zip:               c.Zip,
		PreferredLanguage: c.PreferredLanguage,
		Tags:              c.Tags,
		Status:            c.Status,
		Source:            c.Source,
		AssignedUserID:    c.AssignedUserID,
		LastMessage:       c.LastMessage,
		CreatedAt:         c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         c.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if c.PhoneE164 != nil {
		dto.Phone = *c.PhoneE164
	}
	if c.LastContactAt != nil {
		s := c.LastContactAt.UTC().Format(time.RFC3339)
		dto.LastContactAt = &s
	}
	return dto
}

// ToCustomerDTOs converts a slice of customers
func ToCustomerDTOs(customers []domain.Customer) []domain.CustomerDTO {
	dtos := make([]domain.CustomerDTO, len(customers))
	for i := range customers {
		dtos[i] = ToCustomerDTO(&customers[i])
	}
	return dtos
}

// ToPolicyDTO converts a policy to its API representation. Dates are
// calendar dates, rendered without a time component.
func ToPolicyDTO(p *domain.Policy) domain.PolicyDTO {
	return domain.PolicyDTO{
		ID:               p.ID,
		CustomerID:       p.CustomerID,
		PolicyType:       p.PolicyType,
		RawPolicyType:    p.RawPolicyType,
		EffectiveDate:    p.EffectiveDate.Format("2006-01-02"),
		ExpirationDate:   p.ExpirationDate.Format("2006-01-02"),
		InsuranceCompany: p.InsuranceCompany,
		Premium:          p.Premium,
		Status:           p.Status,
		CreatedAt:        p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ToPolicyDTOs converts a slice of policies
func ToPolicyDTOs(policies []domain.Policy) []domain.PolicyDTO {
	dtos := make([]domain.PolicyDTO, len(policies))
	for i := range policies {
		dtos[i] = ToPolicyDTO(&policies[i])
	}
	return dtos
}

// ToMetricsDTO converts a metrics snapshot
func ToMetricsDTO(m *domain.MetricsSnapshot) domain.MetricsDTO {
	return domain.MetricsDTO{
		CustomerCount:    m.CustomerCount,
		TotalPremium:     m.TotalPremium,
		UpcomingRenewals: m.UpcomingRenewals,
		UpdatedAt:        m.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ToMatchSuggestionDTOs pairs matched customers with their scores
func ToMatchSuggestionDTOs(customers []domain.Customer, matches []match.Match) []domain.MatchSuggestionDTO {
	dtos := make([]domain.MatchSuggestionDTO, len(matches))
	for i, m := range matches {
		dtos[i] = domain.MatchSuggestionDTO{
			Customer:   ToCustomerDTO(&customers[i]),
			Confidence: m.Confidence,
			Score:      m.Score,
		}
	}
	return dtos
}
