package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/coverline/agency-api/internal/domain"
	"github.com/coverline/agency-api/internal/normalize"
)

// ValidateRow maps one raw row through the header mapping, normalizes
// every field and returns the row result. rowIndex is 0-based; the
// result reports it 1-based.
func ValidateRow(row []string, mapping HeaderMapping, rowIndex int) domain.ImportRowResult {
	result := domain.ImportRowResult{RowIndex: rowIndex + 1}

	insuredName := strings.TrimSpace(mapping.cell(row, FieldInsuredName))
	address := strings.TrimSpace(mapping.cell(row, FieldAddress))
	city := strings.TrimSpace(mapping.cell(row, FieldCity))
	state := strings.TrimSpace(mapping.cell(row, FieldState))
	zip := strings.TrimSpace(mapping.cell(row, FieldZip))

	var errs []string
	for _, check := range []struct {
		value string
		label string
	}{
		{insuredName, "insured name"},
		{address, "address"},
		{city, "city"},
		{state, "state"},
		{zip, "zip"},
	} {
		if check.value == "" {
			errs = append(errs, fmt.Sprintf("missing %s", check.label))
		}
	}

	rawType := strings.TrimSpace(mapping.cell(row, FieldPolicyType))
	policyType, typeOK := normalize.PolicyType(rawType)
	if !typeOK {
		errs = append(errs, fmt.Sprintf("unknown policy type %q", rawType))
	}

	premium, premiumOK := normalize.Premium(mapping.cell(row, FieldPremium))
	if !premiumOK {
		errs = append(errs, fmt.Sprintf("invalid premium %q", strings.TrimSpace(mapping.cell(row, FieldPremium))))
	}

	company := strings.TrimSpace(mapping.cell(row, FieldInsuranceCompany))
	if company == "" {
		errs = append(errs, "missing insurance company")
	}

	effective, expiration, dateErrs := resolveDates(
		mapping.cell(row, FieldEffectiveDate),
		mapping.cell(row, FieldExpirationDate),
		company,
	)
	errs = append(errs, dateErrs...)

	if len(errs) > 0 {
		result.Errors = errs
		return result
	}

	data := &domain.ImportedRow{
		InsuredName:      insuredName,
		Address:          address,
		City:             city,
		State:            strings.ToUpper(state),
		Zip:              zip,
		PolicyType:       policyType,
		RawPolicyType:    rawType,
		EffectiveDate:    effective,
		ExpirationDate:   expiration,
		InsuranceCompany: company,
		Premium:          premium,
	}

	if raw := strings.TrimSpace(mapping.cell(row, FieldPhone)); raw != "" {
		data.Phone = raw
	}
	if raw := strings.TrimSpace(mapping.cell(row, FieldEmail)); raw != "" {
		data.Email = raw
	}

	result.Valid = true
	result.Data = data
	return result
}

// resolveDates parses the effective/expiration cells and fills a
// missing one by shifting the other one year.
//
// Progressive is the exception: their books mix 6 and 12 month terms,
// so a computed date would be wrong half the time. Both dates must be
// present for that carrier.
func resolveDates(rawEffective, rawExpiration, company string) (effective, expiration time.Time, errs []string) {
	rawEffective = strings.TrimSpace(rawEffective)
	rawExpiration = strings.TrimSpace(rawExpiration)

	isProgressive := strings.Contains(strings.ToLower(company), "progressive")

	var effOK, expOK bool
	if rawEffective != "" {
		effective, effOK = normalize.Date(rawEffective)
		if !effOK {
			errs = append(errs, fmt.Sprintf("invalid effective date %q", rawEffective))
		}
	}
	if rawExpiration != "" {
		expiration, expOK = normalize.Date(rawExpiration)
		if !expOK {
			errs = append(errs, fmt.Sprintf("invalid expiration date %q", rawExpiration))
		}
	}
	if len(errs) > 0 {
		return effective, expiration, errs
	}

	if isProgressive {
		if !effOK || !expOK {
			return effective, expiration, []string{"Progressive policies require both effective and expiration dates"}
		}
	} else {
		switch {
		case effOK && expOK:
			// both given
		case effOK:
			expiration = normalize.AddOneYear(effective)
		case expOK:
			effective = normalize.SubtractOneYear(expiration)
		default:
			return effective, expiration, []string{"missing effective and expiration dates"}
		}
	}

	if effective.After(expiration) {
		return effective, expiration, []string{"effective date is after expiration date"}
	}
	return effective, expiration, nil
}

// ValidateRows validates every data row against the mapping.
func ValidateRows(rows [][]string, mapping HeaderMapping) []domain.ImportRowResult {
	results := make([]domain.ImportRowResult, 0, len(rows))
	for i, row := range rows {
		results = append(results, ValidateRow(row, mapping, i))
	}
	return results
}
