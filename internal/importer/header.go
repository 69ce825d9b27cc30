package importer

import (
	"fmt"
	"regexp"
	"strings"
)

// Field identifies one logical column of an imported policy row.
type Field string

const (
	FieldInsuredName      Field = "insuredName"
	FieldAddress          Field = "address"
	FieldCity             Field = "city"
	FieldState            Field = "state"
	FieldZip              Field = "zip"
	FieldPolicyType       Field = "policyType"
	FieldInsuranceCompany Field = "insuranceCompany"
	FieldPremium          Field = "premium"
	FieldEffectiveDate    Field = "effectiveDate"
	FieldExpirationDate   Field = "expirationDate"
	FieldPhone            Field = "phone"
	FieldEmail            Field = "email"
)

// headerAliases maps cleaned header text to fields. Keys are lowercase
// with punctuation stripped and whitespace collapsed.
var headerAliases = map[string]Field{
	"insured name":  FieldInsuredName,
	"insured":       FieldInsuredName,
	"name":          FieldInsuredName,
	"customer name": FieldInsuredName,
	"customer":      FieldInsuredName,
	"client name":   FieldInsuredName,
	"named insured": FieldInsuredName,

	"address":         FieldAddress,
	"street":          FieldAddress,
	"street address":  FieldAddress,
	"address 1":       FieldAddress,
	"mailing address": FieldAddress,

	"city": FieldCity,
	"town": FieldCity,

	"state": FieldState,
	"st":    FieldState,

	"zip":         FieldZip,
	"zip code":    FieldZip,
	"zipcode":     FieldZip,
	"postal code": FieldZip,

	"policy type":  FieldPolicyType,
	"type":         FieldPolicyType,
	"line":         FieldPolicyType,
	"lob":          FieldPolicyType,
	"product":      FieldPolicyType,
	"coverage":     FieldPolicyType,
	"line of business": FieldPolicyType,

	"company":           FieldInsuranceCompany,
	"carrier":           FieldInsuranceCompany,
	"insurance company": FieldInsuranceCompany,
	"insurer":           FieldInsuranceCompany,

	"premium":        FieldPremium,
	"annual premium": FieldPremium,
	"amount":         FieldPremium,
	"price":          FieldPremium,

	"effective":       FieldEffectiveDate,
	"effective date":  FieldEffectiveDate,
	"eff date":        FieldEffectiveDate,
	"start date":      FieldEffectiveDate,
	"policy effective": FieldEffectiveDate,

	"expiration":      FieldExpirationDate,
	"expiration date": FieldExpirationDate,
	"exp date":        FieldExpirationDate,
	"expiry":          FieldExpirationDate,
	"end date":        FieldExpirationDate,
	"renewal date":    FieldExpirationDate,

	"phone":        FieldPhone,
	"phone number": FieldPhone,
	"telephone":    FieldPhone,
	"cell":         FieldPhone,
	"mobile":       FieldPhone,

	"email":         FieldEmail,
	"email address": FieldEmail,
	"e mail":        FieldEmail,
}

// requiredFields must all be mappable before an import starts. Dates
// are checked separately: at least one of effective/expiration must map.
var requiredFields = []Field{
	FieldInsuredName,
	FieldAddress,
	FieldCity,
	FieldState,
	FieldZip,
	FieldPolicyType,
	FieldInsuranceCompany,
	FieldPremium,
}

// HeaderMapping maps a field to the column index carrying it.
type HeaderMapping map[Field]int

// MissingColumnsError reports the required fields no header column
// could be mapped to. The whole import is rejected up front.
type MissingColumnsError struct {
	Missing []Field
}

func (e *MissingColumnsError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("could not map required columns: %s", strings.Join(names, ", "))
}

var headerPunctRe = regexp.MustCompile(`[^\w\s]`)
var headerSpaceRe = regexp.MustCompile(`[\s_]+`)

func cleanHeader(h string) string {
	s := strings.ToLower(strings.TrimSpace(h))
	s = headerPunctRe.ReplaceAllString(s, " ")
	s = headerSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// BuildHeaderMapping matches the CSV header row against the alias
// table. First occurrence wins when a field maps twice. Returns a
// MissingColumnsError when a required field cannot be mapped or when
// neither date column is present.
func BuildHeaderMapping(header []string) (HeaderMapping, error) {
	mapping := make(HeaderMapping, len(header))
	for i, h := range header {
		field, ok := headerAliases[cleanHeader(h)]
		if !ok {
			continue
		}
		if _, seen := mapping[field]; !seen {
			mapping[field] = i
		}
	}

	var missing []Field
	for _, f := range requiredFields {
		if _, ok := mapping[f]; !ok {
			missing = append(missing, f)
		}
	}
	_, hasEffective := mapping[FieldEffectiveDate]
	_, hasExpiration := mapping[FieldExpirationDate]
	if !hasEffective && !hasExpiration {
		missing = append(missing, FieldEffectiveDate)
	}

	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}
	return mapping, nil
}

// cell returns the mapped raw cell value for a field, or "" when the
// field is unmapped or the row is short.
func (m HeaderMapping) cell(row []string, f Field) string {
	idx, ok := m[f]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}
