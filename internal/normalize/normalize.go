// Package normalize provides pure functions that turn raw spreadsheet
// strings into canonical values: E.164 phone numbers, canonical policy
// type labels, numeric premiums and calendar dates.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nonDigitRe = regexp.MustCompile(`\D`)

// Phone converts a raw phone string to E.164. Returns the normalized
// number and true, or "" and false when the input has no usable shape.
//
// 10 digits are assumed US and prefixed +1. 11 digits with a leading 1
// get a bare + prefix. Inputs already starting with + keep their digits
// as long as at least 10 remain.
func Phone(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}

	digits := nonDigitRe.ReplaceAllString(trimmed, "")

	if strings.HasPrefix(trimmed, "+") {
		if len(digits) >= 10 {
			return "+" + digits, true
		}
		return "", false
	}

	switch {
	case len(digits) == 10:
		return "+1" + digits, true
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits, true
	}
	return "", false
}

// Canonical policy type labels.
const (
	TypeWorkersCompensation     = "Workers Compensation"
	TypeGeneralLiability        = "General Liability"
	TypeTailoredProtection      = "Tailored Protection Policy"
	TypeCommercialPackage       = "Commercial Package Policy"
	TypeBOP                     = "BOP"
	TypeCommercialAuto          = "Commercial Auto"
	TypePersonalAuto            = "Personal Auto"
	TypeHomeowners              = "Homeowners"
	TypeDwellingFire            = "Dwelling Fire"
	TypeLife                    = "Life"
	TypeHealth                  = "Health"
)

// policyTypeSynonyms maps cleaned-up raw text to canonical labels.
// Keys are lowercase with punctuation stripped and whitespace collapsed.
var policyTypeSynonyms = map[string]string{
	"wc":                         TypeWorkersCompensation,
	"workers comp":               TypeWorkersCompensation,
	"workers compensation":       TypeWorkersCompensation,
	"work comp":                  TypeWorkersCompensation,
	"workmans comp":              TypeWorkersCompensation,
	"workers compensation wc":    TypeWorkersCompensation,

	"gl":                  TypeGeneralLiability,
	"general liability":   TypeGeneralLiability,
	"gen liability":       TypeGeneralLiability,
	"liability":           TypeGeneralLiability,
	"commercial liability": TypeGeneralLiability,

	"tpp":                        TypeTailoredProtection,
	"tailored protection":        TypeTailoredProtection,
	"tailored protection policy": TypeTailoredProtection,

	"cpp":                       TypeCommercialPackage,
	"commercial package":        TypeCommercialPackage,
	"commercial package policy": TypeCommercialPackage,
	"package":                   TypeCommercialPackage,
	"package policy":            TypeCommercialPackage,

	"bop":                     TypeBOP,
	"business owners":         TypeBOP,
	"business owners policy":  TypeBOP,
	"businessowners":          TypeBOP,

	"ca":               TypeCommercialAuto,
	"commercial auto":  TypeCommercialAuto,
	"comm auto":        TypeCommercialAuto,
	"business auto":    TypeCommercialAuto,
	"commercial vehicle": TypeCommercialAuto,

	"pa":            TypePersonalAuto,
	"personal auto": TypePersonalAuto,
	"auto":          TypePersonalAuto,
	"car":           TypePersonalAuto,
	"automobile":    TypePersonalAuto,
	"personal automobile": TypePersonalAuto,

	"ho":          TypeHomeowners,
	"home":        TypeHomeowners,
	"homeowner":   TypeHomeowners,
	"homeowners":  TypeHomeowners,
	"home owners": TypeHomeowners,
	"ho3":         TypeHomeowners,

	"df":            TypeDwellingFire,
	"dwelling":      TypeDwellingFire,
	"dwelling fire": TypeDwellingFire,
	"dp3":           TypeDwellingFire,
	"fire":          TypeDwellingFire,

	"life":           TypeLife,
	"term life":      TypeLife,
	"whole life":     TypeLife,
	"life insurance": TypeLife,

	"health":           TypeHealth,
	"medical":          TypeHealth,
	"health insurance": TypeHealth,
}

var punctuationRe = regexp.MustCompile(`[^\w\s]`)
var whitespaceRe = regexp.MustCompile(`\s+`)

// PolicyType maps raw policy-type text onto a canonical label. Returns
// "" and false when the text matches no known synonym.
func PolicyType(raw string) (string, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = punctuationRe.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "", false
	}
	canonical, ok := policyTypeSynonyms[cleaned]
	return canonical, ok
}

// Premium parses a currency string like "$1,200.50" into a number.
// Negative or unparsable values are rejected.
func Premium(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// strictDateFormats are tried with echo-back verification: the parsed
// date's components must match the input numbers exactly, so an input
// like "02/30/2024" does not silently roll over to March 1.
var strictDateFormats = []struct {
	re    *regexp.Regexp
	order [3]int // indexes of year, month, day within the submatches
}{
	{regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), [3]int{3, 1, 2}}, // MM/DD/YYYY
	{regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`), [3]int{1, 2, 3}}, // YYYY-MM-DD
	{regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`), [3]int{3, 1, 2}}, // MM-DD-YYYY
}

// fallbackLayouts cover less common but unambiguous inputs.
var fallbackLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006/01/02",
	time.RFC3339,
}

// Date parses a date string in MM/DD/YYYY, YYYY-MM-DD or MM-DD-YYYY
// form. The primary formats are verified field by field so invalid
// calendar dates are rejected instead of rolled over.
func Date(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}

	for _, f := range strictDateFormats {
		m := f.re.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[f.order[0]])
		month, _ := strconv.Atoi(m[f.order[1]])
		day, _ := strconv.Atoi(m[f.order[2]])

		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if d.Year() != year || int(d.Month()) != month || d.Day() != day {
			return time.Time{}, false
		}
		return d, true
	}

	for _, layout := range fallbackLayouts {
		if d, err := time.Parse(layout, trimmed); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// AddMonths adds n months to a date, clamping the day-of-month to the
// last valid day of the target month. Jan 31 + 1 month is Feb 28 (or 29
// in a leap year), never Mar 3.
func AddMonths(d time.Time, n int) time.Time {
	year, month, day := d.Date()
	firstOfTarget := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, d.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, d.Location())
}

// AddOneYear returns the calendar-safe date one year later.
func AddOneYear(d time.Time) time.Time {
	return AddMonths(d, 12)
}

// SubtractOneYear returns the calendar-safe date one year earlier.
func SubtractOneYear(d time.Time) time.Time {
	return AddMonths(d, -12)
}
