package normalize

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhone(t *testing.T) {
	e164 := regexp.MustCompile(`^\+1\d{10}$`)

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"ten digits", "2175551234", "+12175551234", true},
		{"formatted", "(217) 555-1234", "+12175551234", true},
		{"dots", "217.555.1234", "+12175551234", true},
		{"eleven with leading one", "12175551234", "+12175551234", true},
		{"already e164", "+12175551234", "+12175551234", true},
		{"international", "+447911123456", "+447911123456", true},
		{"plus too short", "+1234", "", false},
		{"too short", "555-1234", "", false},
		{"eleven without leading one", "22175551234", "", false},
		{"letters", "call me", "", false},
		{"empty", "", "", false},
		{"whitespace", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Phone(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			if ok && tt.want[:2] == "+1" {
				assert.Regexp(t, e164, got)
			}
		})
	}
}

func TestPolicyType(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"PA", "Personal Auto", true},
		{"personal auto", "Personal Auto", true},
		{"  Auto  ", "Personal Auto", true},
		{"wc", "Workers Compensation", true},
		{"Workers' Comp", "Workers Compensation", true},
		{"WORKERS   COMPENSATION", "Workers Compensation", true},
		{"G.L.", "General Liability", true},
		{"BOP", "BOP", true},
		{"Business Owners Policy", "BOP", true},
		{"homeowners", "Homeowners", true},
		{"HO-3", "Homeowners", true},
		{"Dwelling Fire", "Dwelling Fire", true},
		{"commercial auto", "Commercial Auto", true},
		{"Commercial Package Policy", "Commercial Package Policy", true},
		{"TPP", "Tailored Protection Policy", true},
		{"term life", "Life", true},
		{"health insurance", "Health", true},
		{"umbrella", "", false},
		{"", "", false},
		{"???", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := PolicyType(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPremium(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"1200", 1200, true},
		{"$1,200.50", 1200.50, true},
		{" $ 950 ", 950, true},
		{"0", 0, true},
		{"-50", 0, false},
		{"abc", 0, false},
		{"$", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Premium(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"us slashes", "01/15/2024", "2024-01-15", true},
		{"iso", "2024-01-15", "2024-01-15", true},
		{"us dashes", "01-15-2024", "2024-01-15", true},
		{"single digit fields", "1/5/2024", "2024-01-05", true},
		{"leap day", "02/29/2024", "2024-02-29", true},
		{"invalid rollover", "02/30/2024", "", false},
		{"invalid leap day", "02/29/2023", "", false},
		{"thirteenth month", "13/01/2024", "", false},
		{"long form", "January 15, 2024", "2024-01-15", true},
		{"garbage", "not a date", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Date(tt.input)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got.Format("2006-01-02"))
			}
		})
	}
}

func TestAddMonthsClampsDay(t *testing.T) {
	jan31Leap := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-02-29", AddMonths(jan31Leap, 1).Format("2006-01-02"))

	jan31 := time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2023-02-28", AddMonths(jan31, 1).Format("2006-01-02"))

	mar31 := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-04-30", AddMonths(mar31, 1).Format("2006-01-02"))

	// no clamping needed
	jan15 := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-02-15", AddMonths(jan15, 1).Format("2006-01-02"))

	// backwards across a year boundary
	assert.Equal(t, "2023-12-15", AddMonths(jan15, -1).Format("2006-01-02"))
}

func TestAddOneYearLeapDay(t *testing.T) {
	feb29 := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-02-28", AddOneYear(feb29).Format("2006-01-02"))
	assert.Equal(t, "2023-02-28", SubtractOneYear(feb29).Format("2006-01-02"))

	jan15 := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-15", AddOneYear(jan15).Format("2006-01-02"))
	assert.Equal(t, "2023-01-15", SubtractOneYear(jan15).Format("2006-01-02"))
}
