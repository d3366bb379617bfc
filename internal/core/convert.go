package core

// convert.go turns user-provided cell text into typed values.
//
// Uploads come from spreadsheets exported on Indian locales, so the parsers
// accept rupee signs, lakh-style thousands separators, accounting negatives
// and day-first dates.

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var errNotNumber = errors.New("invalid number")

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are
// moved to the previous century.
var TwoDigitYearPivot = 20

var (
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02",
		"02/01/2006", "2/1/2006", "02-01-2006", "2-1-2006", "02.01.2006",
		"02-Jan-2006", "2-Jan-2006", "2 Jan 2006", "Jan 2, 2006",
	}
	twoDigitYearLayouts = []string{
		"02/01/06", "2/1/06", "02-01-06", "02-Jan-06",
	}
)

// ParseDecimal parses a money or quantity cell.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errNotNumber
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.NewReplacer(
		"₹", "", // rupee
		"Rs.", "",
		"INR", "",
		"$", "",
		",", "",
	).Replace(s)
	s = strings.TrimSpace(s)

	if negative {
		s = "-" + s
	}
	if !numericRegex.MatchString(s) {
		return decimal.Zero, errNotNumber
	}
	return decimal.NewFromString(s)
}

// ParseInteger parses a whole-number cell. "12.0" is accepted, "12.5" is not.
func ParseInteger(s string) (int64, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, errNotNumber
	}
	return strconv.ParseInt(d.Truncate(0).String(), 10, 64)
}

// ParseDate parses a date cell and returns it at midnight UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeTaxID strips every whitespace rune and upper-cases the rest:
// "27 aapcu1234c1zv" -> "27AAPCU1234C1ZV".
func NormalizeTaxID(s string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace and the Excel text-formula wrapper (="...").
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return strings.TrimSpace(s)
}
