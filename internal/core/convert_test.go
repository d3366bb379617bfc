package core

import (
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ParseDecimal Tests
// ----------------------------------------------------------------------------

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantValue string
	}{
		// Basic numbers
		{name: "positive integer", input: "123", wantValid: true, wantValue: "123"},
		{name: "zero", input: "0", wantValid: true, wantValue: "0"},
		{name: "negative decimal", input: "-456.78", wantValid: true, wantValue: "-456.78"},
		{name: "leading dot", input: ".5", wantValid: true, wantValue: "0.5"},
		{name: "scientific", input: "1.5e3", wantValid: true, wantValue: "1500"},

		// Currency and separators
		{name: "rupee sign", input: "₹1,500", wantValid: true, wantValue: "1500"},
		{name: "lakh grouping", input: "₹1,25,000.50", wantValid: true, wantValue: "125000.5"},
		{name: "Rs prefix", input: "Rs. 250", wantValid: true, wantValue: "250"},
		{name: "INR prefix", input: "INR 99.90", wantValid: true, wantValue: "99.9"},
		{name: "dollar sign", input: "$1,234.56", wantValid: true, wantValue: "1234.56"},

		// Accounting negatives
		{name: "parentheses negative", input: "(123.45)", wantValid: true, wantValue: "-123.45"},
		{name: "parentheses with currency", input: "(₹1,000)", wantValid: true, wantValue: "-1000"},

		// Whitespace
		{name: "surrounding whitespace", input: "  999.99  ", wantValid: true, wantValue: "999.99"},

		// Invalid
		{name: "empty", input: "", wantValid: false},
		{name: "whitespace only", input: "   ", wantValid: false},
		{name: "letters", input: "abc", wantValid: false},
		{name: "mixed", input: "12abc", wantValid: false},
		{name: "two dots", input: "1.2.3", wantValid: false},
		{name: "bare sign", input: "-", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimal(tt.input)
			if (err == nil) != tt.wantValid {
				t.Fatalf("ParseDecimal(%q) error = %v, wantValid %v", tt.input, err, tt.wantValid)
			}
			if tt.wantValid && got.String() != tt.wantValue {
				t.Errorf("ParseDecimal(%q) = %s, want %s", tt.input, got.String(), tt.wantValue)
			}
		})
	}
}

func TestParseInteger(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"1,200", 1200, false},
		{"12.0", 12, false},
		{"-3", -3, false},
		{"12.5", 0, true},
		{"ten", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInteger(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseInteger(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseInteger(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseDate Tests
// ----------------------------------------------------------------------------

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"ISO", "2024-01-15", "2024-01-15", true},
		{"ISO slashes", "2024/01/15", "2024-01-15", true},
		{"day first slash", "15/01/2024", "2024-01-15", true},
		{"day first short", "5/1/2024", "2024-01-05", true},
		{"day first dash", "15-01-2024", "2024-01-15", true},
		{"day first dot", "15.01.2024", "2024-01-15", true},
		{"month name", "15-Jan-2024", "2024-01-15", true},
		{"spelled out", "Jan 15, 2024", "2024-01-15", true},
		{"two digit year", "15/01/24", "2024-01-15", true},
		{"empty", "", "", false},
		{"garbage", "not a date", "", false},
		{"month out of range", "01/13/2024", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got.Format("2006-01-02") != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestParseDate_TwoDigitYearPivot(t *testing.T) {
	farFuture := (time.Now().Year() + TwoDigitYearPivot + 5) % 100

	input := "01/06/" + twoDigits(farFuture)
	got, ok := ParseDate(input)
	if !ok {
		t.Fatalf("ParseDate(%q) failed", input)
	}
	if got.After(time.Now().AddDate(TwoDigitYearPivot, 0, 0)) {
		t.Errorf("ParseDate(%q) = %s, expected previous century", input, got.Format("2006-01-02"))
	}
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

// ----------------------------------------------------------------------------
// Cell cleanup Tests
// ----------------------------------------------------------------------------

func TestNormalizeTaxID(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"27 aapcu1234c1zv", "27AAPCU1234C1ZV"},
		{" aapcu 1234 c ", "AAPCU1234C"},
		{"27AAPCU1234C1ZV", "27AAPCU1234C1ZV"},
		{"27\taapcu1234c1zv", "27AAPCU1234C1ZV"},
	}
	for _, tt := range tests {
		if got := NormalizeTaxID(tt.input); got != tt.want {
			t.Errorf("NormalizeTaxID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple string unchanged", input: "hello", want: "hello"},
		{name: "empty string", input: "", want: ""},
		{name: "surrounded by whitespace", input: "  hello  ", want: "hello"},
		{name: "Excel formula with quotes", input: `="hello"`, want: "hello"},
		{name: "Excel formula keeps leading zeros", input: `="007"`, want: "007"},
		{name: "Excel formula empty", input: `=""`, want: ""},
		{name: "plain equals kept", input: "=SUM(A1)", want: "=SUM(A1)"},
		{name: "whitespace inside formula", input: `="  x  "`, want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
