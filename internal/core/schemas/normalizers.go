package schemas

import "strings"

var units = []string{"pcs", "mtr", "kg", "roll"}

// IndianStates maps state and union territory names to their vehicle
// registration codes.
var IndianStates = map[string]string{
	"andhra pradesh":    "AP",
	"arunachal pradesh": "AR",
	"assam":             "AS",
	"bihar":             "BR",
	"chhattisgarh":      "CG",
	"goa":               "GA",
	"gujarat":           "GJ",
	"haryana":           "HR",
	"himachal pradesh":  "HP",
	"jharkhand":         "JH",
	"karnataka":         "KA",
	"kerala":            "KL",
	"madhya pradesh":    "MP",
	"maharashtra":       "MH",
	"manipur":           "MN",
	"meghalaya":         "ML",
	"mizoram":           "MZ",
	"nagaland":          "NL",
	"odisha":            "OD",
	"punjab":            "PB",
	"rajasthan":         "RJ",
	"sikkim":            "SK",
	"tamil nadu":        "TN",
	"telangana":         "TS",
	"tripura":           "TR",
	"uttar pradesh":     "UP",
	"uttarakhand":       "UK",
	"west bengal":       "WB",
	"delhi":             "DL",
	"jammu and kashmir": "JK",
	"ladakh":            "LA",
	"puducherry":        "PY",
	"chandigarh":        "CH",
}

// NormalizeIndianState converts state names to their 2-letter codes.
// If the input is already a code or not recognized, returns it trimmed.
func NormalizeIndianState(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)

	if code, ok := IndianStates[lower]; ok {
		return code
	}

	upper := strings.ToUpper(s)
	for _, code := range IndianStates {
		if upper == code {
			return code
		}
	}

	return s
}

// StripSpaces removes every whitespace character.
func StripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
