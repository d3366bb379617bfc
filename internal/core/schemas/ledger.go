package schemas

import "github.com/JonMunkholm/weaveops/internal/core"

// Ledger describes customer and supplier ledgers.
func Ledger() *core.RecordSchema {
	return &core.RecordSchema{
		Kind:     core.KindLedger,
		Table:    "ledgers",
		Label:    "Ledgers",
		IDField:  "id",
		IDPrefix: "LED",
		Fields: []core.FieldSpec{
			idField(),
			{Name: "business_name", Label: "business name", Required: true},
			{Name: "contact_person", Label: "contact person"},
			{Name: "email", Label: "email", Format: core.FormatEmail},
			{Name: "phone", Label: "phone", Format: core.FormatPhone},
			{Name: "gst_number", Label: "GST number", Format: core.FormatTax15},
			{Name: "pan_number", Label: "PAN number", Format: core.FormatTax10},
			{Name: "address", Label: "address"},
			{Name: "city", Label: "city"},
			{Name: "state", Label: "state", Normalizer: NormalizeIndianState},
			{Name: "pincode", Label: "pincode", Normalizer: StripSpaces},
			{Name: "country", Label: "country", Default: "India"},
			{
				Name:  "ledger_type",
				Label: "ledger type",
				Kind:  core.FieldEnum,
				Enum:  []string{"customer", "supplier", "weaver", "stitcher", "transporter"},
			},
			activeStatus,
			{Name: "opening_balance", Label: "opening balance", Kind: core.FieldNumber},
		},
		UniqueKeys: []core.UniqueKey{
			{Field: "business_name", Label: "Business name", Fold: true},
		},
		SearchFields: []string{"business_name", "contact_person", "email", "city"},
		FilterFields: []string{"ledger_type", "status", "state", "city"},
		PresenceFilters: map[string]string{
			"has_gst":   "gst_number",
			"has_pan":   "pan_number",
			"has_email": "email",
		},
		ImportRoles: bookkeepers,
		ExportRoles: everyone,
	}
}
