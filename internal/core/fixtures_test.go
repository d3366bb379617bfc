package core

// testLedger is a small ledger-shaped schema for package-internal tests.
// The production schemas live in core/schemas, which imports this package.
func testLedger() *RecordSchema {
	return &RecordSchema{
		Kind:     KindLedger,
		Table:    "ledgers",
		Label:    "Ledgers",
		IDField:  "id",
		IDPrefix: "LED",
		Fields: []FieldSpec{
			{Name: "id", Label: "id"},
			{Name: "business_name", Label: "business name", Required: true},
			{Name: "email", Label: "email", Format: FormatEmail},
			{Name: "phone", Label: "phone", Format: FormatPhone},
			{Name: "gst_number", Label: "GST number", Format: FormatTax15},
			{Name: "pan_number", Label: "PAN number", Format: FormatTax10},
			{Name: "country", Label: "country", Default: "India"},
			{Name: "ledger_type", Label: "ledger type", Kind: FieldEnum, Enum: []string{"customer", "supplier", "weaver"}},
			{Name: "status", Label: "status", Kind: FieldEnum, Enum: []string{"active", "inactive"}, Default: "active"},
			{Name: "opening_balance", Label: "opening balance", Kind: FieldNumber},
		},
		UniqueKeys:      []UniqueKey{{Field: "business_name", Label: "Business name", Fold: true}},
		SearchFields:    []string{"business_name", "email"},
		FilterFields:    []string{"ledger_type", "status"},
		PresenceFilters: map[string]string{"has_gst": "gst_number"},
		ImportRoles:     []Role{RoleAdmin, RoleManager},
		ExportRoles:     []Role{RoleAdmin, RoleManager, RoleStaff},
	}
}

// testInventory exercises integer, date and strict-header handling.
func testInventory() *RecordSchema {
	return &RecordSchema{
		Kind:                 KindInventory,
		Table:                "inventory",
		Label:                "Inventory",
		IDField:              "id",
		IDPrefix:             "INV",
		RejectUnknownHeaders: true,
		Fields: []FieldSpec{
			{Name: "id", Label: "id"},
			{Name: "item_code", Label: "item code", Required: true},
			{Name: "quantity", Label: "quantity", Kind: FieldNumber, Required: true, NonNegative: true},
			{Name: "pieces", Label: "pieces", Kind: FieldNumber, Integer: true, NonNegative: true},
			{Name: "received_date", Label: "received date", Kind: FieldDate},
		},
		UniqueKeys:  []UniqueKey{{Field: "item_code", Label: "Item code"}},
		ImportRoles: []Role{RoleAdmin},
		ExportRoles: []Role{RoleAdmin},
	}
}

func bound(row int, values map[string]string) BoundRow {
	return BoundRow{Row: row, Values: values}
}
