package schemas

import "github.com/JonMunkholm/weaveops/internal/core"

// Product describes the sellable catalogue.
func Product() *core.RecordSchema {
	return &core.RecordSchema{
		Kind:     core.KindProduct,
		Table:    "products",
		Label:    "Products",
		IDField:  "id",
		IDPrefix: "PRD",
		Fields: []core.FieldSpec{
			idField(),
			{Name: "sku", Label: "SKU", Required: true},
			{Name: "name", Label: "name", Required: true},
			{
				Name:  "category",
				Label: "category",
				Kind:  core.FieldEnum,
				Enum:  []string{"fabric", "yarn", "garment", "accessory", "other"},
			},
			{Name: "description", Label: "description"},
			{
				Name:    "unit",
				Label:   "unit",
				Kind:    core.FieldEnum,
				Enum:    units,
				Default: "pcs",
			},
			{Name: "price", Label: "price", Kind: core.FieldNumber, NonNegative: true},
			{Name: "hsn_code", Label: "HSN code", Normalizer: StripSpaces},
			{Name: "gst_rate", Label: "GST rate", Kind: core.FieldNumber, NonNegative: true},
			{Name: "stock_quantity", Label: "stock quantity", Kind: core.FieldNumber, Integer: true, NonNegative: true},
			activeStatus,
		},
		UniqueKeys: []core.UniqueKey{
			{Field: "sku", Label: "SKU"},
		},
		SearchFields:    []string{"sku", "name", "description"},
		FilterFields:    []string{"category", "unit", "status"},
		PresenceFilters: map[string]string{"has_hsn": "hsn_code"},
		ImportRoles:     managers,
		ExportRoles:     everyone,
	}
}
