package schemas

import "github.com/JonMunkholm/weaveops/internal/core"

// Inventory describes stock lots moving through quality control.
func Inventory() *core.RecordSchema {
	return &core.RecordSchema{
		Kind:                 core.KindInventory,
		Table:                "inventory",
		Label:                "Inventory",
		IDField:              "id",
		IDPrefix:             "INV",
		RejectUnknownHeaders: true,
		Fields: []core.FieldSpec{
			idField(),
			{Name: "item_code", Label: "item code", Required: true},
			{Name: "item_name", Label: "item name", Required: true},
			{Name: "sku", Label: "SKU"},
			{Name: "quantity", Label: "quantity", Kind: core.FieldNumber, Required: true, NonNegative: true},
			{Name: "unit", Label: "unit", Kind: core.FieldEnum, Enum: units},
			{Name: "location", Label: "location"},
			{
				Name:  "classification",
				Label: "classification",
				Kind:  core.FieldEnum,
				Enum:  []string{"raw_material", "semi_finished", "finished_goods"},
			},
			{
				Name:  "quality_grade",
				Label: "quality grade",
				Kind:  core.FieldEnum,
				Enum:  []string{"A", "B", "C", "rejected"},
			},
			{
				Name:    "status",
				Label:   "status",
				Kind:    core.FieldEnum,
				Enum:    []string{"in_stock", "pending_qc", "qc_passed", "qc_failed", "dispatched"},
				Default: "in_stock",
			},
			{Name: "received_date", Label: "received date", Kind: core.FieldDate},
		},
		UniqueKeys: []core.UniqueKey{
			{Field: "item_code", Label: "Item code"},
		},
		SearchFields:    []string{"item_code", "item_name", "sku", "location"},
		FilterFields:    []string{"classification", "quality_grade", "status", "location"},
		PresenceFilters: map[string]string{"has_sku": "sku"},
		ImportRoles:     []core.Role{core.RoleAdmin, core.RoleManager, core.RoleStaff},
		ExportRoles:     everyone,
	}
}
