package schemas

import "github.com/JonMunkholm/weaveops/internal/core"

// User describes dashboard accounts. Only admins may import them.
func User() *core.RecordSchema {
	return &core.RecordSchema{
		Kind:                 core.KindUser,
		Table:                "users",
		Label:                "Users",
		IDField:              "id",
		IDPrefix:             "USR",
		RejectUnknownHeaders: true,
		Fields: []core.FieldSpec{
			idField(),
			{Name: "email", Label: "email", Required: true, Format: core.FormatEmail},
			{Name: "full_name", Label: "full name", Required: true},
			{
				Name:     "role",
				Label:    "role",
				Kind:     core.FieldEnum,
				Required: true,
				Enum:     []string{"admin", "manager", "accountant", "staff"},
			},
			{Name: "phone", Label: "phone", Format: core.FormatPhone},
			activeStatus,
		},
		UniqueKeys: []core.UniqueKey{
			{Field: "email", Label: "Email"},
		},
		SearchFields:    []string{"email", "full_name"},
		FilterFields:    []string{"role", "status"},
		PresenceFilters: map[string]string{"has_phone": "phone"},
		ImportRoles:     []core.Role{core.RoleAdmin},
		ExportRoles:     managers,
	}
}
