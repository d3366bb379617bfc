// Package schemas registers the record schemas with the core registry.
// Import this package for its side effects to make every entity available.
package schemas

import "github.com/JonMunkholm/weaveops/internal/core"

func init() {
	core.Register(Ledger())
	core.Register(User())
	core.Register(Product())
	core.Register(Inventory())
}

var (
	everyone    = []core.Role{core.RoleAdmin, core.RoleManager, core.RoleAccountant, core.RoleStaff}
	managers    = []core.Role{core.RoleAdmin, core.RoleManager}
	bookkeepers = []core.Role{core.RoleAdmin, core.RoleManager, core.RoleAccountant}
)

var activeStatus = core.FieldSpec{
	Name:    "status",
	Label:   "status",
	Kind:    core.FieldEnum,
	Enum:    []string{"active", "inactive"},
	Default: "active",
}

func idField() core.FieldSpec {
	return core.FieldSpec{Name: "id", Label: "id"}
}
