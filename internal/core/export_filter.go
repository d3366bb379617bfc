package core

import (
	"strings"

	"github.com/JonMunkholm/weaveops/internal/store"
)

// ExportParams are the caller-supplied export filters.
type ExportParams struct {
	// Search is a case-insensitive substring matched against SearchFields.
	Search string

	// Equals holds exact matches on the schema's FilterFields.
	Equals map[string]string

	// Presence maps a schema presence filter ("has_gst") to whether the
	// underlying field must be filled in (true) or blank (false).
	Presence map[string]bool

	// Conditions are generic column predicates (filter[col]=op:value).
	Conditions []store.Condition
}

// Filter builds the store filter for schema and tenant. Parameters naming
// columns the schema does not expose are ignored.
func (p ExportParams) Filter(schema *RecordSchema, tenant string) (store.Filter, error) {
	if strings.TrimSpace(tenant) == "" {
		return store.Filter{}, store.ErrNoTenant
	}
	f := store.ForTenant(tenant).Search(p.Search, schema.SearchFields...)

	for field, value := range p.Equals {
		if value == "" || !contains(schema.FilterFields, field) {
			continue
		}
		f = f.Eq(field, value)
	}

	for name, want := range p.Presence {
		field, ok := schema.PresenceFilters[name]
		if !ok {
			continue
		}
		op := store.OpPresent
		if !want {
			op = store.OpAbsent
		}
		f = f.Where(field, op, nil)
	}

	for _, c := range p.Conditions {
		if _, ok := schema.Field(c.Column); !ok || !store.ValidOperator(c.Op) {
			continue
		}
		f = f.Where(strings.ToLower(c.Column), c.Op, c.Value)
	}

	return f, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
