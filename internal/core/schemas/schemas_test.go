package schemas

import (
	"testing"

	"github.com/JonMunkholm/weaveops/internal/core"
)

func TestAllKindsRegistered(t *testing.T) {
	all := core.All()
	if len(all) != len(core.Kinds) {
		t.Fatalf("registered %d schemas, want %d", len(all), len(core.Kinds))
	}
	for i, s := range all {
		if s.Kind != core.Kinds[i] {
			t.Errorf("All()[%d] = %s, want %s", i, s.Kind, core.Kinds[i])
		}
	}
}

func TestSchemaShape(t *testing.T) {
	tests := []struct {
		kind          core.EntityKind
		table         string
		prefix        string
		key           string
		fold          bool
		rejectUnknown bool
	}{
		{core.KindLedger, "ledgers", "LED", "business_name", true, false},
		{core.KindUser, "users", "USR", "email", false, true},
		{core.KindProduct, "products", "PRD", "sku", false, false},
		{core.KindInventory, "inventory", "INV", "item_code", false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			s, ok := core.Get(tt.kind)
			if !ok {
				t.Fatalf("schema %s not registered", tt.kind)
			}
			if s.Table != tt.table {
				t.Errorf("Table = %q, want %q", s.Table, tt.table)
			}
			if s.IDPrefix != tt.prefix {
				t.Errorf("IDPrefix = %q, want %q", s.IDPrefix, tt.prefix)
			}
			if len(s.UniqueKeys) != 1 || s.UniqueKeys[0].Field != tt.key || s.UniqueKeys[0].Fold != tt.fold {
				t.Errorf("UniqueKeys = %+v, want %s (fold=%v)", s.UniqueKeys, tt.key, tt.fold)
			}
			if s.RejectUnknownHeaders != tt.rejectUnknown {
				t.Errorf("RejectUnknownHeaders = %v, want %v", s.RejectUnknownHeaders, tt.rejectUnknown)
			}
			for _, name := range append(s.SearchFields, s.FilterFields...) {
				if _, ok := s.Field(name); !ok {
					t.Errorf("search/filter column %q is not a field", name)
				}
			}
			for param, name := range s.PresenceFilters {
				if _, ok := s.Field(name); !ok {
					t.Errorf("presence filter %s -> %q is not a field", param, name)
				}
			}
		})
	}
}

func TestInventoryStatusFields(t *testing.T) {
	s, _ := core.Get(core.KindInventory)
	for _, name := range []string{"classification", "quality_grade", "status"} {
		f, ok := s.Field(name)
		if !ok {
			t.Fatalf("inventory has no %s field", name)
		}
		if f.Kind != core.FieldEnum {
			t.Errorf("%s kind = %v, want enum", name, f.Kind)
		}
	}
}

// ============================================================================
// Normalizers
// ============================================================================

func TestNormalizeIndianState(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Gujarat", "GJ"},
		{"  tamil nadu ", "TN"},
		{"mh", "MH"},
		{"Atlantis", "Atlantis"},
	}
	for _, tt := range tests {
		if got := NormalizeIndianState(tt.in); got != tt.want {
			t.Errorf("NormalizeIndianState(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStripSpaces(t *testing.T) {
	if got := StripSpaces(" 395 003 "); got != "395003" {
		t.Errorf("StripSpaces = %q, want 395003", got)
	}
}

func TestEnumsAndKeysAreNotRewritten(t *testing.T) {
	for _, s := range core.All() {
		keys := make(map[string]bool)
		for _, uk := range s.UniqueKeys {
			keys[uk.Field] = true
		}
		for _, f := range s.Fields {
			if f.Normalizer == nil {
				continue
			}
			if f.Kind == core.FieldEnum {
				t.Errorf("%s.%s: enum field has a normalizer", s.Kind, f.Name)
			}
			if keys[f.Name] || f.Format == core.FormatEmail || f.Name == "sku" {
				t.Errorf("%s.%s: key field has a normalizer", s.Kind, f.Name)
			}
		}
	}
}
