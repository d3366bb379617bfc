package migrations_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/JonMunkholm/weaveops/internal/core"
	_ "github.com/JonMunkholm/weaveops/internal/core/schemas"
	"github.com/JonMunkholm/weaveops/internal/store"
	"github.com/JonMunkholm/weaveops/migrations"
)

func TestFiles_Ordered(t *testing.T) {
	names, err := migrations.Files()
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(names) == 0 || names[0] != "001_init.sql" {
		t.Fatalf("Files = %v, want 001_init.sql first", names)
	}
}

// columns returns the column names declared by CREATE TABLE for table.
func columns(t *testing.T, ddl, table string) map[string]bool {
	t.Helper()
	re := regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS ` + table + ` \((.*?)\n\);`)
	m := re.FindStringSubmatch(ddl)
	if m == nil {
		t.Fatalf("no CREATE TABLE for %s", table)
	}
	cols := make(map[string]bool)
	for _, line := range strings.Split(m[1], "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			cols[fields[0]] = true
		}
	}
	return cols
}

func TestInit_CoversEverySchema(t *testing.T) {
	ddl, err := migrations.Read("001_init.sql")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	for _, schema := range core.All() {
		t.Run(string(schema.Kind), func(t *testing.T) {
			cols := columns(t, ddl, schema.Table)
			want := append(schema.Headers(), store.TenantColumn, core.ImportIDColumn)
			for _, c := range want {
				if !cols[c] {
					t.Errorf("%s has no column %q", schema.Table, c)
				}
			}
			if !cols["PRIMARY"] || !strings.Contains(ddl, "PRIMARY KEY (tenant_id, id)") {
				t.Errorf("%s: ids must be keyed per tenant", schema.Table)
			}
			for _, k := range schema.UniqueKeys {
				index := schema.Table + "_tenant_" + k.Field + "_key"
				if !strings.Contains(ddl, index) {
					t.Errorf("missing unique index %s", index)
				}
			}
		})
	}

	if strings.Contains(ddl, "TEXT PRIMARY KEY") {
		t.Error("id must not be a global primary key")
	}

	runs := columns(t, ddl, core.RunsTable)
	for _, c := range []string{"id", store.TenantColumn, "entity", "file_name", "operation", "total", "imported", "skipped", "failed", "status", "created_by", "created_at"} {
		if !runs[c] {
			t.Errorf("%s has no column %q", core.RunsTable, c)
		}
	}
}
