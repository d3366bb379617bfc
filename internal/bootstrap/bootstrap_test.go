package bootstrap

import (
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/weaveops/internal/config"
	"github.com/JonMunkholm/weaveops/internal/core"
	"github.com/JonMunkholm/weaveops/internal/lock"
	"github.com/JonMunkholm/weaveops/internal/store"
)

func TestNewService_UsesImportConfig(t *testing.T) {
	cfg := &config.Config{Import: config.ImportConfig{
		BatchSize:      2,
		MaxFileSize:    1 << 20,
		MaxConcurrent:  3,
		Delimiter:      ";",
		DefaultCountry: "Bharat",
		PhoneRegion:    "IN",
	}}
	mem := store.NewMemory()
	svc := NewService(mem, lock.NewLocal(), cfg)

	if got := svc.Limiter().Capacity(); got != 3 {
		t.Errorf("Capacity() = %d, want 3", got)
	}

	summary, err := svc.Import(context.Background(), core.ImportRequest{
		Actor:    core.Actor{Tenant: "t1", Role: core.RoleAdmin},
		Entity:   core.KindLedger,
		FileName: "ledgers.csv",
		Body:     strings.NewReader("business_name;phone\nAcme;98765 43210\n"),
	})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if summary.Imported != 1 {
		t.Fatalf("Imported = %d, errors %v", summary.Imported, summary.Messages())
	}

	rec := summary.Records[0]
	if got := rec.String("country"); got != "Bharat" {
		t.Errorf("country = %q, want configured default", got)
	}
	if got := rec.String("phone"); got != "+919876543210" {
		t.Errorf("phone = %q, want E.164 in the configured region", got)
	}
}

func TestDatabaseName(t *testing.T) {
	if got := databaseName("postgres://u:p@localhost:5432/weaveops?sslmode=disable"); got != "weaveops" {
		t.Errorf("databaseName() = %q", got)
	}
}
