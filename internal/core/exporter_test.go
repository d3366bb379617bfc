package core

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/weaveops/internal/store"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestWriteCSV_Quoting(t *testing.T) {
	recs := []store.Record{
		{"business_name": `Acme, "Best" Co.`, "opening_balance": decimal.RequireFromString("1500.50")},
		{"business_name": "Line\nBreak", "opening_balance": nil},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ',', []string{"business_name", "opening_balance"}, recs); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "business_name,opening_balance\n" +
		`"Acme, ""Best"" Co.",1500.5` + "\n" +
		"Line Break,\n"
	if buf.String() != want {
		t.Errorf("WriteCSV() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteCSV_ReadsBackThroughTokenizer(t *testing.T) {
	value := `Acme, "Best" Co.`
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ',', []string{"business_name"}, []store.Record{{"business_name": value}}); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	rows, err := Tokenize(&buf, ',')
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if len(rows) != 2 || rows[1].Cells[0] != value {
		t.Errorf("rows = %q, want cell %q", rows, value)
	}
}

func TestExportFileName(t *testing.T) {
	at := time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC)
	if got := ExportFileName(testLedger(), FormatCSV, at); got != "ledgers-export-2024-03-09.csv" {
		t.Errorf("ExportFileName(csv) = %q", got)
	}
	if got := ExportFileName(testLedger(), FormatXLSX, at); got != "ledgers-export-2024-03-09.xlsx" {
		t.Errorf("ExportFileName(xlsx) = %q", got)
	}
	if FormatCSV.ContentType() != "text/csv" {
		t.Errorf("ContentType = %q", FormatCSV.ContentType())
	}
}

func TestExporter_Export(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed("ledgers",
		store.Record{store.TenantColumn: "t1", "id": "LED-2", "business_name": "Beta", "status": "inactive"},
		store.Record{store.TenantColumn: "t1", "id": "LED-1", "business_name": "Alpha", "status": "active"},
		store.Record{store.TenantColumn: "t2", "id": "LED-3", "business_name": "Other tenant"},
	)
	e := &Exporter{Store: mem, Delimiter: ','}

	var buf bytes.Buffer
	n, err := e.Export(context.Background(), &buf, testLedger(), store.ForTenant("t1"), FormatCSV)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Export() = %d records, want 2", n)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != strings.Join(testLedger().ExportColumns(), ",") || strings.HasPrefix(lines[0], "id,") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Alpha,") || !strings.HasPrefix(lines[2], "Beta,") {
		t.Errorf("rows not ordered by id: %q", lines[1:])
	}
}

func TestWriteXLSX(t *testing.T) {
	recs := []store.Record{
		{"sku": "CTN-01", "price": decimal.RequireFromString("249.5"), "stock": int64(40)},
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, "Products", []string{"sku", "price", "stock"}, recs); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Products")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %v", rows)
	}
	if strings.Join(rows[0], ",") != "sku,price,stock" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "CTN-01" || rows[1][1] != "249.5" || rows[1][2] != "40" {
		t.Errorf("row = %v", rows[1])
	}
}

func TestExportParams_Filter(t *testing.T) {
	mem := store.NewMemory()
	mem.Seed("ledgers",
		store.Record{store.TenantColumn: "t1", "id": "1", "business_name": "Surat Silk", "ledger_type": "weaver", "gst_number": "27AAPCU1234C1ZV"},
		store.Record{store.TenantColumn: "t1", "id": "2", "business_name": "Surat Dyes", "ledger_type": "supplier", "gst_number": nil},
		store.Record{store.TenantColumn: "t1", "id": "3", "business_name": "Erode Cotton", "ledger_type": "weaver", "gst_number": ""},
	)

	tests := []struct {
		name   string
		params ExportParams
		want   []string
	}{
		{"search", ExportParams{Search: "surat"}, []string{"1", "2"}},
		{"equality", ExportParams{Equals: map[string]string{"ledger_type": "weaver"}}, []string{"1", "3"}},
		{"unexposed column ignored", ExportParams{Equals: map[string]string{"business_name": "x"}}, []string{"1", "2", "3"}},
		{"presence", ExportParams{Presence: map[string]bool{"has_gst": true}}, []string{"1"}},
		{"absence", ExportParams{Presence: map[string]bool{"has_gst": false}}, []string{"2", "3"}},
		{"condition", ExportParams{Conditions: []store.Condition{{Column: "business_name", Op: store.OpStartsWith, Value: "erode"}}}, []string{"3"}},
		{"combined", ExportParams{Search: "surat", Equals: map[string]string{"ledger_type": "weaver"}}, []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.params.Filter(testLedger(), "t1")
			if err != nil {
				t.Fatalf("Filter() error = %v", err)
			}
			recs, err := mem.Select(context.Background(), "ledgers", f.Order("id", false))
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			var ids []string
			for _, r := range recs {
				ids = append(ids, r.String("id"))
			}
			if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
				t.Errorf("ids = %v, want %v", ids, tt.want)
			}
		})
	}

	if _, err := (ExportParams{}).Filter(testLedger(), ""); err == nil {
		t.Error("expected error without tenant")
	}
}
