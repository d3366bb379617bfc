package core

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/weaveops/internal/store"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExportFormat selects the serializer used by the exporter.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ContentType returns the MIME type for the format.
func (f ExportFormat) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// ExportFileName returns "<table>-export-<YYYY-MM-DD>.<ext>".
func ExportFileName(schema *RecordSchema, format ExportFormat, at time.Time) string {
	if format == "" {
		format = FormatCSV
	}
	return fmt.Sprintf("%s-export-%s.%s", schema.Table, at.Format("2006-01-02"), format)
}

// Exporter reads persisted records back out as a delimited file.
// It applies no row limit; callers constrain the result with filters.
type Exporter struct {
	Store     store.Store
	Delimiter rune
}

// Fetch returns every record of schema matching f, ordered by the
// schema's identifier.
func (e *Exporter) Fetch(ctx context.Context, schema *RecordSchema, f store.Filter) ([]store.Record, error) {
	if f.OrderBy == "" {
		f = f.Order(schema.IDField, false)
	}
	recs, err := e.Store.Select(ctx, schema.Table, f)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", schema.Kind, err)
	}
	return recs, nil
}

// Export fetches matching records and writes them to w in format.
// It returns the number of records written.
func (e *Exporter) Export(ctx context.Context, w io.Writer, schema *RecordSchema, f store.Filter, format ExportFormat) (int, error) {
	recs, err := e.Fetch(ctx, schema, f)
	if err != nil {
		return 0, err
	}

	switch format {
	case FormatXLSX:
		err = WriteXLSX(w, schema.Label, schema.ExportColumns(), recs)
	default:
		err = WriteCSV(w, e.Delimiter, schema.ExportColumns(), recs)
	}
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// WriteCSV writes a header line followed by one line per record.
// Values containing the delimiter or a quote are quoted with inner quotes
// doubled. Line breaks inside values are flattened to spaces because the
// tokenizer reads one record per line.
func WriteCSV(w io.Writer, delim rune, columns []string, recs []store.Record) error {
	cw := csv.NewWriter(w)
	if delim != 0 {
		cw.Comma = delim
	}

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(columns))
	for _, rec := range recs {
		for i, col := range columns {
			row[i] = exportCell(rec[col])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook with the same layout as WriteCSV.
func WriteXLSX(w io.Writer, sheet string, columns []string, recs []store.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for r, rec := range recs {
		cells := make([]interface{}, len(columns))
		for i, col := range columns {
			cells[i] = xlsxCell(rec[col])
		}
		addr, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, addr, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	return f.Write(w)
}

func exportCell(v any) string {
	s := store.FormatValue(v)
	if strings.ContainsAny(s, "\r\n") {
		s = strings.Join(strings.Fields(strings.NewReplacer("\r", " ", "\n", " ").Replace(s)), " ")
	}
	return s
}

func xlsxCell(v any) interface{} {
	switch val := v.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		return val.InexactFloat64()
	case int64:
		return val
	case time.Time:
		return store.FormatValue(val)
	default:
		return exportCell(val)
	}
}
