package core

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/weaveops/internal/store"
)

// EntityKind names one of the importable record families.
type EntityKind string

const (
	KindLedger    EntityKind = "ledger"
	KindUser      EntityKind = "user"
	KindProduct   EntityKind = "product"
	KindInventory EntityKind = "inventory"
)

// Kinds lists every entity kind in display order.
var Kinds = []EntityKind{KindLedger, KindUser, KindProduct, KindInventory}

// ParseEntityKind accepts singular or plural names ("ledgers", "Product").
func ParseEntityKind(s string) (EntityKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "s")
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEntity, s)
}

// Role is a caller's role within a tenant.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleAccountant Role = "accountant"
	RoleStaff      Role = "staff"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleManager, RoleAccountant, RoleStaff}

// ParseRole accepts a known role name in any case.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !Allows(Roles, r) {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

// Operation selects the validator/writer variant for an upload.
type Operation string

const (
	OpImport Operation = "import"
	OpUpdate Operation = "update"
)

// ParseOperation maps an empty value to OpImport.
func ParseOperation(s string) (Operation, error) {
	switch Operation(strings.ToLower(strings.TrimSpace(s))) {
	case "", OpImport:
		return OpImport, nil
	case OpUpdate:
		return OpUpdate, nil
	}
	return "", fmt.Errorf("unknown operation: %q", s)
}

// FieldKind represents the expected data type for a field.
type FieldKind int

const (
	FieldString FieldKind = iota
	FieldNumber
	FieldEnum
	FieldDate
)

// Format is an additional format rule applied to string fields.
type Format int

const (
	FormatNone Format = iota
	FormatEmail
	FormatTax15
	FormatTax10
	FormatPhone
)

// FieldSpec defines validation rules for a single column.
type FieldSpec struct {
	Name        string              // Header and column name, lower snake_case
	Label       string              // Used in row messages: "Invalid {Label} format"
	Kind        FieldKind           // Expected data type
	Required    bool                // Header must exist and cell must be non-blank
	Default     string              // Filled in when the cell is blank on import
	Enum        []string            // Allowed values for FieldEnum (case-sensitive)
	Format      Format              // Extra format rule for FieldString
	Integer     bool                // FieldNumber parses as int64 instead of decimal
	NonNegative bool                // FieldNumber rejects values below zero
	Normalizer  func(string) string // Applied after trimming, before validation
}

// TypeName names the field's kind the way schema listings show it.
func (f FieldSpec) TypeName() string {
	switch f.Kind {
	case FieldNumber:
		if f.Integer {
			return "integer"
		}
		return "number"
	case FieldEnum:
		return "enum"
	case FieldDate:
		return "date"
	}
	switch f.Format {
	case FormatEmail:
		return "email"
	case FormatPhone:
		return "phone"
	case FormatTax15, FormatTax10:
		return "tax_id"
	}
	return "string"
}

// UniqueKey is a field whose value must not already exist for the tenant.
type UniqueKey struct {
	Field string
	Label string // "Business name" in `Business name "Acme" already exists`
	Fold  bool   // Case-insensitive comparison
}

// RecordSchema describes one importable table.
type RecordSchema struct {
	Kind     EntityKind
	Table    string
	Label    string // Display name: "Ledgers"
	IDField  string // System identifier column, declared as an optional field
	IDPrefix string // "LED" in LED-1700000000000-3F9A1C2B

	// RejectUnknownHeaders fails the whole upload when the file carries a
	// header that is not a declared field. When false such columns are ignored.
	RejectUnknownHeaders bool

	Fields     []FieldSpec
	UniqueKeys []UniqueKey

	SearchFields    []string          // Columns matched by the export "search" parameter
	FilterFields    []string          // Columns accepting equality filters on export
	PresenceFilters map[string]string // "has_gst" -> "gst_number"

	ImportRoles []Role
	ExportRoles []Role
}

// Field returns the spec for name (case-insensitive).
func (s *RecordSchema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Headers returns the declared field names in column order.
func (s *RecordSchema) Headers() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// RequiredHeaders returns the headers an upload must carry for op.
// Updates only need the unique key fields.
func (s *RecordSchema) RequiredHeaders(op Operation) []string {
	var out []string
	if op == OpUpdate {
		for _, k := range s.UniqueKeys {
			out = append(out, k.Field)
		}
		return out
	}
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// ExportColumns returns the column order used by the exporter. The id
// column is left out so an export can be imported again as new records.
func (s *RecordSchema) ExportColumns() []string {
	var out []string
	for _, h := range s.Headers() {
		if h != s.IDField {
			out = append(out, h)
		}
	}
	return out
}

// Allows reports whether role appears in roles.
func Allows(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// RawRow is one tokenized line. Line is its 1-based position in the file.
type RawRow struct {
	Line  int
	Cells []string
}

// BoundRow pairs a data row with the schema's field names.
// Unknown columns are not carried.
type BoundRow struct {
	Row    int
	Values map[string]string
}

// ValidatedRecord is a typed, normalized row ready for persistence.
type ValidatedRecord struct {
	Row    int
	Values store.Record
}

// RowErrorKind classifies a rejected row.
type RowErrorKind string

const (
	RowMissing   RowErrorKind = "missing"
	RowInvalid   RowErrorKind = "invalid"
	RowDuplicate RowErrorKind = "duplicate"
	RowNotFound  RowErrorKind = "not_found"
	RowStorage   RowErrorKind = "storage"
)

// Skip reports whether the row was skipped rather than failed.
func (k RowErrorKind) Skip() bool {
	return k == RowDuplicate || k == RowNotFound
}

// RowError is a row-scoped rejection. Message is the full user-facing text,
// including the "Row n:" prefix.
type RowError struct {
	Row     int          `json:"row"`
	Kind    RowErrorKind `json:"kind"`
	Field   string       `json:"field,omitempty"`
	Message string       `json:"message"`
}

func (e RowError) String() string {
	return e.Message
}

func rowErrorf(row int, kind RowErrorKind, field, format string, args ...any) RowError {
	return RowError{
		Row:     row,
		Kind:    kind,
		Field:   field,
		Message: fmt.Sprintf("Row %d: ", row) + fmt.Sprintf(format, args...),
	}
}

// Result is the outcome of validating one row: exactly one of Record or Err
// is set.
type Result struct {
	Record *ValidatedRecord
	Err    *RowError
}

// Accept wraps a validated record.
func Accept(rec ValidatedRecord) Result {
	return Result{Record: &rec}
}

// Reject wraps a row error.
func Reject(err RowError) Result {
	return Result{Err: &err}
}

// OK reports whether the row was accepted.
func (r Result) OK() bool {
	return r.Err == nil && r.Record != nil
}

// ImportSummary aggregates the outcome of one upload.
type ImportSummary struct {
	ImportID  string         `json:"importId,omitempty"`
	Entity    EntityKind     `json:"entity"`
	Operation Operation      `json:"operation"`
	FileName  string         `json:"fileName,omitempty"`
	TotalRows int            `json:"total"`
	Imported  int            `json:"imported"`
	Skipped   int            `json:"skipped"`
	Failed    int            `json:"failed"`
	Errors    []RowError     `json:"rowErrors"`
	Records   []store.Record `json:"results"`
}

// Messages returns the row error texts in order.
func (s *ImportSummary) Messages() []string {
	out := make([]string, len(s.Errors))
	for i, e := range s.Errors {
		out[i] = e.Message
	}
	return out
}

func (s *ImportSummary) addError(e RowError) {
	s.Errors = append(s.Errors, e)
	if e.Kind.Skip() {
		s.Skipped++
	} else {
		s.Failed++
	}
}
