package core

// validator.go turns bound rows into validated records.
//
// Checks run in a fixed order and the first failure rejects the row:
//  1. required fields present and non-blank
//  2. unique keys against storage and against earlier rows of the file
//  3. per-field type and format rules (only for non-blank cells)
//
// A rejected row never produces a partial record. Rows that reach step 3
// have already claimed their unique keys.

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/JonMunkholm/weaveops/internal/store"
	"github.com/ttacon/libphonenumber"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	tax15Re = regexp.MustCompile(`^[0-9A-Z]{15}$`)
	tax10Re = regexp.MustCompile(`^[0-9A-Z]{10}$`)
)

// DefaultPhoneRegion is used when ValidatorOptions.PhoneRegion is empty.
const DefaultPhoneRegion = "IN"

// ValidatorOptions carries deployment-specific validation settings.
type ValidatorOptions struct {
	// Defaults overrides FieldSpec.Default by field name ("country": "India").
	Defaults map[string]string

	// PhoneRegion is the ISO region used to parse numbers without a
	// country prefix.
	PhoneRegion string
}

// keySet is a set of unique-key values, optionally case-folded.
type keySet struct {
	fold   bool
	values map[string]struct{}
}

func newKeySet(fold bool) *keySet {
	return &keySet{fold: fold, values: make(map[string]struct{})}
}

func (k *keySet) key(v string) string {
	if k.fold {
		return strings.ToLower(v)
	}
	return v
}

func (k *keySet) has(v string) bool {
	_, ok := k.values[k.key(v)]
	return ok
}

func (k *keySet) add(v string) {
	k.values[k.key(v)] = struct{}{}
}

// RowValidator validates the data rows of one upload.
// It is not safe for concurrent use: validated rows claim their keys.
type RowValidator struct {
	schema   *RecordSchema
	op       Operation
	opts     ValidatorOptions
	existing map[string]*keySet
	claimed  map[string]*keySet
}

// NewRowValidator builds a validator. existing holds, per unique key field,
// the values already persisted for the tenant.
func NewRowValidator(schema *RecordSchema, op Operation, opts ValidatorOptions, existing map[string][]string) *RowValidator {
	v := &RowValidator{
		schema:   schema,
		op:       op,
		opts:     opts,
		existing: make(map[string]*keySet),
		claimed:  make(map[string]*keySet),
	}
	for _, uk := range schema.UniqueKeys {
		ex := newKeySet(uk.Fold)
		for _, val := range existing[uk.Field] {
			ex.add(val)
		}
		v.existing[uk.Field] = ex
		v.claimed[uk.Field] = newKeySet(uk.Fold)
	}
	return v
}

// Validate checks a single bound row.
func (v *RowValidator) Validate(row BoundRow) Result {
	if res, ok := v.checkRequired(row); !ok {
		return res
	}
	if res, ok := v.checkUnique(row); !ok {
		return res
	}

	values := make(store.Record, len(row.Values))
	for _, spec := range v.schema.Fields {
		raw, present := row.Values[spec.Name]
		cell := normalizeCell(raw, spec)

		if cell == "" {
			if v.op == OpUpdate {
				continue
			}
			def := v.defaultFor(spec)
			if def == "" {
				if present {
					values[spec.Name] = nil
				}
				continue
			}
			cell = normalizeCell(def, spec)
		}

		typed, rowErr := v.convert(row.Row, spec, cell)
		if rowErr != nil {
			return Reject(*rowErr)
		}
		values[spec.Name] = typed
	}

	return Accept(ValidatedRecord{Row: row.Row, Values: values})
}

// checkUnique tests the row's unique keys against storage and earlier rows.
// On import a row that gets this far claims its keys, so a later row with
// the same key is a duplicate even if this one fails a format rule.
func (v *RowValidator) checkUnique(row BoundRow) (Result, bool) {
	keys := make(map[string]string, len(v.schema.UniqueKeys))
	for _, uk := range v.schema.UniqueKeys {
		spec, _ := v.schema.Field(uk.Field)
		key := normalizeCell(row.Values[uk.Field], spec)
		if key == "" && v.op != OpUpdate {
			key = normalizeCell(v.defaultFor(spec), spec)
		}
		if key == "" {
			continue
		}
		switch v.op {
		case OpUpdate:
			if !v.existing[uk.Field].has(key) {
				return Reject(rowErrorf(row.Row, RowNotFound, uk.Field, "%s \"%s\" not found - skipping", uk.Label, key)), false
			}
		default:
			if v.existing[uk.Field].has(key) || v.claimed[uk.Field].has(key) {
				return Reject(rowErrorf(row.Row, RowDuplicate, uk.Field, "%s \"%s\" already exists - skipping", uk.Label, key)), false
			}
		}
		keys[uk.Field] = key
	}

	if v.op == OpImport {
		for field, key := range keys {
			v.claimed[field].add(key)
		}
	}
	return Result{}, true
}

func (v *RowValidator) checkRequired(row BoundRow) (Result, bool) {
	required := v.schema.RequiredHeaders(v.op)
	for _, name := range required {
		spec, _ := v.schema.Field(name)
		if normalizeCell(row.Values[name], spec) == "" {
			return Reject(rowErrorf(row.Row, RowMissing, name, "missing required field %s", name)), false
		}
	}
	return Result{}, true
}

func (v *RowValidator) defaultFor(spec FieldSpec) string {
	if d, ok := v.opts.Defaults[spec.Name]; ok && strings.TrimSpace(d) != "" {
		return d
	}
	return spec.Default
}

// normalizeCell trims a cell, strips spreadsheet artifacts and applies the
// field's normalizer. Tax identifiers are whitespace-stripped and upper-cased.
func normalizeCell(raw string, spec FieldSpec) string {
	s := CleanCell(raw)
	if s == "" {
		return ""
	}
	if spec.Format == FormatTax15 || spec.Format == FormatTax10 {
		s = NormalizeTaxID(s)
	}
	if spec.Normalizer != nil {
		s = spec.Normalizer(s)
	}
	return s
}

// convert type-checks a non-blank, normalized cell.
func (v *RowValidator) convert(row int, spec FieldSpec, cell string) (any, *RowError) {
	invalid := func(format string, args ...any) (any, *RowError) {
		e := rowErrorf(row, RowInvalid, spec.Name, format, args...)
		return nil, &e
	}
	label := spec.Label
	if label == "" {
		label = spec.Name
	}

	switch spec.Kind {
	case FieldNumber:
		if spec.Integer {
			n, err := ParseInteger(cell)
			if err != nil {
				return invalid("Invalid %s format: %s", label, cell)
			}
			if spec.NonNegative && n < 0 {
				return invalid("%s must not be negative: %s", label, cell)
			}
			return n, nil
		}
		d, err := ParseDecimal(cell)
		if err != nil {
			return invalid("Invalid %s format: %s", label, cell)
		}
		if spec.NonNegative && d.IsNegative() {
			return invalid("%s must not be negative: %s", label, cell)
		}
		return d, nil

	case FieldDate:
		t, ok := ParseDate(cell)
		if !ok {
			return invalid("Invalid %s format: %s", label, cell)
		}
		return t, nil

	case FieldEnum:
		for _, allowed := range spec.Enum {
			if allowed == cell {
				return cell, nil
			}
		}
		return invalid("Invalid %s: %s (allowed: %s)", label, cell, strings.Join(spec.Enum, ", "))
	}

	switch spec.Format {
	case FormatEmail:
		if !emailRe.MatchString(cell) {
			return invalid("Invalid %s format: %s", label, cell)
		}
	case FormatTax15:
		if !tax15Re.MatchString(cell) {
			return invalid("Invalid %s format: %s", label, cell)
		}
	case FormatTax10:
		if !tax10Re.MatchString(cell) {
			return invalid("Invalid %s format: %s", label, cell)
		}
	case FormatPhone:
		e164, err := NormalizePhone(cell, v.opts.PhoneRegion)
		if err != nil {
			return invalid("Invalid %s format: %s", label, cell)
		}
		return e164, nil
	}
	return cell, nil
}

// NormalizePhone validates a phone number and formats it as E.164.
func NormalizePhone(number, region string) (string, error) {
	if region == "" {
		region = DefaultPhoneRegion
	}
	num, err := libphonenumber.Parse(number, region)
	if err != nil {
		return "", err
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number: %s", number)
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}

// LoadExistingKeys fetches, for every unique key of schema, the values among
// rows that are already persisted for tenant. One query is issued per key.
func LoadExistingKeys(ctx context.Context, st store.Store, tenant string, schema *RecordSchema, rows []BoundRow) (map[string][]string, error) {
	out := make(map[string][]string, len(schema.UniqueKeys))
	for _, uk := range schema.UniqueKeys {
		spec, _ := schema.Field(uk.Field)

		seen := make(map[string]struct{})
		var candidates []string
		for _, row := range rows {
			v := normalizeCell(row.Values[uk.Field], spec)
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			candidates = append(candidates, v)
		}
		if len(candidates) == 0 {
			continue
		}

		op := store.OpIn
		if uk.Fold {
			op = store.OpInFold
		}
		recs, err := st.Select(ctx, schema.Table, store.ForTenant(tenant).Where(uk.Field, op, candidates))
		if err != nil {
			return nil, fmt.Errorf("check existing %s: %w", uk.Field, err)
		}
		for _, rec := range recs {
			out[uk.Field] = append(out[uk.Field], rec.String(uk.Field))
		}
	}
	return out, nil
}
