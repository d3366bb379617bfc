package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FilterOperator represents a comparison operator for column filters.
type FilterOperator string

const (
	OpEquals     FilterOperator = "eq"
	OpEqualFold  FilterOperator = "ieq"
	OpContains   FilterOperator = "contains"
	OpStartsWith FilterOperator = "starts"
	OpEndsWith   FilterOperator = "ends"
	OpGreaterEq  FilterOperator = "gte"
	OpLessEq     FilterOperator = "lte"
	OpGreater    FilterOperator = "gt"
	OpLess       FilterOperator = "lt"
	OpIn         FilterOperator = "in"
	OpInFold     FilterOperator = "iin"
	OpPresent    FilterOperator = "present"
	OpAbsent     FilterOperator = "absent"
)

// ValidOperator reports whether op is a known operator.
func ValidOperator(op FilterOperator) bool {
	switch op {
	case OpEquals, OpEqualFold, OpContains, OpStartsWith, OpEndsWith,
		OpGreaterEq, OpLessEq, OpGreater, OpLess, OpIn, OpInFold,
		OpPresent, OpAbsent:
		return true
	}
	return false
}

// Condition is a single predicate on a column.
// Value is a string for scalar operators, []string for OpIn and OpInFold,
// and ignored for OpPresent and OpAbsent.
type Condition struct {
	Column string
	Op     FilterOperator
	Value  any
}

// Filter selects records of a single tenant.
//
// All conditions are combined with AND. AnyOf conditions, when present,
// form one additional OR group (used for free-text search).
type Filter struct {
	Tenant     string
	Conditions []Condition
	AnyOf      []Condition
	OrderBy    string
	Desc       bool
}

// ForTenant starts a filter scoped to tenant.
func ForTenant(tenant string) Filter {
	return Filter{Tenant: tenant}
}

// Where returns a copy of f with an extra AND condition.
func (f Filter) Where(column string, op FilterOperator, value any) Filter {
	f.Conditions = append(append([]Condition(nil), f.Conditions...), Condition{Column: column, Op: op, Value: value})
	return f
}

// Eq is shorthand for Where(column, OpEquals, value).
func (f Filter) Eq(column string, value any) Filter {
	return f.Where(column, OpEquals, value)
}

// Search returns a copy of f matching term as a case-insensitive substring
// of any of columns.
func (f Filter) Search(term string, columns ...string) Filter {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return f
	}
	group := make([]Condition, len(columns))
	for i, col := range columns {
		group[i] = Condition{Column: col, Op: OpContains, Value: term}
	}
	f.AnyOf = group
	return f
}

// Order returns a copy of f sorted by column.
func (f Filter) Order(column string, desc bool) Filter {
	f.OrderBy = column
	f.Desc = desc
	return f
}

func (f Filter) validate() error {
	if strings.TrimSpace(f.Tenant) == "" {
		return ErrNoTenant
	}
	for _, c := range append(append([]Condition(nil), f.Conditions...), f.AnyOf...) {
		if err := checkIdent(c.Column); err != nil {
			return err
		}
		if !ValidOperator(c.Op) {
			return fmt.Errorf("store: unknown operator %q", c.Op)
		}
	}
	if f.OrderBy != "" {
		return checkIdent(f.OrderBy)
	}
	return nil
}

// FormatValue renders a stored value as text.
// Dates render as YYYY-MM-DD and timestamps as RFC 3339.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case decimal.Decimal:
		return val.String()
	case *decimal.Decimal:
		if val == nil {
			return ""
		}
		return val.String()
	case time.Time:
		if val.IsZero() {
			return ""
		}
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.UTC().Format(time.RFC3339)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func stringList(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case string:
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	default:
		return []string{FormatValue(v)}
	}
}
