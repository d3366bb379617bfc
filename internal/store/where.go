package store

import (
	"fmt"
	"strings"
)

// WhereBuilder accumulates SQL conditions with positional arguments.
type WhereBuilder struct {
	conditions []string
	args       []any
	argIndex   int
}

// NewWhereBuilder creates a builder whose first placeholder is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// NextArg returns the index the next placeholder will use.
func (wb *WhereBuilder) NextArg() int {
	return wb.argIndex
}

// Add appends an equality condition. Empty string values are skipped.
func (wb *WhereBuilder) Add(column string, value any) {
	if s, ok := value.(string); ok && s == "" {
		return
	}
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = $%d", quoteIdentifier(column), wb.argIndex))
	wb.args = append(wb.args, value)
	wb.argIndex++
}

// AddCondition appends a single predicate.
func (wb *WhereBuilder) AddCondition(c Condition) {
	if sql := wb.render(c); sql != "" {
		wb.conditions = append(wb.conditions, sql)
	}
}

// AddAny appends one OR group built from conds.
func (wb *WhereBuilder) AddAny(conds []Condition) {
	var parts []string
	for _, c := range conds {
		if sql := wb.render(c); sql != "" {
			parts = append(parts, sql)
		}
	}
	if len(parts) > 0 {
		wb.conditions = append(wb.conditions, "("+strings.Join(parts, " OR ")+")")
	}
}

// AddFilter appends the tenant scope and all conditions of f.
func (wb *WhereBuilder) AddFilter(f Filter) {
	wb.Add(TenantColumn, f.Tenant)
	for _, c := range f.Conditions {
		wb.AddCondition(c)
	}
	wb.AddAny(f.AnyOf)
}

// Build returns the WHERE clause (with a leading space) and its arguments.
// Returns "" and nil when no conditions were added.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

func (wb *WhereBuilder) bind(v any) string {
	ph := fmt.Sprintf("$%d", wb.argIndex)
	wb.args = append(wb.args, v)
	wb.argIndex++
	return ph
}

// render generates SQL for a single condition.
func (wb *WhereBuilder) render(c Condition) string {
	col := quoteIdentifier(c.Column)
	text := col + "::text"

	switch c.Op {
	case OpEquals:
		return fmt.Sprintf("%s = %s", col, wb.bind(c.Value))
	case OpEqualFold:
		return fmt.Sprintf("lower(%s) = lower(%s)", text, wb.bind(FormatValue(c.Value)))
	case OpContains:
		return fmt.Sprintf("%s ILIKE %s", text, wb.bind("%"+escapeLike(FormatValue(c.Value))+"%"))
	case OpStartsWith:
		return fmt.Sprintf("%s ILIKE %s", text, wb.bind(escapeLike(FormatValue(c.Value))+"%"))
	case OpEndsWith:
		return fmt.Sprintf("%s ILIKE %s", text, wb.bind("%"+escapeLike(FormatValue(c.Value))))
	case OpGreaterEq:
		return fmt.Sprintf("%s >= %s", col, wb.bind(c.Value))
	case OpLessEq:
		return fmt.Sprintf("%s <= %s", col, wb.bind(c.Value))
	case OpGreater:
		return fmt.Sprintf("%s > %s", col, wb.bind(c.Value))
	case OpLess:
		return fmt.Sprintf("%s < %s", col, wb.bind(c.Value))
	case OpIn:
		return fmt.Sprintf("%s = ANY(%s)", text, wb.bind(stringList(c.Value)))
	case OpInFold:
		values := stringList(c.Value)
		lowered := make([]string, len(values))
		for i, v := range values {
			lowered[i] = strings.ToLower(v)
		}
		return fmt.Sprintf("lower(%s) = ANY(%s)", text, wb.bind(lowered))
	case OpPresent:
		return fmt.Sprintf("(%s IS NOT NULL AND %s <> '')", col, text)
	case OpAbsent:
		return fmt.Sprintf("(%s IS NULL OR %s = '')", col, text)
	default:
		return ""
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
