// Package store is the persistence collaborator of the import pipeline.
//
// The contract is deliberately small: select, insert, update and delete
// against a named table, filtered by a [Filter]. Every filter is scoped to
// a tenant and both implementations refuse to run without one.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// TenantColumn is the column every tenant-scoped table carries.
const TenantColumn = "tenant_id"

// IDColumn is the record id. It is unique per tenant, not globally.
const IDColumn = "id"

var (
	// ErrNoTenant is returned when a filter or record is not tenant-scoped.
	ErrNoTenant = errors.New("store: tenant is required")

	// ErrBadIdentifier is returned for table or column names that are not
	// plain snake_case identifiers.
	ErrBadIdentifier = errors.New("store: invalid identifier")

	// ErrDuplicateKey is returned when an insert repeats a primary or
	// unique key. The whole Insert call fails.
	ErrDuplicateKey = errors.New("store: duplicate key")
)

// Record is a single row keyed by column name.
//
// Values are one of: nil, string, int64, bool, decimal.Decimal, time.Time.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the value of col formatted as text, or "" when absent.
func (r Record) String(col string) string {
	return FormatValue(r[col])
}

// Store is the persistence contract consumed by the import pipeline.
// Implementations must be safe for concurrent use.
type Store interface {
	// Select returns every record of table matching f.
	Select(ctx context.Context, table string, f Filter) ([]Record, error)

	// Insert persists recs as one unit and returns them as stored.
	// Either all records are stored or none are.
	Insert(ctx context.Context, table string, recs []Record) ([]Record, error)

	// Update applies patch to every record matching f and returns the
	// number of records changed.
	Update(ctx context.Context, table string, f Filter, patch Record) (int64, error)

	// Delete removes every record matching f and returns the count removed.
	Delete(ctx context.Context, table string, f Filter) (int64, error)
}

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// checkIdent validates a table or column name.
func checkIdent(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrBadIdentifier, name)
	}
	return nil
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteColumns quotes each column name in the slice.
func quoteColumns(cols []string) []string {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdentifier(col)
	}
	return quoted
}
