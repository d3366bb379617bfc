package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// InsertHook is consulted before every Memory.Insert. Returning an error
// fails the whole call. call counts Insert invocations per table from 1.
type InsertHook func(table string, call int, recs []Record) error

// Memory is an in-process Store used by tests and the CLI dry-run mode.
type Memory struct {
	mu      sync.RWMutex
	tables  map[string][]Record
	calls   map[string]int
	onWrite InsertHook
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tables: make(map[string][]Record),
		calls:  make(map[string]int),
	}
}

// FailInserts installs hook as the insert failure injector.
func (m *Memory) FailInserts(hook InsertHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onWrite = hook
}

// Seed appends records to table without consulting the insert hook.
func (m *Memory) Seed(table string, recs ...Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range recs {
		m.tables[table] = append(m.tables[table], rec.Clone())
	}
}

// Len returns the number of records stored in table across all tenants.
func (m *Memory) Len(table string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables[table])
}

// Select implements Store.
func (m *Memory) Select(_ context.Context, table string, f Filter) ([]Record, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	if err := f.validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Record
	for _, rec := range m.tables[table] {
		if matches(rec, f) {
			out = append(out, rec.Clone())
		}
	}

	if f.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			c := compare(out[i][f.OrderBy], out[j][f.OrderBy])
			if f.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	return out, nil
}

// Insert implements Store.
func (m *Memory) Insert(_ context.Context, table string, recs []Record) ([]Record, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	for _, rec := range recs {
		if rec.String(TenantColumn) == "" {
			return nil, ErrNoTenant
		}
		for col := range rec {
			if err := checkIdent(col); err != nil {
				return nil, err
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[table]++
	if m.onWrite != nil {
		if err := m.onWrite(table, m.calls[table], recs); err != nil {
			return nil, err
		}
	}
	if err := m.checkIDs(table, recs); err != nil {
		return nil, err
	}

	out := make([]Record, len(recs))
	for i, rec := range recs {
		stored := rec.Clone()
		m.tables[table] = append(m.tables[table], stored)
		out[i] = stored.Clone()
	}
	return out, nil
}

// checkIDs rejects records whose (tenant, id) is already stored or repeats
// within recs. Records without an id are not checked. Callers hold m.mu.
func (m *Memory) checkIDs(table string, recs []Record) error {
	seen := make(map[[2]string]bool)
	for _, rec := range m.tables[table] {
		if id := rec.String(IDColumn); id != "" {
			seen[[2]string{rec.String(TenantColumn), id}] = true
		}
	}
	for _, rec := range recs {
		id := rec.String(IDColumn)
		if id == "" {
			continue
		}
		k := [2]string{rec.String(TenantColumn), id}
		if seen[k] {
			return fmt.Errorf("%w: %s %s", ErrDuplicateKey, table, id)
		}
		seen[k] = true
	}
	return nil
}

// Update implements Store.
func (m *Memory) Update(_ context.Context, table string, f Filter, patch Record) (int64, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	if err := f.validate(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, rec := range m.tables[table] {
		if !matches(rec, f) {
			continue
		}
		for k, v := range patch {
			if k == TenantColumn {
				continue
			}
			rec[k] = v
		}
		n++
	}
	return n, nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, table string, f Filter) (int64, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	if err := f.validate(); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.tables[table][:0]
	var n int64
	for _, rec := range m.tables[table] {
		if matches(rec, f) {
			n++
			continue
		}
		kept = append(kept, rec)
	}
	m.tables[table] = kept
	return n, nil
}

func matches(rec Record, f Filter) bool {
	if rec.String(TenantColumn) != f.Tenant {
		return false
	}
	for _, c := range f.Conditions {
		if !matchCondition(rec, c) {
			return false
		}
	}
	if len(f.AnyOf) == 0 {
		return true
	}
	for _, c := range f.AnyOf {
		if matchCondition(rec, c) {
			return true
		}
	}
	return false
}

func matchCondition(rec Record, c Condition) bool {
	v, ok := rec[c.Column]
	got := FormatValue(v)
	want := FormatValue(c.Value)

	switch c.Op {
	case OpEquals:
		return ok && v != nil && equalValues(v, c.Value)
	case OpEqualFold:
		return ok && strings.EqualFold(got, want)
	case OpContains:
		return strings.Contains(strings.ToLower(got), strings.ToLower(want))
	case OpStartsWith:
		return strings.HasPrefix(strings.ToLower(got), strings.ToLower(want))
	case OpEndsWith:
		return strings.HasSuffix(strings.ToLower(got), strings.ToLower(want))
	case OpGreaterEq:
		return v != nil && compare(v, c.Value) >= 0
	case OpLessEq:
		return v != nil && compare(v, c.Value) <= 0
	case OpGreater:
		return v != nil && compare(v, c.Value) > 0
	case OpLess:
		return v != nil && compare(v, c.Value) < 0
	case OpIn:
		for _, s := range stringList(c.Value) {
			if got == s && v != nil {
				return true
			}
		}
		return false
	case OpInFold:
		for _, s := range stringList(c.Value) {
			if v != nil && strings.EqualFold(got, s) {
				return true
			}
		}
		return false
	case OpPresent:
		return got != ""
	case OpAbsent:
		return got == ""
	}
	return false
}

// equalValues compares strings exactly and everything else by value, so
// "001" and "1" differ as SKUs but decimal 1.50 equals "1.5".
func equalValues(a, b any) bool {
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return as == bs
	}
	return compare(a, b) == 0
}

// compare orders two values numerically when both parse as numbers and
// lexically otherwise.
func compare(a, b any) int {
	as, bs := FormatValue(a), FormatValue(b)
	da, errA := decimal.NewFromString(as)
	db, errB := decimal.NewFromString(bs)
	if errA == nil && errB == nil {
		return da.Cmp(db)
	}
	return strings.Compare(as, bs)
}
