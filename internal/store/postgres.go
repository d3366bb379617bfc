package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Postgres implements Store on top of pgx.
type Postgres struct {
	db DBTX
}

// NewPostgres returns a Store backed by db.
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// Select implements Store.
func (p *Postgres) Select(ctx context.Context, table string, f Filter) ([]Record, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	if err := f.validate(); err != nil {
		return nil, err
	}

	wb := NewWhereBuilder()
	wb.AddFilter(f)
	where, args := wb.Build()

	query := fmt.Sprintf("SELECT * FROM %s%s", quoteIdentifier(table), where)
	if f.OrderBy != "" {
		dir := "ASC"
		if f.Desc {
			dir = "DESC"
		}
		query += fmt.Sprintf(" ORDER BY %s %s", quoteIdentifier(f.OrderBy), dir)
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	return collect(rows)
}

// Insert implements Store. All records are written by one statement, so a
// failure leaves none of them behind.
func (p *Postgres) Insert(ctx context.Context, table string, recs []Record) ([]Record, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	if err := checkIdent(table); err != nil {
		return nil, err
	}

	cols := columnsOf(recs)
	for _, col := range cols {
		if err := checkIdent(col); err != nil {
			return nil, err
		}
	}
	for _, rec := range recs {
		if rec.String(TenantColumn) == "" {
			return nil, ErrNoTenant
		}
	}

	args := make([]any, 0, len(recs)*len(cols))
	tuples := make([]string, len(recs))
	argIdx := 1
	for i, rec := range recs {
		placeholders := make([]string, len(cols))
		for j, col := range cols {
			placeholders[j] = fmt.Sprintf("$%d", argIdx)
			args = append(args, toPgValue(rec[col]))
			argIdx++
		}
		tuples[i] = "(" + strings.Join(placeholders, ", ") + ")"
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s RETURNING *",
		quoteIdentifier(table),
		strings.Join(quoteColumns(cols), ", "),
		strings.Join(tuples, ", "),
	)

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, insertError(err))
	}
	out, err := collect(rows)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, insertError(err))
	}
	return out, nil
}

// insertError maps unique violations (SQLSTATE 23505) to ErrDuplicateKey.
func insertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w (%s)", ErrDuplicateKey, pgErr.ConstraintName)
	}
	return err
}

// Update implements Store.
func (p *Postgres) Update(ctx context.Context, table string, f Filter, patch Record) (int64, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	if err := f.validate(); err != nil {
		return 0, err
	}
	if len(patch) == 0 {
		return 0, nil
	}

	cols := make([]string, 0, len(patch))
	for col := range patch {
		if col == TenantColumn {
			continue
		}
		if err := checkIdent(col); err != nil {
			return 0, err
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	wb := NewWhereBuilder()
	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = %s", quoteIdentifier(col), wb.bind(toPgValue(patch[col])))
	}
	wb.AddFilter(f)
	where, args := wb.Build()

	query := fmt.Sprintf("UPDATE %s SET %s%s", quoteIdentifier(table), strings.Join(sets, ", "), where)
	tag, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// Delete implements Store.
func (p *Postgres) Delete(ctx context.Context, table string, f Filter) (int64, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	if err := f.validate(); err != nil {
		return 0, err
	}

	wb := NewWhereBuilder()
	wb.AddFilter(f)
	where, args := wb.Build()

	tag, err := p.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s%s", quoteIdentifier(table), where), args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// collect reads all rows into records, converting pgx wire types to the
// value set documented on Record.
func collect(rows pgx.Rows) ([]Record, error) {
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	out := make([]Record, len(maps))
	for i, m := range maps {
		rec := make(Record, len(m))
		for k, v := range m {
			rec[k] = fromPgValue(v)
		}
		out[i] = rec
	}
	return out, nil
}

func fromPgValue(v any) any {
	switch val := v.(type) {
	case pgtype.Numeric:
		if !val.Valid || val.NaN || val.Int == nil {
			return nil
		}
		return decimal.NewFromBigInt(val.Int, val.Exp)
	case [16]byte:
		return uuid.UUID(val).String()
	case int32:
		return int64(val)
	case int16:
		return int64(val)
	default:
		return val
	}
}

func toPgValue(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		var n pgtype.Numeric
		if err := n.Scan(val.String()); err != nil {
			return nil
		}
		return n
	default:
		return val
	}
}

// columnsOf returns the sorted union of all record keys.
func columnsOf(recs []Record) []string {
	seen := make(map[string]struct{})
	for _, rec := range recs {
		for k := range rec {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
