package core

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/weaveops/internal/store"
)

// DefaultBatchSize is the number of records written per persistence call.
const DefaultBatchSize = 50

// ImportIDColumn links a persisted record to the import run that created it.
const ImportIDColumn = "import_id"

// BatchWriter persists validated records in fixed-size chunks.
//
// Chunks are independent: a failed chunk reports its storage error against
// every record it carried and the writer moves on. Earlier chunks are never
// rolled back.
type BatchWriter struct {
	Store     store.Store
	BatchSize int
	NewID     IDFunc
	Logger    *slog.Logger
}

// WriteResult is the outcome of a BatchWriter call.
type WriteResult struct {
	Written []store.Record
	Errors  []RowError
}

// Insert writes recs into schema's table for tenant. importID, when set, is
// stamped on every record.
func (w *BatchWriter) Insert(ctx context.Context, schema *RecordSchema, tenant, importID string, recs []ValidatedRecord) WriteResult {
	var res WriteResult
	size := w.batchSize()

	for start, chunk := 0, 0; start < len(recs); start, chunk = start+size, chunk+1 {
		end := min(start+size, len(recs))
		batch := recs[start:end]

		rows := make([]store.Record, len(batch))
		for i, rec := range batch {
			rows[i] = w.prepare(schema, tenant, importID, rec)
		}

		written, err := w.Store.Insert(ctx, schema.Table, rows)
		if err != nil {
			w.logger().Warn("import chunk failed",
				"entity", schema.Kind,
				"chunk", chunk,
				"rows", len(batch),
				"error", err,
			)
			for _, rec := range batch {
				res.Errors = append(res.Errors, rowErrorf(rec.Row, RowStorage, "", "%s", err.Error()))
			}
			continue
		}
		res.Written = append(res.Written, written...)
	}
	return res
}

// Update patches existing records matched by the schema's first unique key.
// Each record is applied on its own; a failure affects that row only.
func (w *BatchWriter) Update(ctx context.Context, schema *RecordSchema, tenant string, recs []ValidatedRecord) WriteResult {
	var res WriteResult
	if len(schema.UniqueKeys) == 0 {
		for _, rec := range recs {
			res.Errors = append(res.Errors, rowErrorf(rec.Row, RowStorage, "", "%s does not support updates", schema.Label))
		}
		return res
	}
	uk := schema.UniqueKeys[0]

	for _, rec := range recs {
		key := store.FormatValue(rec.Values[uk.Field])
		op := store.OpEquals
		if uk.Fold {
			op = store.OpEqualFold
		}

		patch := rec.Values.Clone()
		delete(patch, uk.Field)
		if len(patch) == 0 {
			res.Written = append(res.Written, rec.Values.Clone())
			continue
		}

		n, err := w.Store.Update(ctx, schema.Table, store.ForTenant(tenant).Where(uk.Field, op, key), patch)
		switch {
		case err != nil:
			res.Errors = append(res.Errors, rowErrorf(rec.Row, RowStorage, "", "%s", err.Error()))
		case n == 0:
			res.Errors = append(res.Errors, rowErrorf(rec.Row, RowNotFound, uk.Field, "%s \"%s\" not found - skipping", uk.Label, key))
		default:
			res.Written = append(res.Written, rec.Values.Clone())
		}
	}
	return res
}

func (w *BatchWriter) prepare(schema *RecordSchema, tenant, importID string, rec ValidatedRecord) store.Record {
	row := rec.Values.Clone()
	row[store.TenantColumn] = tenant
	if importID != "" {
		row[ImportIDColumn] = importID
	}
	if store.FormatValue(row[schema.IDField]) == "" {
		row[schema.IDField] = w.newID()(schema.IDPrefix)
	}
	return row
}

func (w *BatchWriter) batchSize() int {
	if w.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return w.BatchSize
}

func (w *BatchWriter) newID() IDFunc {
	if w.NewID == nil {
		return NewRecordID
	}
	return w.NewID
}

func (w *BatchWriter) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}
