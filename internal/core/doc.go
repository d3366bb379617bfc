// Package core provides the bulk-ingest pipeline for tenant records.
//
// This package contains all import and export logic independent of any
// transport layer. It is used by the HTTP handlers, the weaveops CLI and
// tests without modification. Storage is reached only through the
// [store.Store] passed to [NewService].
//
// # Pipeline
//
// An upload moves through four stages:
//
//  1. [Tokenize] splits the file into [RawRow] values, one per line. Blank
//     lines are skipped but still count toward row numbers, so row 1 is
//     always the header.
//  2. [BindHeaders] matches the header row against a [RecordSchema] and
//     [Binding.Bind] turns each data row into a [BoundRow].
//  3. [RowValidator] checks required fields, then formats, then unique keys,
//     and returns a [Result] per row.
//  4. [BatchWriter] persists accepted records in chunks of
//     [DefaultBatchSize]. A failed chunk marks each of its rows failed and
//     the next chunk is still attempted.
//
// [Service.Import] runs the whole pipeline and returns an [ImportSummary].
// Failures that concern the file as a whole are returned as a
// [StructuralError] before any row is processed.
//
// # Schemas
//
// Each [EntityKind] has exactly one schema, registered at init time with
// [Register]. The production schemas live in the schemas subpackage:
//
//	core.Register(&core.RecordSchema{
//	    Kind:       core.KindProduct,
//	    Table:      "products",
//	    IDField:    "id",
//	    IDPrefix:   "PRD",
//	    Fields:     []core.FieldSpec{{Name: "sku", Required: true}},
//	    UniqueKeys: []core.UniqueKey{{Field: "sku", Label: "SKU"}},
//	})
//
// # Operations
//
// [OpImport] creates records and skips rows whose unique key already exists.
// [OpUpdate] patches existing records matched by unique key and skips rows
// whose key is unknown. Every import is recorded in [RunsTable] and can be
// undone with [Service.Rollback].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB007: storage errors
//   - VAL001-VAL009: validation errors
//   - FILE001-FILE006: file errors
//   - IMP001-IMP005: import errors
//   - AUTH001-AUTH003: authentication and authorization
package core
