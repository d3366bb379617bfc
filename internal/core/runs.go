package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/weaveops/internal/store"
)

// RunsTable stores one row per import that reached the batch writer.
const RunsTable = "import_runs"

// Import run statuses.
const (
	RunCompleted  = "completed"
	RunPartial    = "partial"
	RunFailed     = "failed"
	RunRolledBack = "rolled_back"
)

var (
	ErrRunNotFound       = errors.New("import not found")
	ErrAlreadyRolledBack = errors.New("import already rolled back")
)

// ImportRun is the bookkeeping row of one import.
type ImportRun struct {
	ID        string     `json:"id"`
	Entity    EntityKind `json:"entity"`
	FileName  string     `json:"fileName"`
	Operation Operation  `json:"operation"`
	Total     int64      `json:"total"`
	Imported  int64      `json:"imported"`
	Skipped   int64      `json:"skipped"`
	Failed    int64      `json:"failed"`
	Status    string     `json:"status"`
	CreatedBy string     `json:"createdBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// RollbackResult reports what a rollback removed.
type RollbackResult struct {
	ImportID    string     `json:"importId"`
	Entity      EntityKind `json:"entity"`
	RowsDeleted int64      `json:"rowsDeleted"`
}

func runStatus(s *ImportSummary) string {
	switch {
	case len(s.Errors) == 0:
		return RunCompleted
	case s.Imported > 0:
		return RunPartial
	default:
		return RunFailed
	}
}

func (s *Service) recordRun(ctx context.Context, actor Actor, summary *ImportSummary, at time.Time) error {
	rec := store.Record{
		"id":               summary.ImportID,
		store.TenantColumn: actor.Tenant,
		"entity":           string(summary.Entity),
		"file_name":        summary.FileName,
		"operation":        string(summary.Operation),
		"total":            int64(summary.TotalRows),
		"imported":         int64(summary.Imported),
		"skipped":          int64(summary.Skipped),
		"failed":           int64(summary.Failed),
		"status":           runStatus(summary),
		"created_by":       actor.UserID,
		"created_at":       at.UTC(),
	}
	_, err := s.store.Insert(ctx, RunsTable, []store.Record{rec})
	return err
}

// ListRuns returns the tenant's import runs, newest first.
func (s *Service) ListRuns(ctx context.Context, actor Actor) ([]ImportRun, error) {
	recs, err := s.store.Select(ctx, RunsTable, store.ForTenant(actor.Tenant).Order("created_at", true))
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	runs := make([]ImportRun, len(recs))
	for i, rec := range recs {
		runs[i] = runFromRecord(rec)
	}
	return runs, nil
}

// Rollback deletes every record created by an import run and marks the
// run rolled back. The caller needs import rights on the run's entity.
func (s *Service) Rollback(ctx context.Context, actor Actor, importID string) (*RollbackResult, error) {
	byID := store.ForTenant(actor.Tenant).Eq("id", importID)
	recs, err := s.store.Select(ctx, RunsTable, byID)
	if err != nil {
		return nil, fmt.Errorf("get import: %w", err)
	}
	if len(recs) == 0 {
		return nil, ErrRunNotFound
	}
	run := runFromRecord(recs[0])

	if run.Status == RunRolledBack {
		return nil, ErrAlreadyRolledBack
	}
	schema, ok := Get(run.Entity)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, run.Entity)
	}
	if !Allows(schema.ImportRoles, actor.Role) {
		return nil, ErrForbidden
	}

	deleted, err := s.store.Delete(ctx, schema.Table, store.ForTenant(actor.Tenant).Eq(ImportIDColumn, importID))
	if err != nil {
		return nil, fmt.Errorf("delete by import id: %w", err)
	}

	if _, err := s.store.Update(ctx, RunsTable, byID, store.Record{"status": RunRolledBack}); err != nil {
		// Rows are already gone; the run just keeps its old status.
		s.opts.Logger.Warn("mark import rolled back", "import_id", importID, "error", err)
	}

	s.opts.Logger.Info("import rolled back",
		"import_id", importID,
		"entity", schema.Kind,
		"tenant", actor.Tenant,
		"rows_deleted", deleted,
	)
	return &RollbackResult{ImportID: importID, Entity: schema.Kind, RowsDeleted: deleted}, nil
}

func runFromRecord(rec store.Record) ImportRun {
	run := ImportRun{
		ID:        rec.String("id"),
		Entity:    EntityKind(rec.String("entity")),
		FileName:  rec.String("file_name"),
		Operation: Operation(rec.String("operation")),
		Total:     asInt(rec["total"]),
		Imported:  asInt(rec["imported"]),
		Skipped:   asInt(rec["skipped"]),
		Failed:    asInt(rec["failed"]),
		Status:    rec.String("status"),
		CreatedBy: rec.String("created_by"),
	}
	if t, ok := rec["created_at"].(time.Time); ok {
		run.CreatedAt = t
	}
	return run
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	}
	i, _ := ParseInteger(store.FormatValue(v))
	return i
}
