package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/weaveops/internal/lock"
	"github.com/JonMunkholm/weaveops/internal/store"
	"github.com/google/uuid"
)

// Options configures a Service.
type Options struct {
	BatchSize   int
	Delimiter   rune
	MaxFileSize int64
	Validator   ValidatorOptions
	NewID       IDFunc
	Now         func() time.Time
	Logger      *slog.Logger
}

// Service runs imports, exports and import-run bookkeeping against a
// Store passed in by the caller.
type Service struct {
	store    store.Store
	locker   lock.Locker
	limiter  *ImportLimiter
	opts     Options
	writer   *BatchWriter
	exporter *Exporter
}

// NewService wires a Service. A nil locker falls back to an in-process
// lock and a nil limiter to the default concurrency bound.
func NewService(st store.Store, locker lock.Locker, limiter *ImportLimiter, opts Options) *Service {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if limiter == nil {
		limiter = NewImportLimiter(0, 0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = DefaultDelimiter
	}

	return &Service{
		store:   st,
		locker:  locker,
		limiter: limiter,
		opts:    opts,
		writer: &BatchWriter{
			Store:     st,
			BatchSize: opts.BatchSize,
			NewID:     opts.NewID,
			Logger:    opts.Logger,
		},
		exporter: &Exporter{Store: st, Delimiter: opts.Delimiter},
	}
}

// Limiter exposes the import limiter for shutdown draining.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// ImportRequest is one upload.
type ImportRequest struct {
	Actor     Actor
	Entity    EntityKind
	FileName  string
	Body      io.Reader
	Operation Operation
}

// Import runs the tokenizer, binder, validator and writer over one upload.
//
// Structural problems (wrong extension, no data rows, header mismatch) and
// authorization failures are returned as errors before any row is
// processed. Row and storage failures are reported in the summary.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*ImportSummary, error) {
	started := s.opts.Now()

	schema, ok := Get(req.Entity)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, req.Entity)
	}
	if !Allows(schema.ImportRoles, req.Actor.Role) {
		return nil, ErrForbidden
	}
	if req.Actor.Tenant == "" {
		return nil, store.ErrNoTenant
	}
	if err := CheckFileName(req.FileName); err != nil {
		return nil, err
	}
	op := req.Operation
	if op == "" {
		op = OpImport
	}

	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	lease, err := s.locker.Obtain(ctx, lock.ImportKey(req.Actor.Tenant, string(schema.Kind)))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			s.opts.Logger.Warn("release import lock", "entity", schema.Kind, "error", err)
		}
	}()

	rows, err := Tokenize(PrepareUpload(req.Body, s.opts.MaxFileSize), s.opts.Delimiter)
	if err != nil {
		return nil, err
	}
	header, data, err := splitHeader(rows)
	if err != nil {
		return nil, err
	}
	binding, err := BindHeaders(header, schema, op)
	if err != nil {
		return nil, err
	}

	bound := make([]BoundRow, len(data))
	for i, row := range data {
		bound[i] = binding.Bind(row)
	}

	existing, err := LoadExistingKeys(ctx, s.store, req.Actor.Tenant, schema, bound)
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{
		Entity:    schema.Kind,
		Operation: op,
		FileName:  req.FileName,
		TotalRows: len(data),
		Errors:    []RowError{},
		Records:   []store.Record{},
	}

	validator := NewRowValidator(schema, op, s.opts.Validator, existing)
	accepted := make([]ValidatedRecord, 0, len(bound))
	for _, row := range bound {
		res := validator.Validate(row)
		if !res.OK() {
			summary.addError(*res.Err)
			continue
		}
		accepted = append(accepted, *res.Record)
	}

	var written WriteResult
	switch op {
	case OpUpdate:
		written = s.writer.Update(ctx, schema, req.Actor.Tenant, accepted)
	default:
		summary.ImportID = uuid.NewString()
		written = s.writer.Insert(ctx, schema, req.Actor.Tenant, summary.ImportID, accepted)
	}
	for _, e := range written.Errors {
		summary.addError(e)
	}
	summary.Imported = len(written.Written)
	if written.Written != nil {
		summary.Records = written.Written
	}

	if summary.ImportID != "" {
		if err := s.recordRun(ctx, req.Actor, summary, started); err != nil {
			s.opts.Logger.Warn("record import run", "entity", schema.Kind, "error", err)
		}
	}

	s.opts.Logger.Info("import complete",
		"entity", schema.Kind,
		"tenant", req.Actor.Tenant,
		"operation", op,
		"total", summary.TotalRows,
		"imported", summary.Imported,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"duration", s.opts.Now().Sub(started),
	)
	return summary, nil
}

// Export writes the tenant's records of entity matching params to w.
func (s *Service) Export(ctx context.Context, w io.Writer, actor Actor, entity EntityKind, params ExportParams, format ExportFormat) (int, error) {
	schema, ok := Get(entity)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	if !Allows(schema.ExportRoles, actor.Role) {
		return 0, ErrForbidden
	}
	f, err := params.Filter(schema, actor.Tenant)
	if err != nil {
		return 0, err
	}
	return s.exporter.Export(ctx, w, schema, f, format)
}

// Template writes a header-only CSV for entity.
func (s *Service) Template(w io.Writer, entity EntityKind) error {
	schema, ok := Get(entity)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	return WriteCSV(w, s.opts.Delimiter, schema.Headers(), nil)
}

// Ping checks that the store answers a trivial query.
func (s *Service) Ping(ctx context.Context) error {
	if _, err := s.store.Select(ctx, RunsTable, store.ForTenant("_health").Eq("id", "_")); err != nil {
		return fmt.Errorf("store unavailable: %w", err)
	}
	return nil
}
