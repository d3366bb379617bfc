package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/weaveops/internal/core"
	"github.com/JonMunkholm/weaveops/internal/store"
	"github.com/go-chi/chi/v5"
)

// formOverhead is the multipart framing allowed on top of the file limit.
const formOverhead = 1 << 20

// multipartMemory is how much of a form is buffered before spilling to disk.
const multipartMemory = 8 << 20

type importRequest struct {
	Entity    string `validate:"required"`
	Operation string `validate:"omitempty,oneof=import update"`
}

// importResponse is the JSON body of POST /api/import/{entity}.
type importResponse struct {
	Message   string          `json:"message"`
	ImportID  string          `json:"importId,omitempty"`
	Entity    core.EntityKind `json:"entity"`
	Operation core.Operation  `json:"operation"`
	Imported  int             `json:"imported"`
	Total     int             `json:"total"`
	Skipped   int             `json:"skipped"`
	Failed    int             `json:"failed"`
	Errors    []string        `json:"errors"`
	RowErrors []core.RowError `json:"rowErrors"`
	Results   []store.Record  `json:"results"`
}

func newImportResponse(s *core.ImportSummary) importResponse {
	return importResponse{
		Message:   summaryMessage(s),
		ImportID:  s.ImportID,
		Entity:    s.Entity,
		Operation: s.Operation,
		Imported:  s.Imported,
		Total:     s.TotalRows,
		Skipped:   s.Skipped,
		Failed:    s.Failed,
		Errors:    s.Messages(),
		RowErrors: s.Errors,
		Results:   s.Records,
	}
}

func summaryMessage(s *core.ImportSummary) string {
	verb := "Imported"
	if s.Operation == core.OpUpdate {
		verb = "Updated"
	}
	switch {
	case len(s.Errors) == 0:
		return fmt.Sprintf("%s %d of %d rows", verb, s.Imported, s.TotalRows)
	case s.Imported == 0:
		return fmt.Sprintf("No rows were %s: %d skipped, %d failed", strings.ToLower(verb), s.Skipped, s.Failed)
	default:
		return fmt.Sprintf("%s %d of %d rows with %d skipped and %d failed", verb, s.Imported, s.TotalRows, s.Skipped, s.Failed)
	}
}

// handleImport runs one CSV upload through the import pipeline.
//
// Responds 200 when every row went in, 207 when some rows were skipped or
// failed and 4xx when the upload was rejected before any row was read.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	req := importRequest{
		Entity:    chi.URLParam(r, "entity"),
		Operation: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("operation"))),
	}

	ctx := r.Context()
	if timeout := s.cfg.Import.Timeout; timeout > 0 {
		// The server-wide read and write timeouts are shorter than an import.
		deadline := s.now().Add(timeout + 10*time.Second)
		rc := http.NewResponseController(w)
		_ = rc.SetReadDeadline(deadline)
		_ = rc.SetWriteDeadline(deadline)

		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	kind, err := core.ParseEntityKind(req.Entity)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	actor, _ := core.ActorFromContext(r.Context())
	if schema, ok := core.Get(kind); ok && !core.Allows(schema.ImportRoles, actor.Role) {
		s.respondError(w, r, core.ErrForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize+formOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.respondError(w, r, core.ErrFileTooLarge)
			return
		}
		s.respondError(w, r, errInvalidForm)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	if op := r.FormValue("operation"); op != "" {
		req.Operation = strings.ToLower(strings.TrimSpace(op))
	}
	if err := validate.Struct(req); err != nil {
		s.respondError(w, r, invalidRequest(err))
		return
	}
	op, err := core.ParseOperation(req.Operation)
	if err != nil {
		s.respondError(w, r, invalidRequest(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	summary, err := s.service.Import(ctx, core.ImportRequest{
		Actor:     actor,
		Entity:    kind,
		FileName:  header.Filename,
		Body:      file,
		Operation: op,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if len(summary.Errors) > 0 {
		status = http.StatusMultiStatus
	}
	resp := newImportResponse(summary)

	if isHTMX(r) {
		renderComponent(w, r, status, importAlert(resp))
		return
	}
	writeJSONStatus(w, r, status, resp)
}
