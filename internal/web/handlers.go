package web

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/weaveops/internal/core"
	"github.com/go-chi/chi/v5"
)

// fieldInfo describes one column of an entity for clients building forms
// or checking files before upload.
type fieldInfo struct {
	Name     string   `json:"name"`
	Label    string   `json:"label,omitempty"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Default  string   `json:"default,omitempty"`
	Enum     []string `json:"enum,omitempty"`
}

type schemaInfo struct {
	Entity          core.EntityKind `json:"entity"`
	Label           string          `json:"label"`
	Headers         []string        `json:"headers"`
	RequiredHeaders []string        `json:"requiredHeaders"`
	UpdateHeaders   []string        `json:"updateHeaders"`
	StrictHeaders   bool            `json:"strictHeaders"`
	Fields          []fieldInfo     `json:"fields"`
	CanImport       bool            `json:"canImport"`
	CanExport       bool            `json:"canExport"`
}

func describeSchema(schema *core.RecordSchema, role core.Role) schemaInfo {
	fields := make([]fieldInfo, len(schema.Fields))
	for i, f := range schema.Fields {
		fields[i] = fieldInfo{
			Name:     f.Name,
			Label:    f.Label,
			Type:     f.TypeName(),
			Required: f.Required,
			Default:  f.Default,
			Enum:     f.Enum,
		}
	}
	return schemaInfo{
		Entity:          schema.Kind,
		Label:           schema.Label,
		Headers:         schema.Headers(),
		RequiredHeaders: schema.RequiredHeaders(core.OpImport),
		UpdateHeaders:   schema.RequiredHeaders(core.OpUpdate),
		StrictHeaders:   schema.RejectUnknownHeaders,
		Fields:          fields,
		CanImport:       core.Allows(schema.ImportRoles, role),
		CanExport:       core.Allows(schema.ExportRoles, role),
	}
}

// handleListSchemas returns every entity with its headers and whether the
// caller may import or export it.
func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	actor, _ := core.ActorFromContext(r.Context())

	schemas := core.All()
	out := make([]schemaInfo, len(schemas))
	for i, schema := range schemas {
		out[i] = describeSchema(schema, actor.Role)
	}
	writeJSON(w, r, out)
}

// handleTemplate returns a header-only CSV for an entity.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	schema, err := core.Lookup(chi.URLParam(r, "entity"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.service.Template(&buf, schema.Kind); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", core.FormatCSV.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-template.csv"`, schema.Table))
	_, _ = buf.WriteTo(w)
}

// handleListImports returns the tenant's import runs, newest first.
func (s *Server) handleListImports(w http.ResponseWriter, r *http.Request) {
	actor, _ := core.ActorFromContext(r.Context())

	runs, err := s.service.ListRuns(r.Context(), actor)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, runs)
}

// handleRollback deletes the records created by one import.
func (s *Server) handleRollback(w http.ResponseWriter, r *http.Request) {
	actor, _ := core.ActorFromContext(r.Context())

	res, err := s.service.Rollback(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

// handleReady reports whether the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := s.service.Ping(ctx); err != nil {
		s.respondErrorStatus(w, r, err, http.StatusServiceUnavailable)
		return
	}
	limiter := s.service.Limiter()
	writeJSON(w, r, map[string]any{
		"status":         "ready",
		"importsActive":  limiter.Active(),
		"importCapacity": limiter.Capacity(),
	})
}
