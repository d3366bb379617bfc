package web

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/weaveops/internal/core"
	"github.com/JonMunkholm/weaveops/internal/store"
	"github.com/go-chi/chi/v5"
)

type exportRequest struct {
	Entity string `validate:"required"`
	Format string `validate:"omitempty,oneof=csv xlsx"`
}

// handleExport streams the tenant's records of one entity as a file
// download. Query parameters narrow the result:
//
//	search=acme                 substring match over the entity's search fields
//	city=Surat                  equality on the entity's filter fields
//	has_gst=true                presence of an optional column
//	filter[quantity]=gte:100    generic column predicate
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := exportRequest{
		Entity: chi.URLParam(r, "entity"),
		Format: strings.ToLower(strings.TrimSpace(q.Get("format"))),
	}
	if err := validate.Struct(req); err != nil {
		s.respondError(w, r, invalidRequest(err))
		return
	}
	schema, err := core.Lookup(req.Entity)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	format := core.ExportFormat(req.Format)
	if format == "" {
		format = core.FormatCSV
	}

	actor, _ := core.ActorFromContext(r.Context())

	// Buffered so a failed query still gets a proper error response.
	var buf bytes.Buffer
	n, err := s.service.Export(r.Context(), &buf, actor, schema.Kind, parseExportParams(q, schema), format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, core.ExportFileName(schema, format, s.now())))
	w.Header().Set("X-Record-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// parseExportParams extracts export filters from the query string.
// Malformed values are dropped rather than rejected.
func parseExportParams(q url.Values, schema *core.RecordSchema) core.ExportParams {
	params := core.ExportParams{
		Search:   strings.TrimSpace(q.Get("search")),
		Equals:   make(map[string]string),
		Presence: make(map[string]bool),
	}

	for _, field := range schema.FilterFields {
		if v := strings.TrimSpace(q.Get(field)); v != "" {
			params.Equals[field] = v
		}
	}

	for name := range schema.PresenceFilters {
		v := q.Get(name)
		if v == "" {
			continue
		}
		if want, err := strconv.ParseBool(v); err == nil {
			params.Presence[name] = want
		}
	}

	params.Conditions = parseConditions(q)
	return params
}

// parseConditions reads filter[col]=op:value parameters. "in" and "iin"
// take a comma-separated list; "present" and "absent" take no value.
func parseConditions(q url.Values) []store.Condition {
	var out []store.Condition
	for key, values := range q {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
			continue
		}
		col := strings.ToLower(strings.TrimSpace(key[len("filter[") : len(key)-1]))
		if col == "" {
			continue
		}

		for _, raw := range values {
			opText, value, _ := strings.Cut(raw, ":")
			op := store.FilterOperator(strings.ToLower(strings.TrimSpace(opText)))
			if !store.ValidOperator(op) {
				continue
			}

			switch op {
			case store.OpPresent, store.OpAbsent:
				out = append(out, store.Condition{Column: col, Op: op})
			case store.OpIn, store.OpInFold:
				var list []string
				for _, item := range strings.Split(value, ",") {
					if item = strings.TrimSpace(item); item != "" {
						list = append(list, item)
					}
				}
				if len(list) > 0 {
					out = append(out, store.Condition{Column: col, Op: op, Value: list})
				}
			default:
				if value != "" {
					out = append(out, store.Condition{Column: col, Op: op, Value: value})
				}
			}
		}
	}
	return out
}
