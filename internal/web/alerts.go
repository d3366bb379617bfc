package web

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/weaveops/internal/core"
	"github.com/JonMunkholm/weaveops/internal/logging"
	"github.com/a-h/templ"
)

// maxAlertErrors caps the row messages listed in an import alert.
const maxAlertErrors = 20

// renderComponent writes an HTML fragment for HTMX swaps.
func renderComponent(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render fragment", "path", r.URL.Path, "error", err)
	}
}

// errorAlert renders a dismissible error box.
func errorAlert(detail string, msg core.UserMessage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.printf(`<div class="alert alert-error" role="alert" data-code="%s">`, templ.EscapeString(msg.Code))
		p.printf(`<p class="alert-title">%s</p>`, templ.EscapeString(detail))
		if msg.Action != "" {
			p.printf(`<p class="alert-action">%s</p>`, templ.EscapeString(msg.Action))
		}
		p.printf(`<p class="alert-code">Code: %s</p></div>`, templ.EscapeString(msg.Code))
		return p.err
	})
}

// importAlert renders the outcome of an import: a success box when every
// row went in, a warning box listing row messages otherwise.
func importAlert(resp importResponse) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		class := "alert-success"
		if len(resp.Errors) > 0 {
			class = "alert-warning"
		}
		p.printf(`<div class="alert %s" role="status"`, class)
		if resp.ImportID != "" {
			p.printf(` data-import-id="%s"`, templ.EscapeString(resp.ImportID))
		}
		p.printf(`><p class="alert-title">%s</p>`, templ.EscapeString(resp.Message))
		p.printf(`<p class="alert-counts">Imported %d, skipped %d, failed %d of %d rows</p>`,
			resp.Imported, resp.Skipped, resp.Failed, resp.Total)

		if len(resp.Errors) > 0 {
			p.printf(`<ul class="alert-errors">`)
			for i, e := range resp.Errors {
				if i == maxAlertErrors {
					p.printf(`<li>and %d more</li>`, len(resp.Errors)-maxAlertErrors)
					break
				}
				p.printf(`<li>%s</li>`, templ.EscapeString(e))
			}
			p.printf(`</ul>`)
		}
		p.printf(`</div>`)
		return p.err
	})
}

// printer stops writing after the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
