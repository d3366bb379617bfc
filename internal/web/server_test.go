package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/weaveops/internal/config"
	"github.com/JonMunkholm/weaveops/internal/core"
	_ "github.com/JonMunkholm/weaveops/internal/core/schemas"
	"github.com/JonMunkholm/weaveops/internal/lock"
	"github.com/JonMunkholm/weaveops/internal/store"
	mw "github.com/JonMunkholm/weaveops/internal/web/middleware"
	"github.com/google/go-cmp/cmp"
)

const testSecret = "test-secret"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 10 * time.Second},
		Import: config.ImportConfig{
			BatchSize:   50,
			MaxFileSize: 1 << 20,
			Timeout:     time.Minute,
		},
		Auth: config.AuthConfig{Required: false, DevTenant: "t1"},
	}
}

type testEnv struct {
	srv    *Server
	mem    *store.Memory
	locker *lock.Local
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	mem := store.NewMemory()
	locker := lock.NewLocal()
	svc := core.NewService(mem, locker, nil, core.Options{
		BatchSize:   cfg.Import.BatchSize,
		MaxFileSize: cfg.Import.MaxFileSize,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	srv := NewServer(svc, cfg)
	srv.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	return &testEnv{srv: srv, mem: mem, locker: locker}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, entity, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mp := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mp.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if fileName != "" {
		fw, err := mp.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatal(err)
		}
	}
	if err := mp.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/import/"+entity, &body)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

// ============================================================================
// Import
// ============================================================================

func TestImport_AllRowsAccepted(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(uploadRequest(t, "ledger", "ledgers.csv",
		"business_name,email,city\nAcme Inc,ops@acme.in,Surat\nBharat Looms,,Panipat\n", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body)
	}
	resp := decode[importResponse](t, rec)
	if resp.Imported != 2 || resp.Total != 2 || resp.Skipped != 0 || resp.Failed != 0 {
		t.Errorf("counts = %+v", resp)
	}
	if resp.Message != "Imported 2 of 2 rows" {
		t.Errorf("message = %q", resp.Message)
	}
	if len(resp.Errors) != 0 {
		t.Errorf("errors = %v, want none", resp.Errors)
	}
	if len(resp.Results) != 2 || resp.ImportID == "" {
		t.Errorf("results = %d, importId = %q", len(resp.Results), resp.ImportID)
	}
	if got := env.mem.Len("ledgers"); got != 2 {
		t.Errorf("stored = %d, want 2", got)
	}
}

func TestImport_PartialIsMultiStatus(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(uploadRequest(t, "ledger", "ledgers.csv",
		"business_name,email\n\"Acme Inc\",\"bad-email\"\n\"Acme Inc\",\"ok@x.com\"\n", nil))

	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("status = %d, want 207; body %s", rec.Code, rec.Body)
	}
	resp := decode[importResponse](t, rec)
	want := []string{
		"Row 2: Invalid email format: bad-email",
		`Row 3: Business name "Acme Inc" already exists - skipping`,
	}
	if diff := cmp.Diff(want, resp.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if resp.Imported != 0 || resp.Skipped != 1 || resp.Failed != 1 {
		t.Errorf("counts = imported %d skipped %d failed %d", resp.Imported, resp.Skipped, resp.Failed)
	}
	if len(resp.RowErrors) != 2 || resp.RowErrors[1].Kind != core.RowDuplicate {
		t.Errorf("rowErrors = %+v", resp.RowErrors)
	}
}

func TestImport_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		entity     string
		fileName   string
		content    string
		fields     map[string]string
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{
			name:       "not a csv file",
			entity:     "ledger",
			fileName:   "ledgers.xlsx",
			content:    "business_name\nAcme\n",
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE002",
			wantError:  "Only CSV files are allowed",
		},
		{
			name:       "header only",
			entity:     "ledger",
			fileName:   "ledgers.csv",
			content:    "business_name,email\n",
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE005",
			wantError:  "file must contain a header and at least one data row",
		},
		{
			name:       "missing required header",
			entity:     "user",
			fileName:   "users.csv",
			content:    "email,role\na@b.in,admin\n",
			wantStatus: http.StatusBadRequest,
			wantCode:   "VAL004",
			wantError:  "missing required headers: {full_name}, found headers: {email, role}",
		},
		{
			name:       "unknown entity",
			entity:     "invoices",
			fileName:   "invoices.csv",
			content:    "a\n1\n",
			wantStatus: http.StatusNotFound,
			wantCode:   "IMP005",
			wantError:  `unknown entity: "invoice"`,
		},
		{
			name:       "bad operation",
			entity:     "ledger",
			fileName:   "ledgers.csv",
			content:    "business_name\nAcme\n",
			fields:     map[string]string{"operation": "merge"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VAL009",
			wantError:  "invalid request: operation must be one of: import, update",
		},
		{
			name:       "no file",
			entity:     "ledger",
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE004",
			wantError:  "no file provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(uploadRequest(t, tt.entity, tt.fileName, tt.content, tt.fields))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body)
			}
			resp := decode[ErrorResponse](t, rec)
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
			if env.mem.Len("ledgers")+env.mem.Len("users") != 0 {
				t.Error("rejected upload stored records")
			}
		})
	}
}

func TestImport_FileTooLarge(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Import.MaxFileSize = 64 })

	content := "business_name\n" + strings.Repeat("Acme Weaving Mills\n", 20)
	rec := env.do(uploadRequest(t, "ledger", "ledgers.csv", content, nil))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413; body %s", rec.Code, rec.Body)
	}
	if resp := decode[ErrorResponse](t, rec); resp.Code != "FILE001" {
		t.Errorf("code = %q, want FILE001", resp.Code)
	}
}

func TestImport_NotMultipart(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/import/ledger", strings.NewReader("business_name\nAcme\n"))
	req.Header.Set("Content-Type", "text/csv")

	rec := env.do(req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decode[ErrorResponse](t, rec); resp.Code != "FILE006" {
		t.Errorf("code = %q, want FILE006", resp.Code)
	}
}

func TestImport_LockBusy(t *testing.T) {
	env := newTestEnv(t)
	lease, err := env.locker.Obtain(context.Background(), lock.ImportKey("t1", "ledger"))
	if err != nil {
		t.Fatal(err)
	}
	defer lease.Release(context.Background())

	rec := env.do(uploadRequest(t, "ledger", "ledgers.csv", "business_name\nAcme\n", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if resp := decode[ErrorResponse](t, rec); resp.Code != "IMP002" {
		t.Errorf("code = %q, want IMP002", resp.Code)
	}
}

func TestImport_UpdateOperation(t *testing.T) {
	env := newTestEnv(t)
	env.mem.Seed("products", store.Record{store.TenantColumn: "t1", "id": "PRD-1", "sku": "SAR-001", "name": "Silk saree"})

	rec := env.do(uploadRequest(t, "product", "products.csv",
		"sku,price\nSAR-001,2450\nSAR-404,10\n", map[string]string{"operation": "update"}))

	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("status = %d, want 207; body %s", rec.Code, rec.Body)
	}
	resp := decode[importResponse](t, rec)
	if resp.Operation != core.OpUpdate || resp.Imported != 1 || resp.Skipped != 1 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.ImportID != "" {
		t.Errorf("importId = %q, updates record no run", resp.ImportID)
	}
	want := []string{`Row 3: SKU "SAR-404" not found - skipping`}
	if diff := cmp.Diff(want, resp.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_HTMXFragment(t *testing.T) {
	env := newTestEnv(t)
	req := uploadRequest(t, "ledger", "ledgers.csv", "business_name,email\nAcme,bad-email\nBharat,\n", nil)
	req.Header.Set("HX-Request", "true")

	rec := env.do(req)
	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("status = %d, want 207", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{"alert-warning", "Row 2: Invalid email format: bad-email", "Imported 1, skipped 0, failed 1 of 2 rows"} {
		if !strings.Contains(body, want) {
			t.Errorf("fragment missing %q:\n%s", want, body)
		}
	}
}

func TestImport_HTMXErrorFragment(t *testing.T) {
	env := newTestEnv(t)
	req := uploadRequest(t, "ledger", "ledgers.txt", "business_name\nAcme\n", nil)
	req.Header.Set("HX-Request", "true")

	rec := env.do(req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "alert-error") || !strings.Contains(body, "Only CSV files are allowed") {
		t.Errorf("fragment = %s", body)
	}
}

// ============================================================================
// Auth
// ============================================================================

func TestAuth(t *testing.T) {
	secure := func(c *config.Config) {
		c.Auth = config.AuthConfig{Required: true, JWTSecret: testSecret}
	}
	token := func(t *testing.T, actor core.Actor) string {
		t.Helper()
		tok, err := mw.IssueToken([]byte(testSecret), actor, time.Hour)
		if err != nil {
			t.Fatal(err)
		}
		return tok
	}
	body := "business_name\nAcme\n"

	tests := []struct {
		name       string
		auth       func(t *testing.T) string
		wantStatus int
		wantCode   string
	}{
		{"missing token", func(*testing.T) string { return "" }, http.StatusUnauthorized, "AUTH001"},
		{"garbage token", func(*testing.T) string { return "Bearer not-a-jwt" }, http.StatusUnauthorized, "AUTH002"},
		{"staff may not import ledgers", func(t *testing.T) string {
			return "Bearer " + token(t, core.Actor{Tenant: "acme", UserID: "u9", Role: core.RoleStaff})
		}, http.StatusForbidden, "AUTH003"},
		{"accountant may", func(t *testing.T) string {
			return "Bearer " + token(t, core.Actor{Tenant: "acme", UserID: "u2", Role: core.RoleAccountant})
		}, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, secure)
			req := uploadRequest(t, "ledger", "ledgers.csv", body, nil)
			if h := tt.auth(t); h != "" {
				req.Header.Set("Authorization", h)
			}

			rec := env.do(req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantCode != "" {
				if resp := decode[ErrorResponse](t, rec); resp.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
				}
			}
		})
	}
}

// unreadBody fails the test if the handler reads the request body.
type unreadBody struct{ t *testing.T }

func (b unreadBody) Read([]byte) (int, error) {
	b.t.Error("request body was read")
	return 0, io.EOF
}

func TestAuth_RoleCheckedBeforeUpload(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Auth = config.AuthConfig{Required: true, JWTSecret: testSecret}
	})
	tok, err := mw.IssueToken([]byte(testSecret), core.Actor{Tenant: "acme", UserID: "u3", Role: core.RoleStaff}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/import/user", unreadBody{t})
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	req.Header.Set("Authorization", "Bearer "+tok)

	rec := env.do(req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403; body %s", rec.Code, rec.Body)
	}
	if resp := decode[ErrorResponse](t, rec); resp.Code != "AUTH003" {
		t.Errorf("code = %q, want AUTH003", resp.Code)
	}
}

func TestAuth_TenantComesFromToken(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Auth = config.AuthConfig{Required: true, JWTSecret: testSecret}
	})
	tok, err := mw.IssueToken([]byte(testSecret), core.Actor{Tenant: "acme", UserID: "u1", Role: core.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	req := uploadRequest(t, "ledger", "ledgers.csv", "business_name\nAcme\n", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	if rec := env.do(req); rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body)
	}

	recs, err := env.mem.Select(context.Background(), "ledgers", store.ForTenant("acme"))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("acme records = %d, want 1", len(recs))
	}
	if other, _ := env.mem.Select(context.Background(), "ledgers", store.ForTenant("t1")); len(other) != 0 {
		t.Errorf("dev tenant got %d records", len(other))
	}
}

// ============================================================================
// Export
// ============================================================================

func seedLedgers(env *testEnv) {
	env.mem.Seed("ledgers",
		store.Record{store.TenantColumn: "t1", "id": "LED-1", "business_name": "Acme Inc", "city": "Surat", "gst_number": "27AAPCU1234C1ZV", "status": "active"},
		store.Record{store.TenantColumn: "t1", "id": "LED-2", "business_name": "Bharat Looms", "city": "Panipat", "status": "active"},
		store.Record{store.TenantColumn: "t2", "id": "LED-3", "business_name": "Other Tenant", "city": "Surat", "status": "active"},
	)
}

func TestExport_CSV(t *testing.T) {
	env := newTestEnv(t)
	seedLedgers(env)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/export/ledger", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="ledgers-export-2024-06-01.csv"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if n := rec.Header().Get("X-Record-Count"); n != "2" {
		t.Errorf("X-Record-Count = %q, want 2", n)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2:\n%s", len(lines), rec.Body)
	}
	if !strings.HasPrefix(lines[0], "business_name,") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Acme Inc,") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestExport_Filters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"equality", "city=Surat", "1"},
		{"search", "search=looms", "1"},
		{"presence", "has_gst=false", "1"},
		{"generic condition", "filter[business_name]=starts:acme", "1"},
		{"unknown filter ignored", "colour=red", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			seedLedgers(env)

			rec := env.do(httptest.NewRequest(http.MethodGet, "/api/export/ledger?"+tt.query, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d; body %s", rec.Code, rec.Body)
			}
			if got := rec.Header().Get("X-Record-Count"); got != tt.want {
				t.Errorf("X-Record-Count = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExport_XLSXAndBadFormat(t *testing.T) {
	env := newTestEnv(t)
	seedLedgers(env)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/export/ledgers?format=xlsx", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx status = %d; body %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != core.FormatXLSX.ContentType() {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("xlsx body is not a zip archive")
	}

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/export/ledger?format=pdf", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("pdf status = %d, want 400", rec.Code)
	}
	if resp := decode[ErrorResponse](t, rec); resp.Error != "invalid request: format must be one of: csv, xlsx" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestExport_Forbidden(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Auth = config.AuthConfig{Required: true, JWTSecret: testSecret}
	})
	tok, _ := mw.IssueToken([]byte(testSecret), core.Actor{Tenant: "t1", UserID: "u5", Role: core.RoleStaff}, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/api/export/user", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	if rec := env.do(req); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

// ============================================================================
// Schemas, templates, runs
// ============================================================================

func TestTemplate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/templates/user", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "id,email,full_name,role,phone,status\n" {
		t.Errorf("template = %q", got)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="users-template.csv"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestListSchemas(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/schemas", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[[]schemaInfo](t, rec)

	var kinds []core.EntityKind
	for _, s := range got {
		kinds = append(kinds, s.Entity)
		if !s.CanImport || !s.CanExport {
			t.Errorf("%s: dev admin should import and export", s.Entity)
		}
	}
	if diff := cmp.Diff(core.Kinds, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"item_code"}, got[3].UpdateHeaders); diff != "" {
		t.Errorf("inventory update headers (-want +got):\n%s", diff)
	}
}

func TestImportsListAndRollback(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(uploadRequest(t, "ledger", "ledgers.csv", "business_name\nAcme\nBharat\n", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d; body %s", rec.Code, rec.Body)
	}
	importID := decode[importResponse](t, rec).ImportID

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/imports", nil))
	runs := decode[[]core.ImportRun](t, rec)
	if len(runs) != 1 || runs[0].ID != importID || runs[0].Status != core.RunCompleted {
		t.Fatalf("runs = %+v", runs)
	}

	rec = env.do(httptest.NewRequest(http.MethodDelete, "/api/imports/"+importID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("rollback status = %d; body %s", rec.Code, rec.Body)
	}
	if res := decode[core.RollbackResult](t, rec); res.RowsDeleted != 2 {
		t.Errorf("rowsDeleted = %d, want 2", res.RowsDeleted)
	}
	if n := env.mem.Len("ledgers"); n != 0 {
		t.Errorf("ledgers left = %d", n)
	}

	rec = env.do(httptest.NewRequest(http.MethodDelete, "/api/imports/"+importID, nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("second rollback status = %d, want 409", rec.Code)
	}

	rec = env.do(httptest.NewRequest(http.MethodDelete, "/api/imports/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown rollback status = %d, want 404", rec.Code)
	}
}

// ============================================================================
// Infrastructure
// ============================================================================

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/health", "/ready"} {
		rec := env.do(httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Security.EnableCSP = true })

	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("missing %s", h)
		}
	}
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Rate = config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2}
	})

	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, env.do(httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	}
	if diff := cmp.Diff([]int{200, 200, 429}, codes); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Security.AllowedOrigins = []string{"https://ops.example.in"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/schemas", nil)
	req.Header.Set("Origin", "https://ops.example.in")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := env.do(req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://ops.example.in" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
