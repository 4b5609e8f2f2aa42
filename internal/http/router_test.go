package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/userdesk/internal/auth"
	"github.com/geocoder89/userdesk/internal/cache"
	"github.com/geocoder89/userdesk/internal/config"
	"github.com/geocoder89/userdesk/internal/db"
	"github.com/geocoder89/userdesk/internal/gql"
	"github.com/geocoder89/userdesk/internal/observability"
	"github.com/geocoder89/userdesk/internal/repo/memory"
	"github.com/geocoder89/userdesk/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Config{
		Env:                    "dev",
		AdminEmail:             "admin@example.com",
		AdminPassword:          "admin123",
		AdminName:              "Admin",
		CORSAllowedOrigins:     []string{"http://localhost:3000"},
		RateLimitAuthPerMinute: 100,
	}

	store := memory.NewUsersRepo()
	if err := db.EnsureAdminUser(context.Background(), store, cfg); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	listCache := cache.New(time.Minute)

	authSvc := service.NewAuthService(store, auth.NewManager("router-test-secret", time.Hour), listCache, log)
	users := service.NewUserService(store, listCache, prom, log)

	schema, err := gql.NewSchema(authSvc, users, log)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	return NewRouter(log, Deps{
		Config:   cfg,
		Auth:     authSvc,
		Users:    users,
		Schema:   schema,
		Prom:     prom,
		Gatherer: reg,
		Ping:     store.Ping,
	})
}

func do(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()

	w := do(r, http.MethodPost, "/api/v1/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login response: %v %s", err, w.Body.String())
	}
	return resp.Token
}

func TestRESTFlow(t *testing.T) {
	r := newTestRouter(t)

	adminToken := login(t, r, "admin@example.com", "admin123")

	// signup is open, gives a USER
	w := do(r, http.MethodPost, "/api/v1/auth/signup", "", `{"name":"Sam Doe","email":"sam@example.com","password":"password123"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status=%d body=%s", w.Code, w.Body.String())
	}
	userToken := login(t, r, "sam@example.com", "password123")

	// listing needs a token
	if w := do(r, http.MethodGet, "/api/v1/users", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list status=%d", w.Code)
	}

	w = do(r, http.MethodGet, "/api/v1/users?page=1&limit=10", userToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status=%d body=%s", w.Code, w.Body.String())
	}
	var page struct {
		TotalCount int `json:"totalCount"`
		Users      []struct {
			ID string `json:"id"`
		} `json:"users"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.TotalCount != 2 {
		t.Fatalf("totalCount=%d want 2", page.TotalCount)
	}

	// a USER cannot create
	body := `{"name":"New Person","email":"new@example.com","password":"password123"}`
	if w := do(r, http.MethodPost, "/api/v1/users", userToken, body); w.Code != http.StatusForbidden {
		t.Fatalf("user create status=%d", w.Code)
	}

	w = do(r, http.MethodPost, "/api/v1/users", adminToken, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create status=%d body=%s", w.Code, w.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	w = do(r, http.MethodPatch, "/api/v1/users/"+created.ID, adminToken, `{"role":"SUPERUSER"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad enum status=%d", w.Code)
	}

	w = do(r, http.MethodPost, "/api/v1/users/batch-delete", adminToken, `{"ids":["`+created.ID+`"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("batch delete status=%d body=%s", w.Code, w.Body.String())
	}

	if w := do(r, http.MethodGet, "/api/v1/users/"+created.ID, adminToken, ""); w.Code != http.StatusNotFound {
		t.Fatalf("deleted record status=%d", w.Code)
	}

	if w := do(r, http.MethodPost, "/api/v1/users/batch-delete", adminToken, `{"ids":["`+created.ID+`"]}`); w.Code != http.StatusNotFound {
		t.Fatalf("repeat batch delete status=%d", w.Code)
	}

	w = do(r, http.MethodGet, "/api/v1/users/export?role=USER", userToken, "")
	if w.Code != http.StatusOK || w.Header().Get("ETag") == "" {
		t.Fatalf("export status=%d etag=%q", w.Code, w.Header().Get("ETag"))
	}
}

func TestRESTValidationReportsFieldsByJSONName(t *testing.T) {
	r := newTestRouter(t)
	adminToken := login(t, r, "admin@example.com", "admin123")

	w := do(r, http.MethodPost, "/api/v1/users", adminToken, `{"name":"A","role":"ROOT"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Fields []struct {
					Field   string `json:"field"`
					Rule    string `json:"rule"`
					Message string `json:"message"`
				} `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != "BAD_USER_INPUT" {
		t.Fatalf("code=%q", resp.Error.Code)
	}

	want := map[string]string{"name": "min", "email": "required", "password": "required", "role": "oneof"}
	got := map[string]string{}
	for _, f := range resp.Error.Details.Fields {
		if f.Message == "" {
			t.Fatalf("field %q has no message", f.Field)
		}
		got[f.Field] = f.Rule
	}
	for field, rule := range want {
		if got[field] != rule {
			t.Fatalf("field %q rule=%q want %q (all: %v)", field, got[field], rule, got)
		}
	}
}

func TestRESTAcceptsPaddedEmails(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/auth/signup", "", `{"name":"Sam Doe","email":"  Sam@Example.com ","password":"password123"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status=%d body=%s", w.Code, w.Body.String())
	}

	login(t, r, " SAM@example.com ", "password123")

	w = do(r, http.MethodPost, "/api/v1/auth/signup", "", `{"name":"Sam Again","email":"sam@example.com ","password":"password123"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate signup status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestGraphQLEndpoint(t *testing.T) {
	r := newTestRouter(t)

	query := func(token, q string) map[string]interface{} {
		t.Helper()

		body, _ := json.Marshal(map[string]interface{}{"query": q})
		req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}

		var out map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return out
	}

	out := query("", `mutation { login(email: "admin@example.com", password: "admin123") { token user { role } } }`)
	data := out["data"].(map[string]interface{})["login"].(map[string]interface{})
	token := data["token"].(string)

	out = query("", `{ users(page: 1, limit: 5) { totalCount } }`)
	errs, _ := out["errors"].([]interface{})
	if len(errs) == 0 {
		t.Fatalf("expected an error for anonymous listing: %v", out)
	}
	ext := errs[0].(map[string]interface{})["extensions"].(map[string]interface{})
	if ext["code"] != "UNAUTHENTICATED" {
		t.Fatalf("code=%v", ext["code"])
	}

	out = query(token, `{ users(page: 1, limit: 5) { totalCount } me { email role } }`)
	if out["errors"] != nil {
		t.Fatalf("unexpected errors: %v", out["errors"])
	}
	me := out["data"].(map[string]interface{})["me"].(map[string]interface{})
	if me["role"] != "ADMIN" {
		t.Fatalf("me=%v", me)
	}
}

func TestOpsEndpoints(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		if w := do(r, http.MethodGet, path, "", ""); w.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, w.Code)
		}
	}

	// generate at least one observed request
	do(r, http.MethodGet, "/healthz", "", "")

	w := do(r, http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "userdesk_http_requests_total") {
		t.Fatalf("metrics status=%d", w.Code)
	}
}
