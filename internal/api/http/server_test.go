package http

import (
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spec-kit/ticketapp/internal/config"
	"github.com/spec-kit/ticketapp/internal/observability"
	"github.com/spec-kit/ticketapp/internal/persistence"
)

func testConfig(base string) config.Config {
	return config.Config{
		App: config.AppConfig{Name: "ticketapp", Version: "test", BasePath: base},
		Storage: config.StorageConfig{
			Driver:     config.StorageMemory,
			MaxRetries: 5,
		},
		Auth: config.AuthConfig{
			JWTSecret:          "test-secret",
			ProfileTTLHours:    1,
			BcryptCost:         4,
			RateLimitPerMinute: 600,
			RateLimitBurst:     100,
		},
	}
}

// browser replays cookies between requests like one browser profile.
type browser struct {
	t       *testing.T
	server  *Server
	cookies map[string]*nethttp.Cookie
}

func newBrowser(t *testing.T, cfg config.Config) *browser {
	t.Helper()
	srv, err := NewServer(cfg, persistence.NewMemory(), nil, observability.NewMetrics(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown() })
	return &browser{t: t, server: srv, cookies: map[string]*nethttp.Cookie{}}
}

func (b *browser) do(req *nethttp.Request) *nethttp.Response {
	b.t.Helper()
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}
	resp, err := b.server.App.Test(req, -1)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	for _, ck := range resp.Cookies() {
		if ck.Value == "" || ck.MaxAge < 0 {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck
	}
	return resp
}

func (b *browser) get(path string) *nethttp.Response {
	return b.do(httptest.NewRequest(nethttp.MethodGet, path, nil))
}

func (b *browser) postForm(path string, values url.Values) *nethttp.Response {
	req := httptest.NewRequest(nethttp.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) sendJSON(method, path, body string) *nethttp.Response {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return b.do(req)
}

func readBody(t *testing.T, resp *nethttp.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func decodeData(t *testing.T, resp *nethttp.Response, into any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, into); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func errorCode(t *testing.T, resp *nethttp.Response) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error.Code
}

func TestPages_LandingAndNotFound(t *testing.T) {
	b := newBrowser(t, testConfig(""))

	resp := b.get("/")
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("GET / = %d", resp.StatusCode)
	}
	if _, ok := b.cookies["ticketapp_profile"]; !ok {
		t.Error("profile cookie not issued")
	}

	if resp := b.get("/tickets/edit/a/b"); resp.StatusCode != nethttp.StatusNotFound {
		t.Errorf("nested edit id = %d, want 404", resp.StatusCode)
	}

	resp = b.get("/no/such/page")
	body := readBody(t, resp)
	if resp.StatusCode != nethttp.StatusNotFound {
		t.Errorf("unknown path = %d, want 404", resp.StatusCode)
	}
	if !strings.Contains(body, "Track every ticket") {
		t.Error("404 did not render the landing view")
	}
}

func TestPages_RequireSession(t *testing.T) {
	b := newBrowser(t, testConfig("/app"))

	for _, path := range []string{"/app/dashboard", "/app/tickets", "/app/tickets/active", "/app/tickets/create", "/app/tickets/edit/1"} {
		resp := b.get(path)
		if resp.StatusCode != nethttp.StatusFound || resp.Header.Get("Location") != "/app/auth/login" {
			t.Errorf("GET %s = %d %q", path, resp.StatusCode, resp.Header.Get("Location"))
		}
	}
	if resp := b.get("/app/auth/login"); resp.StatusCode != nethttp.StatusOK {
		t.Errorf("GET login = %d", resp.StatusCode)
	}
}

func TestFormFlow_SignupCreateEditDelete(t *testing.T) {
	b := newBrowser(t, testConfig(""))
	b.get("/")

	resp := b.postForm("/auth/signup", url.Values{
		"name": {"Ann"}, "email": {"ann@x.com"}, "password": {"password1"}, "confirmPassword": {"password1"},
	})
	if resp.StatusCode != nethttp.StatusSeeOther || resp.Header.Get("Location") != "/dashboard" {
		t.Fatalf("signup = %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	body := readBody(t, b.get("/dashboard"))
	if !strings.Contains(body, "Account created successfully! Redirecting...") {
		t.Error("signup toast missing on dashboard")
	}
	if !strings.Contains(body, "ann@x.com") {
		t.Error("session email missing on dashboard")
	}
	if body := readBody(t, b.get("/dashboard")); strings.Contains(body, "Account created successfully") {
		t.Error("toast shown twice")
	}

	if resp := b.get("/auth/login"); resp.StatusCode != nethttp.StatusFound {
		t.Errorf("logged-in GET /auth/login = %d, want redirect", resp.StatusCode)
	}
	resp = b.postForm("/auth/signup", url.Values{"name": {"Eve"}})
	if resp.StatusCode != nethttp.StatusFound || resp.Header.Get("Location") != "/dashboard" {
		t.Errorf("logged-in POST /auth/signup = %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp = b.postForm("/tickets/create", url.Values{"title": {"Printer broken"}, "status": {"open"}})
	if resp.StatusCode != nethttp.StatusSeeOther {
		t.Fatalf("create = %d", resp.StatusCode)
	}
	body = readBody(t, b.get("/tickets"))
	if !strings.Contains(body, "Printer broken") || !strings.Contains(body, "Ticket created successfully") {
		t.Fatalf("ticket list missing new ticket:\n%s", body)
	}

	var tickets []struct {
		ID string `json:"id"`
	}
	decodeData(t, b.get("/api/tickets"), &tickets)
	if len(tickets) != 1 {
		t.Fatalf("api tickets = %d", len(tickets))
	}
	id := tickets[0].ID

	if body := readBody(t, b.get("/tickets/edit/"+id)); !strings.Contains(body, `value="Printer broken"`) {
		t.Error("edit form not prefilled")
	}
	resp = b.postForm("/tickets/edit/"+id, url.Values{"title": {"Printer fixed"}, "status": {"closed"}})
	if resp.StatusCode != nethttp.StatusSeeOther {
		t.Fatalf("edit = %d", resp.StatusCode)
	}
	if body := readBody(t, b.get("/tickets/active")); strings.Contains(body, "Printer fixed") {
		t.Error("closed ticket listed as active")
	}

	resp = b.postForm("/tickets/delete/"+id, url.Values{})
	if resp.StatusCode != nethttp.StatusSeeOther {
		t.Fatalf("delete = %d", resp.StatusCode)
	}
	if body := readBody(t, b.get("/tickets")); strings.Contains(body, "Printer fixed") {
		t.Error("deleted ticket still listed")
	}

	resp = b.postForm("/auth/logout", url.Values{})
	if resp.StatusCode != nethttp.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("logout = %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if resp := b.get("/dashboard"); resp.StatusCode != nethttp.StatusFound {
		t.Errorf("dashboard after logout = %d", resp.StatusCode)
	}
}

func TestFormFlow_ValidationRerendersForm(t *testing.T) {
	b := newBrowser(t, testConfig(""))
	b.get("/")

	resp := b.postForm("/auth/signup", url.Values{
		"name": {"Ann"}, "email": {"bad"}, "password": {"password1"}, "confirmPassword": {"password2"},
	})
	body := readBody(t, resp)
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Fatalf("invalid signup = %d", resp.StatusCode)
	}
	for _, want := range []string{"Please enter a valid email address", "Passwords do not match", "Please fix the errors in the form", `value="Ann"`} {
		if !strings.Contains(body, want) {
			t.Errorf("signup form missing %q", want)
		}
	}

	resp = b.postForm("/auth/login", url.Values{"email": {"ann@x.com"}, "password": {"password1"}})
	body = readBody(t, resp)
	if resp.StatusCode != nethttp.StatusUnauthorized || !strings.Contains(body, "Invalid email or password") {
		t.Errorf("bad login = %d", resp.StatusCode)
	}
}

func TestAPI_TicketLifecycle(t *testing.T) {
	b := newBrowser(t, testConfig(""))

	resp := b.sendJSON(nethttp.MethodGet, "/api/tickets", "")
	if resp.StatusCode != nethttp.StatusUnauthorized || errorCode(t, resp) != "NO_ACTIVE_SESSION" {
		t.Fatalf("anonymous list = %d", resp.StatusCode)
	}

	resp = b.sendJSON(nethttp.MethodPost, "/api/auth/signup",
		`{"name":"Ann","email":"ann@x.com","password":"password1","confirmPassword":"password1"}`)
	if resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("signup = %d %s", resp.StatusCode, readBody(t, resp))
	}
	var auth struct {
		Token   string `json:"token"`
		Session struct {
			Email string `json:"email"`
		} `json:"session"`
	}
	decodeData(t, resp, &auth)
	if auth.Token == "" || auth.Session.Email != "ann@x.com" {
		t.Fatalf("signup data = %+v", auth)
	}

	resp = b.sendJSON(nethttp.MethodPost, "/api/auth/signup",
		`{"name":"Ann","email":"ann@x.com","password":"password1","confirmPassword":"password1"}`)
	if resp.StatusCode != nethttp.StatusConflict || errorCode(t, resp) != "DUPLICATE_EMAIL" {
		t.Errorf("duplicate signup = %d", resp.StatusCode)
	}

	for _, status := range []string{"open", "open", "in_progress", "closed"} {
		resp = b.sendJSON(nethttp.MethodPost, "/api/tickets", `{"title":"t","status":"`+status+`"}`)
		if resp.StatusCode != nethttp.StatusCreated {
			t.Fatalf("create = %d %s", resp.StatusCode, readBody(t, resp))
		}
	}
	var created struct {
		ID          string `json:"id"`
		StatusLabel string `json:"statusLabel"`
	}
	decodeData(t, resp, &created)
	if created.StatusLabel != "Closed" {
		t.Errorf("statusLabel = %q", created.StatusLabel)
	}

	var stats map[string]int
	decodeData(t, b.sendJSON(nethttp.MethodGet, "/api/tickets/stats", ""), &stats)
	want := map[string]int{"total": 4, "open": 2, "inProgress": 1, "closed": 1}
	for k, v := range want {
		if stats[k] != v {
			t.Errorf("stats[%s] = %d, want %d", k, stats[k], v)
		}
	}

	resp = b.sendJSON(nethttp.MethodPatch, "/api/tickets/"+created.ID, `{"status":"open"}`)
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("patch = %d", resp.StatusCode)
	}
	var patched struct {
		Status    string  `json:"status"`
		UpdatedAt *string `json:"updatedAt"`
	}
	decodeData(t, resp, &patched)
	if patched.Status != "open" || patched.UpdatedAt == nil {
		t.Errorf("patched = %+v", patched)
	}

	resp = b.sendJSON(nethttp.MethodPatch, "/api/tickets/missing", `{"status":"open"}`)
	if resp.StatusCode != nethttp.StatusNotFound {
		t.Errorf("patch missing = %d", resp.StatusCode)
	}
	resp = b.sendJSON(nethttp.MethodPost, "/api/tickets", `{"title":"x","status":"blocked"}`)
	if resp.StatusCode != nethttp.StatusBadRequest || errorCode(t, resp) != "VALIDATION_FAILED" {
		t.Errorf("invalid status = %d", resp.StatusCode)
	}

	for i := 0; i < 2; i++ {
		if resp := b.sendJSON(nethttp.MethodDelete, "/api/tickets/"+created.ID, ""); resp.StatusCode != nethttp.StatusNoContent {
			t.Errorf("delete #%d = %d", i+1, resp.StatusCode)
		}
	}
	if resp := b.sendJSON(nethttp.MethodGet, "/api/tickets/"+created.ID, ""); resp.StatusCode != nethttp.StatusNotFound {
		t.Errorf("get deleted = %d", resp.StatusCode)
	}
}

func TestAPI_BearerTokenSharesProfile(t *testing.T) {
	b := newBrowser(t, testConfig(""))
	resp := b.sendJSON(nethttp.MethodPost, "/api/auth/signup",
		`{"name":"Ann","email":"ann@x.com","password":"password1","confirmPassword":"password1"}`)
	var auth struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &auth)

	req := httptest.NewRequest(nethttp.MethodGet, "/api/session", nil)
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	resp, err := b.server.App.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("session via bearer = %d", resp.StatusCode)
	}
}

func TestAPI_Validate(t *testing.T) {
	b := newBrowser(t, testConfig(""))

	var result struct {
		IsValid bool   `json:"isValid"`
		Message string `json:"message"`
	}
	decodeData(t, b.sendJSON(nethttp.MethodPost, "/api/validate",
		`{"field":"confirmPassword","value":"y","form":{"password":"x"}}`), &result)
	if result.IsValid || result.Message != "Passwords do not match" {
		t.Errorf("validate = %+v", result)
	}

	decodeData(t, b.sendJSON(nethttp.MethodPost, "/api/validate", `{"field":"nickname","value":""}`), &result)
	if !result.IsValid {
		t.Error("unknown field should validate")
	}
}

func TestAuthRateLimit(t *testing.T) {
	cfg := testConfig("")
	cfg.Auth.RateLimitPerMinute = 1
	cfg.Auth.RateLimitBurst = 1
	b := newBrowser(t, cfg)

	body := `{"email":"ann@x.com","password":"password1"}`
	if resp := b.sendJSON(nethttp.MethodPost, "/api/auth/login", body); resp.StatusCode != nethttp.StatusUnauthorized {
		t.Fatalf("first login = %d", resp.StatusCode)
	}
	resp := b.sendJSON(nethttp.MethodPost, "/api/auth/login", body)
	if resp.StatusCode != nethttp.StatusTooManyRequests {
		t.Fatalf("second login = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("Retry-After not set")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	b := newBrowser(t, testConfig("/app"))

	if resp := b.get("/app/health/ready"); resp.StatusCode != nethttp.StatusOK {
		t.Errorf("ready = %d", resp.StatusCode)
	}
	if len(b.cookies) != 0 {
		t.Error("probe minted a profile cookie")
	}
	b.get("/app/")
	body := readBody(t, b.get("/app/metrics"))
	if !strings.Contains(body, "ticketapp_http_requests_total") {
		t.Error("metrics endpoint missing request counter")
	}
}
