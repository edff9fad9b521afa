package bootstrap

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"resume-renderer/internal/resumes"
	"resume-renderer/internal/shared/auth"
	"resume-renderer/internal/shared/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:                   "dev",
		ObjectStoreType:       "local",
		LocalStoreDir:         t.TempDir(),
		PublicBaseURL:         "http://localhost:8080",
		InternalAPISecret:     "internal-secret",
		BrowserProvider:       "local",
		ChromePath:            "/nonexistent/chrome",
		RenderMaxDuration:     5 * time.Second,
		CORSAllowOrigin:       []string{"http://localhost:3000"},
		BrowserStartupTimeout: 5 * time.Second,
	}
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	v, err := auth.NewVerifier("", true)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	token, err := v.Sign(auth.Claims{Sub: sub})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + token
}

func TestBuildUsesMemoryRepoWithoutDatabase(t *testing.T) {
	app, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if app.DB != nil {
		t.Fatalf("expected no database in dev without DATABASE_URL")
	}
	if _, ok := app.ResumeRepo.(*resumes.MemoryRepo); !ok {
		t.Fatalf("expected memory repo, got %T", app.ResumeRepo)
	}
	if app.Router == nil {
		t.Fatalf("expected router")
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "production"
	if _, err := Build(cfg); err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

func TestBuildRequiresBucketForS3(t *testing.T) {
	cfg := testConfig(t)
	cfg.ObjectStoreType = "s3"
	if _, err := Build(cfg); err == nil {
		t.Fatalf("expected error for s3 without bucket")
	}
}

func TestRouterHealthAndMetrics(t *testing.T) {
	app, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, path := range []string{"/health", "/api/v1/health", "/metrics"} {
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}
}

func TestRenderRouteRequiresAPIKey(t *testing.T) {
	app, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/render", bytes.NewBufferString(`{"html":"<p>x</p>"}`))
	req.Header.Set("Content-Type", "application/json")
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRenderRouteIsRateLimited(t *testing.T) {
	cfg := testConfig(t)
	cfg.RenderRateLimit = 0.001
	cfg.RenderRateBurst = 1
	app, err := Build(cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/render", bytes.NewBufferString(`{"html":""}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", "internal-secret")
		app.Router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusBadRequest || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected [400 429], got %v", codes)
	}
}

func TestResumeRoutesAreScopedToCaller(t *testing.T) {
	app, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes", bytes.NewBufferString(`{"title":"CV"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "user-a"))
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
	}
	var created resumes.ResumeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/resumes/"+created.ID, nil)
	req.Header.Set("Authorization", bearer(t, "user-a"))
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("owner: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/resumes/"+created.ID, nil)
	req.Header.Set("Authorization", bearer(t, "user-b"))
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("other user: expected 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", w.Code)
	}
}

func TestMeEchoesTokenIdentity(t *testing.T) {
	app, err := Build(testConfig(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", bearer(t, "user-a"))
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["userId"] != "user-a" {
		t.Fatalf("unexpected body %v", body)
	}
}
