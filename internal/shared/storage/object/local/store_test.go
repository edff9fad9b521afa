package local

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-renderer/internal/shared/storage/object"
)

func TestPutSameNameYieldsDistinctKeys(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080/")
	ctx := context.Background()
	opts := object.PutOptions{ContentType: "application/pdf"}

	a, err := store.Put(ctx, "renders", "curriculo.pdf", bytes.NewReader([]byte("%PDF-a")), opts)
	if err != nil {
		t.Fatalf("put a: %v", err)
	}
	b, err := store.Put(ctx, "renders", "curriculo.pdf", bytes.NewReader([]byte("%PDF-b")), opts)
	if err != nil {
		t.Fatalf("put b: %v", err)
	}
	if a.Key == b.Key || a.URL == b.URL {
		t.Fatalf("expected distinct keys, got %q and %q", a.Key, b.Key)
	}
	if !strings.HasPrefix(a.Key, "renders/") || !strings.HasSuffix(a.Key, "_curriculo.pdf") {
		t.Fatalf("unexpected key layout: %q", a.Key)
	}
	if !strings.HasPrefix(a.URL, "http://localhost:8080/files/renders/") {
		t.Fatalf("unexpected url: %q", a.URL)
	}
	if a.SizeBytes != 6 || a.ContentType != "application/pdf" {
		t.Fatalf("unexpected metadata: %+v", a)
	}

	for _, obj := range []object.Object{a, b} {
		fullPath, err := store.resolve(obj.Key)
		if err != nil {
			t.Fatalf("resolve %s: %v", obj.Key, err)
		}
		data, err := os.ReadFile(fullPath)
		if err != nil {
			t.Fatalf("read %s: %v", obj.Key, err)
		}
		if !bytes.HasPrefix(data, []byte("%PDF-")) {
			t.Fatalf("unexpected content for %s: %q", obj.Key, data)
		}
	}
}

func TestPutKeyRejectsTraversal(t *testing.T) {
	store := New(t.TempDir(), "http://localhost:8080")
	_, err := store.PutKey(context.Background(), "../escape.pdf", strings.NewReader("x"), object.PutOptions{})
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestHandlerServesDownloadDisposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := New(t.TempDir(), "http://localhost:8080")
	obj, err := store.Put(context.Background(), "renders", "cv.pdf", strings.NewReader("%PDF-1.7"), object.PutOptions{ContentType: "application/pdf"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	router := gin.New()
	router.GET(RoutePrefix+"/*key", store.Handler())

	req := httptest.NewRequest(http.MethodGet, strings.TrimPrefix(obj.DownloadURL, "http://localhost:8080"), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Disposition"); got != `attachment; filename=cv.pdf` {
		t.Fatalf("unexpected disposition: %q", got)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type: %q", got)
	}
	if resp.Body.String() != "%PDF-1.7" {
		t.Fatalf("unexpected body: %q", resp.Body.String())
	}

	missing := httptest.NewRecorder()
	router.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, RoutePrefix+"/renders/nope.pdf", nil))
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.Code)
	}
}
