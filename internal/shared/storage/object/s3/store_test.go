package s3

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"resume-renderer/internal/shared/storage/object"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "renders/file.pdf", want: "renders/file.pdf"},
		{name: "simple prefix", prefix: "prod", key: "renders/file.pdf", want: "prod/renders/file.pdf"},
		{name: "prefix trailing slash", prefix: "prod/", key: "renders/file.pdf", want: "prod/renders/file.pdf"},
		{name: "prefix and key slashes", prefix: "/prod/", key: "/renders/file.pdf", want: "prod/renders/file.pdf"},
		{name: "empty key", prefix: "prod", key: "", want: "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func testClient(endpoint string) *s3.Client {
	opts := s3.Options{
		Region:           "sa-east-1",
		Credentials:      credentials.NewStaticCredentialsProvider("AKIDTEST", "secret", ""),
		UsePathStyle:     true,
		RetryMaxAttempts: 1,
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
	}
	return s3.New(opts)
}

func TestPublicURL(t *testing.T) {
	t.Parallel()

	regional := NewWithClient(testClient(""), Options{Bucket: "cvs", Region: "sa-east-1"})
	if got := regional.publicURL("renders/ab_Ana Souza.pdf"); got != "https://cvs.s3.sa-east-1.amazonaws.com/renders/ab_Ana%20Souza.pdf" {
		t.Fatalf("unexpected regional url: %s", got)
	}

	cdn := NewWithClient(testClient(""), Options{Bucket: "cvs", Region: "sa-east-1", PublicBaseURL: "https://cdn.example.com/"})
	if got := cdn.publicURL("renders/x.pdf"); got != "https://cdn.example.com/renders/x.pdf" {
		t.Fatalf("unexpected cdn url: %s", got)
	}
}

func TestPutUploadsPublicObjectAndPresignsDownload(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		acl    string
		ctype  string
		calls  int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		method = r.Method
		path = r.URL.Path
		acl = r.Header.Get("X-Amz-Acl")
		ctype = r.Header.Get("Content-Type")
		mu.Unlock()
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := NewWithClient(testClient(srv.URL), Options{Bucket: "cvs", Region: "sa-east-1", Prefix: "prod/"})
	obj, err := store.Put(context.Background(), "renders", "curriculo.pdf", strings.NewReader("%PDF-1.7"), object.PutOptions{ContentType: "application/pdf"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 || method != http.MethodPut {
		t.Fatalf("expected one PUT, got %d %s", calls, method)
	}
	if !strings.HasPrefix(path, "/cvs/prod/renders/") || !strings.HasSuffix(path, "_curriculo.pdf") {
		t.Fatalf("unexpected object path: %s", path)
	}
	if acl != "public-read" {
		t.Fatalf("expected public-read acl, got %q", acl)
	}
	if ctype != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", ctype)
	}
	if !strings.HasPrefix(obj.Key, "renders/") || obj.SizeBytes != 8 {
		t.Fatalf("unexpected object: %+v", obj)
	}
	if !strings.HasPrefix(obj.URL, "https://cvs.s3.sa-east-1.amazonaws.com/prod/renders/") {
		t.Fatalf("unexpected public url: %s", obj.URL)
	}

	u, err := url.Parse(obj.DownloadURL)
	if err != nil {
		t.Fatalf("parse download url: %v", err)
	}
	q := u.Query()
	if q.Get("X-Amz-Signature") == "" {
		t.Fatalf("expected presigned download url, got %s", obj.DownloadURL)
	}
	if got := q.Get("response-content-disposition"); got != "attachment; filename=curriculo.pdf" {
		t.Fatalf("unexpected disposition: %q", got)
	}
}

func TestPutWrapsUploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
	}))
	defer srv.Close()

	store := NewWithClient(testClient(srv.URL), Options{Bucket: "cvs", Region: "sa-east-1"})
	_, err := store.Put(context.Background(), "renders", "cv.pdf", strings.NewReader("%PDF"), object.PutOptions{ContentType: "application/pdf"})
	if err == nil || !strings.Contains(err.Error(), "s3 put object bucket=cvs") {
		t.Fatalf("expected wrapped put error, got %v", err)
	}
}
