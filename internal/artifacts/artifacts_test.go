package artifacts

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-renderer/internal/shared/storage/object"
	"resume-renderer/internal/shared/storage/object/local"
)

var pdfBytes = []byte("%PDF-1.4\n%%EOF\n")

type failingStore struct{ err error }

func (f failingStore) Put(context.Context, string, string, io.Reader, object.PutOptions) (object.Object, error) {
	return object.Object{}, f.err
}

func (f failingStore) PutKey(context.Context, string, io.Reader, object.PutOptions) (object.Object, error) {
	return object.Object{}, f.err
}

func TestStoreSameNameGetsDistinctKeys(t *testing.T) {
	dir := t.TempDir()
	client := NewClient(local.New(dir, "http://localhost:8080"))

	first, err := client.Store(context.Background(), pdfBytes, "curriculo.pdf")
	if err != nil {
		t.Fatalf("store first: %v", err)
	}
	second, err := client.Store(context.Background(), pdfBytes, "curriculo.pdf")
	if err != nil {
		t.Fatalf("store second: %v", err)
	}

	if first.Key == second.Key || first.URL == second.URL {
		t.Fatalf("expected distinct keys, got %s twice", first.Key)
	}
	for _, a := range []Artifact{first, second} {
		if !strings.HasPrefix(a.Key, Dir+"/") || !strings.HasSuffix(a.Key, "_curriculo.pdf") {
			t.Fatalf("unexpected key %s", a.Key)
		}
		if a.ContentType != ContentTypePDF {
			t.Fatalf("unexpected content type %s", a.ContentType)
		}
		if a.SizeBytes != int64(len(pdfBytes)) {
			t.Fatalf("unexpected size %d", a.SizeBytes)
		}
		got, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(a.Key)))
		if err != nil || string(got) != string(pdfBytes) {
			t.Fatalf("stored bytes mismatch: %v", err)
		}
	}
}

func TestStoreNormalizesName(t *testing.T) {
	client := NewClient(local.New(t.TempDir(), "http://localhost:8080"))

	cases := map[string]string{
		"resume":           "_resume.pdf",
		"Resume.PDF":       "_Resume.PDF",
		"a/b.pdf":          "_a_b.pdf",
		"":                 "_" + defaultName,
		"../../etc/passwd": "_" + defaultName,
	}
	for in, suffix := range cases {
		a, err := client.Store(context.Background(), pdfBytes, in)
		if err != nil {
			t.Fatalf("store %q: %v", in, err)
		}
		if !strings.HasSuffix(a.Key, suffix) {
			t.Fatalf("name %q: expected key ending in %s, got %s", in, suffix, a.Key)
		}
		if !strings.Contains(a.DownloadURL, "download=1") {
			t.Fatalf("expected download url, got %s", a.DownloadURL)
		}
	}
}

func TestStoreFailureIsErrStorage(t *testing.T) {
	cause := errors.New("bucket unreachable")
	client := NewClient(failingStore{err: cause})

	_, err := client.Store(context.Background(), pdfBytes, "x.pdf")
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause preserved, got %v", err)
	}
}

func TestStoreRejectsEmptyDocument(t *testing.T) {
	client := NewClient(local.New(t.TempDir(), "http://localhost:8080"))
	if _, err := client.Store(context.Background(), nil, "x.pdf"); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if _, err := NewClient(nil).Store(context.Background(), pdfBytes, "x.pdf"); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage without store, got %v", err)
	}
}
