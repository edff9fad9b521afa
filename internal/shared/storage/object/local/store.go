package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-renderer/internal/shared/storage/object"
)

// RoutePrefix is where the API serves locally stored objects.
const RoutePrefix = "/files"

var ErrInvalidKey = errors.New("invalid storage key")

// Store implements ObjectStore on the local filesystem. Objects are public
// through the /files route registered by Handler.
type Store struct {
	baseDir string
	baseURL string
}

// New creates a local object store rooted at baseDir whose objects resolve
// under publicBaseURL.
func New(baseDir, publicBaseURL string) *Store {
	return &Store{
		baseDir: baseDir,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *Store) Put(ctx context.Context, dir, name string, r io.Reader, opts object.PutOptions) (object.Object, error) {
	key, clean, err := object.UniqueKey(dir, name)
	if err != nil {
		return object.Object{}, err
	}
	if opts.DownloadName == "" {
		opts.DownloadName = clean
	}
	return s.PutKey(ctx, key, r, opts)
}

func (s *Store) PutKey(ctx context.Context, key string, r io.Reader, opts object.PutOptions) (object.Object, error) {
	if err := ctx.Err(); err != nil {
		return object.Object{}, err
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return object.Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return object.Object{}, fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return object.Object{}, fmt.Errorf("create temp: %w", err)
	}
	written, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmp.Name())
		return object.Object{}, fmt.Errorf("write body: %w", errors.Join(copyErr, closeErr))
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		_ = os.Remove(tmp.Name())
		return object.Object{}, fmt.Errorf("rename: %w", err)
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = contentTypeFor(key)
	}
	name := opts.DownloadName
	if name == "" {
		name = path.Base(key)
	}
	objURL := s.URL(key)
	return object.Object{
		Key:         key,
		URL:         objURL,
		DownloadURL: objURL + "?download=1&name=" + url.QueryEscape(name),
		SizeBytes:   written,
		ContentType: contentType,
	}, nil
}

// URL returns the public address of key.
func (s *Store) URL(key string) string {
	return s.baseURL + RoutePrefix + "/" + strings.TrimLeft(key, "/")
}

// Handler serves GET /files/*key. With ?download=1 the response carries an
// attachment disposition.
func (s *Store) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimLeft(c.Param("key"), "/")
		fullPath, err := s.resolve(key)
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		info, err := os.Stat(fullPath)
		if err != nil || info.IsDir() {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Header("Content-Type", contentTypeFor(key))
		if c.Query("download") == "1" {
			name := c.Query("name")
			if name == "" {
				name = path.Base(key)
			}
			c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		}
		c.File(fullPath)
	}
}

func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.baseDir, clean), nil
}

func contentTypeFor(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

var _ object.ObjectStore = (*Store)(nil)
