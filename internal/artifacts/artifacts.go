// Package artifacts persists rendered PDFs to object storage under
// collision-free public keys.
package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"resume-renderer/internal/shared/storage/object"
	"resume-renderer/internal/shared/telemetry"
	"resume-renderer/internal/shared/util"
)

const (
	ContentTypePDF = "application/pdf"
	// Dir is the storage directory for rendered documents.
	Dir = "renders"

	defaultName = "document.pdf"
)

// ErrStorage wraps every failure to persist an artifact.
var ErrStorage = errors.New("artifact storage failed")

// Artifact is a stored PDF.
type Artifact struct {
	URL         string `json:"url"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Key         string `json:"key"`
	SizeBytes   int64  `json:"sizeBytes"`
	ContentType string `json:"contentType"`
}

// Client stores render output in an ObjectStore.
type Client struct {
	Objects object.ObjectStore
}

func NewClient(store object.ObjectStore) *Client {
	return &Client{Objects: store}
}

// Store uploads data as a public PDF. suggestedName is sanitized and forced
// to a .pdf extension; a random prefix keeps concurrent writes of the same
// name apart. Nothing is retried.
func (c *Client) Store(ctx context.Context, data []byte, suggestedName string) (Artifact, error) {
	if c.Objects == nil {
		return Artifact{}, fmt.Errorf("%w: no object store configured", ErrStorage)
	}
	if len(data) == 0 {
		return Artifact{}, fmt.Errorf("%w: empty document", ErrStorage)
	}

	name := fileName(suggestedName)

	start := time.Now()
	obj, err := c.Objects.Put(ctx, Dir, name, bytes.NewReader(data), object.PutOptions{
		ContentType: ContentTypePDF,
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	telemetry.Info("artifact.stored", map[string]any{
		"key":         obj.Key,
		"size_bytes":  obj.SizeBytes,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return Artifact{
		URL:         obj.URL,
		DownloadURL: obj.DownloadURL,
		Key:         obj.Key,
		SizeBytes:   obj.SizeBytes,
		ContentType: ContentTypePDF,
	}, nil
}

// fileName returns a safe .pdf name for suggested, falling back to a fixed
// name when nothing usable remains.
func fileName(suggested string) string {
	clean, err := util.SanitizeFileName(suggested)
	if err != nil {
		return defaultName
	}
	name := util.EnsureExt(clean, ".pdf")
	if name == ".pdf" {
		return defaultName
	}
	return name
}
