package object

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"resume-renderer/internal/shared/util"
)

// Object describes a stored object and where clients can fetch it.
type Object struct {
	Key         string
	URL         string
	DownloadURL string
	SizeBytes   int64
	ContentType string
}

// PutOptions controls how an object is written.
type PutOptions struct {
	ContentType string
	// DownloadName is the file name offered when the object is downloaded
	// as an attachment. Defaults to the base of the key.
	DownloadName string
}

// ObjectStore is the contract for writing publicly readable objects.
type ObjectStore interface {
	// Put stores r under dir with a random prefix on the sanitized name,
	// so two writes with the same name never share a key.
	Put(ctx context.Context, dir, name string, r io.Reader, opts PutOptions) (Object, error)
	// PutKey stores r at exactly key, replacing any previous object.
	PutKey(ctx context.Context, key string, r io.Reader, opts PutOptions) (Object, error)
}

// UniqueKey builds the collision-free key used by Put implementations.
func UniqueKey(dir, name string) (string, string, error) {
	clean, err := util.SanitizeFileName(name)
	if err != nil {
		return "", "", fmt.Errorf("sanitize file name: %w", err)
	}
	return path.Join(dir, RandomID()+"_"+clean), clean, nil
}

// RandomID returns a random version 4 UUID.
func RandomID() string {
	return uuid.NewString()
}
