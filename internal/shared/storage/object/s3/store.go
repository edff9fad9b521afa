package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resume-renderer/internal/shared/storage/object"
)

// Options configures the S3 store.
type Options struct {
	Region string
	Bucket string
	Prefix string
	// PublicBaseURL replaces the virtual-hosted bucket URL in public links,
	// e.g. a CDN in front of the bucket.
	PublicBaseURL string
	DownloadTTL   time.Duration
}

// Store implements ObjectStore using Amazon S3. Objects are written with a
// public-read ACL.
type Store struct {
	client      *s3.Client
	presign     *s3.PresignClient
	bucket      string
	region      string
	prefix      string
	publicBase  string
	downloadTTL time.Duration
}

// New creates an S3-backed object store from the default AWS credential chain.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if opts.Region == "" {
		opts.Region = cfg.Region
	}
	return NewWithClient(s3.NewFromConfig(cfg), opts), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *s3.Client, opts Options) *Store {
	ttl := opts.DownloadTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{
		client:      client,
		presign:     s3.NewPresignClient(client),
		bucket:      opts.Bucket,
		region:      opts.Region,
		prefix:      normalizePrefix(opts.Prefix),
		publicBase:  strings.TrimRight(strings.TrimSpace(opts.PublicBaseURL), "/"),
		downloadTTL: ttl,
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
	data, err := io.ReadAll(r)
	if err != nil {
		return object.Object{}, fmt.Errorf("read body: %w", err)
	}
	contentType := opts.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectKey := applyPrefix(s.prefix, key)

	input := &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(objectKey),
		Body:                 bytes.NewReader(data),
		ContentLength:        aws.Int64(int64(len(data))),
		ContentType:          aws.String(contentType),
		ACL:                  s3types.ObjectCannedACLPublicRead,
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return object.Object{}, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}

	name := opts.DownloadName
	if name == "" {
		name = path.Base(key)
	}
	downloadURL, err := s.downloadURL(ctx, objectKey, name)
	if err != nil {
		return object.Object{}, err
	}
	return object.Object{
		Key:         key,
		URL:         s.publicURL(objectKey),
		DownloadURL: downloadURL,
		SizeBytes:   int64(len(data)),
		ContentType: contentType,
	}, nil
}

func (s *Store) publicURL(objectKey string) string {
	if s.publicBase != "" {
		return s.publicBase + "/" + escapeKey(objectKey)
	}
	if s.region == "" || s.region == "us-east-1" {
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, escapeKey(objectKey))
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escapeKey(objectKey))
}

func (s *Store) downloadURL(ctx context.Context, objectKey, name string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(objectKey),
		ResponseContentDisposition: aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": name})),
	}, s3.WithPresignExpires(s.downloadTTL))
	if err != nil {
		return "", fmt.Errorf("s3 presign get bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return req.URL, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}

var _ object.ObjectStore = (*Store)(nil)
