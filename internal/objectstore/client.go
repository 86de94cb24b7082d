// Package objectstore downloads artifacts from S3-compatible object storage
// such as DigitalOcean Spaces.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kiranshivaraju/racetime/internal/config"
)

// Sentinel errors for object storage failures.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrAccessDenied   = errors.New("object storage access denied")
)

// permanentCodes are S3 error codes that retrying cannot fix.
var permanentCodes = map[string]error{
	"NoSuchKey":             ErrObjectNotFound,
	"NoSuchBucket":          ErrObjectNotFound,
	"AccessDenied":          ErrAccessDenied,
	"InvalidAccessKeyId":    ErrAccessDenied,
	"SignatureDoesNotMatch": ErrAccessDenied,
}

// Client wraps a minio client with bounded retries.
type Client struct {
	mc         *minio.Client
	maxRetries int
	initial    time.Duration
}

// NewClient builds a client from the model storage config. The endpoint scheme
// decides whether TLS is used.
func NewClient(cfg config.ModelConfig) (*Client, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("endpoint %q has no host", cfg.Endpoint)
	}

	mc, err := minio.New(u.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: u.Scheme == "https",
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}

	retries := cfg.FetchRetries
	if retries < 0 {
		retries = 0
	}
	return &Client{mc: mc, maxRetries: retries, initial: 500 * time.Millisecond}, nil
}

// Download copies bucket/key to path, retrying transient failures with
// exponential backoff. Missing objects and auth failures are not retried.
func (c *Client) Download(ctx context.Context, bucket, key, path string) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initial
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 2 * time.Minute

	attempt := 0
	operation := func() error {
		attempt++
		err := c.mc.FGetObject(ctx, bucket, key, path, minio.GetObjectOptions{})
		if err == nil {
			return nil
		}
		if perm := classify(err); perm != nil {
			return backoff.Permanent(perm)
		}
		slog.Warn("object download failed, will retry", "bucket", bucket, "key", key, "attempt", attempt, "error", err)
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx))
	if err != nil {
		return fmt.Errorf("download %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Ping checks that bucket exists and is reachable.
func (c *Client) Ping(ctx context.Context, bucket string) error {
	ok, err := c.mc.BucketExists(ctx, bucket)
	if err != nil {
		if perm := classify(err); perm != nil {
			return perm
		}
		return err
	}
	if !ok {
		return fmt.Errorf("%w: bucket %q", ErrObjectNotFound, bucket)
	}
	return nil
}

// classify returns a wrapped sentinel for permanent failures and nil otherwise.
func classify(err error) error {
	resp := minio.ToErrorResponse(err)
	if sentinel, ok := permanentCodes[resp.Code]; ok {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	return nil
}
