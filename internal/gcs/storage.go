// Package gcs reads and writes statement files in Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// ErrTooLarge is returned when an object exceeds the configured size limit.
var ErrTooLarge = errors.New("object exceeds size limit")

// uploadTimeout bounds a single upload.
const uploadTimeout = 2 * time.Minute

// Fetcher downloads object bytes. It lets pipeline and job code run without
// a storage backend in tests.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// Client is the Cloud Storage implementation of Fetcher.
// A storage client is created per call, so Client has no state to close.
type Client struct {
	opts     []option.ClientOption
	maxBytes int64
}

// NewClient uses Application Default Credentials unless credentialsFile is set.
// maxBytes <= 0 disables the size limit.
func NewClient(credentialsFile string, maxBytes int64) *Client {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	return &Client{opts: opts, maxBytes: maxBytes}
}

// Fetch downloads the object at uri.
func (c *Client) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx, c.opts...)
	if err != nil {
		return nil, fmt.Errorf("Fetch: creating storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if c.maxBytes > 0 {
		if rc.Attrs.Size > c.maxBytes {
			return nil, fmt.Errorf("Fetch: %s is %d bytes: %w", uri, rc.Attrs.Size, ErrTooLarge)
		}
		r = io.LimitReader(rc, c.maxBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	if c.maxBytes > 0 && int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("Fetch: %s: %w", uri, ErrTooLarge)
	}

	return data, nil
}

// Upload writes r to the object at uri.
func (c *Client) Upload(ctx context.Context, uri string, r io.Reader) error {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return err
	}

	client, err := storage.NewClient(ctx, c.opts...)
	if err != nil {
		return fmt.Errorf("Upload: creating storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("Upload: copy to GCS writer: %w", err)
	}

	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("Upload: finalize upload: %w", err)
	}
	return nil
}

// Fetch downloads uri with a one-off client.
func Fetch(ctx context.Context, uri string, opts ...option.ClientOption) ([]byte, error) {
	c := &Client{opts: opts}
	return c.Fetch(ctx, uri)
}
