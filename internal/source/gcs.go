package source

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

func (o *Opener) openGCS(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := parseGCSPath(uri)
	if err != nil {
		return nil, err
	}
	if o.opts.GCSKeyFile == "" {
		return nil, fmt.Errorf("gcs key file is required for %q", uri)
	}
	o.mu.Lock()
	if o.gcs == nil {
		o.gcs, err = storage.NewClient(ctx, option.WithAuthCredentialsFile(option.ServiceAccount, o.opts.GCSKeyFile))
		if err != nil {
			err = fmt.Errorf("create GCS client: %w", err)
		}
	}
	client := o.gcs
	o.mu.Unlock()
	if err != nil {
		return nil, err
	}

	r, err := client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", uri, err)
	}
	return r, nil
}

// parseGCSPath extracts bucket and object from a "gs://bucket/path" URI.
func parseGCSPath(path string) (bucket, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("parse GCS path %q: %w", path, err)
	}
	if u.Scheme != "gs" {
		return "", "", fmt.Errorf("expected gs:// scheme, got %q in %q", u.Scheme, path)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("empty key in GCS path %q", path)
	}
	return bucket, key, nil
}
