// Package source reads datasets into tables: CSV from local files or object
// storage (S3, GCS, Azure Blob), and a synthetic product catalog.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"medallion-demo/internal/frame"
)

// S3Options configure the S3-compatible object store.
type S3Options struct {
	KeyID    string
	Secret   string
	Endpoint string // host, or a full URL
	Region   string
}

// Options configure the remote object stores. A store without options
// rejects URIs of its scheme.
type Options struct {
	S3               *S3Options
	GCSKeyFile       string
	AzureAccountName string
	AzureAccountKey  string
}

// Opener opens dataset URIs. Cloud clients are created on first use.
type Opener struct {
	opts   Options
	logger *slog.Logger

	mu    sync.Mutex
	s3    *s3.Client
	gcs   *storage.Client
	azure *azblob.Client
}

// NewOpener creates an opener for the configured stores.
func NewOpener(opts Options, logger *slog.Logger) *Opener {
	return &Opener{opts: opts, logger: logger.With("component", "source")}
}

// Open returns a reader for uri. Supported forms are a local path or
// file:// URL, s3://bucket/key, gs://bucket/object, and az://container/blob
// (also abfss:// and https://<account>.blob.core.windows.net/...).
func (o *Opener) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	scheme := schemeOf(uri)
	o.logger.Debug("opening dataset", "uri", uri, "scheme", scheme)
	switch scheme {
	case "", "file":
		return os.Open(localPath(uri))
	case "s3":
		return o.openS3(ctx, uri)
	case "gs":
		return o.openGCS(ctx, uri)
	case "az", "abfss", "https":
		return o.openAzure(ctx, uri)
	}
	return nil, fmt.Errorf("unsupported dataset scheme %q in %q", scheme, uri)
}

// Load opens uri and decodes it as CSV.
func (o *Opener) Load(ctx context.Context, uri string) (*frame.Table, error) {
	rc, err := o.Open(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uri, err)
	}
	defer rc.Close() //nolint:errcheck
	t, err := DecodeCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", uri, err)
	}
	return t, nil
}

// Close releases the cloud clients that were created.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gcs != nil {
		return o.gcs.Close()
	}
	return nil
}

// DatasetName derives a table name from a URI: the base name without its
// extension, lower-cased, with characters outside [a-z0-9_] replaced by '_'.
func DatasetName(uri string) string {
	p := uri
	if u, err := url.Parse(uri); err == nil && u.Scheme != "" {
		p = u.Path
	}
	base := path.Base(strings.ReplaceAll(p, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return '_'
	}, base)
	if name == "" || name == "." || name == "_" {
		return "dataset"
	}
	return name
}

func schemeOf(uri string) string {
	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return ""
	}
	return strings.ToLower(scheme)
}

func localPath(uri string) string {
	if rest, ok := strings.CutPrefix(uri, "file://"); ok {
		return rest
	}
	return uri
}
