// Package gcs resolves gs://bucket/object URIs from Google Cloud Storage.
//
// Import it for its side effect:
//
//	import _ "github.com/gobeaver/datafy/driver/gcs"
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/gobeaver/datafy"
	"google.golang.org/api/googleapi"
)

// Fetcher reads objects from a GCS client
type Fetcher struct {
	client *storage.Client
}

// New creates a fetcher using client
func New(client *storage.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Probe implements datafy.Fetcher using object attributes
func (f *Fetcher) Probe(ctx context.Context, u *url.URL) (*datafy.Metadata, error) {
	bucket, object, err := parseURI(u)
	if err != nil {
		return nil, err
	}

	attrs, err := f.client.Bucket(bucket).Object(object).Attrs(ctx)
	if err != nil {
		return nil, wrapError("probe", u, err)
	}
	return &datafy.Metadata{
		ContentType:   attrs.ContentType,
		ContentLength: attrs.Size,
	}, nil
}

// Fetch implements datafy.Fetcher
func (f *Fetcher) Fetch(ctx context.Context, u *url.URL) (*datafy.Response, []byte, error) {
	bucket, object, err := parseURI(u)
	if err != nil {
		return nil, nil, err
	}

	reader, err := f.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, nil, wrapError("fetch", u, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, wrapError("fetch", u, err)
	}

	header := http.Header{}
	if !reader.Attrs.LastModified.IsZero() {
		header.Set("Last-Modified", reader.Attrs.LastModified.UTC().Format(http.TimeFormat))
	}
	if reader.Attrs.ContentEncoding != "" {
		header.Set("Content-Encoding", reader.Attrs.ContentEncoding)
	}

	return &datafy.Response{
		URL:           u.String(),
		StatusCode:    http.StatusOK,
		ContentType:   reader.Attrs.ContentType,
		ContentLength: reader.Attrs.Size,
		Header:        header,
	}, data, nil
}

// Close closes the underlying client
func (f *Fetcher) Close() error {
	return f.client.Close()
}

// parseURI splits gs://bucket/object
func parseURI(u *url.URL) (bucket, object string, err error) {
	bucket = u.Host
	object = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: expected gs://bucket/object, got %q", datafy.ErrInvalidURI, u.String())
	}
	return bucket, object, nil
}

func wrapError(op string, u *url.URL, err error) error {
	te := &datafy.TransportError{Op: op, URI: u.String(), Err: err}

	var gerr *googleapi.Error
	switch {
	case errors.Is(err, storage.ErrObjectNotExist), errors.Is(err, storage.ErrBucketNotExist):
		te.StatusCode = http.StatusNotFound
	case errors.As(err, &gerr):
		te.StatusCode = gerr.Code
	}
	return te
}
