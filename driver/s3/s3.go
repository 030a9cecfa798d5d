// Package s3 resolves s3://bucket/key URIs.
//
// Import it for its side effect:
//
//	import _ "github.com/gobeaver/datafy/driver/s3"
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gobeaver/datafy"
)

// API is the subset of *s3.Client the fetcher uses
type API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Fetcher reads objects from S3 or an S3-compatible store
type Fetcher struct {
	client API
}

// New creates a fetcher using client
func New(client API) *Fetcher {
	return &Fetcher{client: client}
}

// Probe implements datafy.Fetcher with HeadObject
func (f *Fetcher) Probe(ctx context.Context, u *url.URL) (*datafy.Metadata, error) {
	bucket, key, err := parseURI(u)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapError("probe", u, err)
	}

	meta := &datafy.Metadata{
		ContentType:   aws.ToString(resp.ContentType),
		ContentLength: -1,
	}
	if resp.ContentLength != nil {
		meta.ContentLength = *resp.ContentLength
	}
	return meta, nil
}

// Fetch implements datafy.Fetcher with GetObject
func (f *Fetcher) Fetch(ctx context.Context, u *url.URL) (*datafy.Response, []byte, error) {
	bucket, key, err := parseURI(u)
	if err != nil {
		return nil, nil, err
	}

	resp, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, nil, wrapError("fetch", u, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, wrapError("fetch", u, err)
	}

	header := http.Header{}
	if resp.ETag != nil {
		header.Set("ETag", *resp.ETag)
	}
	if resp.LastModified != nil {
		header.Set("Last-Modified", resp.LastModified.UTC().Format(http.TimeFormat))
	}
	for k, v := range resp.Metadata {
		header.Set("X-Amz-Meta-"+k, v)
	}

	out := &datafy.Response{
		URL:           u.String(),
		StatusCode:    http.StatusOK,
		ContentType:   aws.ToString(resp.ContentType),
		ContentLength: -1,
		Header:        header,
	}
	if resp.ContentLength != nil {
		out.ContentLength = *resp.ContentLength
	}
	return out, data, nil
}

// parseURI splits s3://bucket/key
func parseURI(u *url.URL) (bucket, key string, err error) {
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: expected s3://bucket/key, got %q", datafy.ErrInvalidURI, u.String())
	}
	return bucket, key, nil
}

func wrapError(op string, u *url.URL, err error) error {
	te := &datafy.TransportError{Op: op, URI: u.String(), Err: err}
	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		te.StatusCode = re.HTTPStatusCode()
	}
	return te
}
