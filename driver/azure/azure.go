// Package azure resolves azblob://container/blob URIs from Azure Blob Storage.
//
// Import it for its side effect:
//
//	import _ "github.com/gobeaver/datafy/driver/azure"
package azure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/gobeaver/datafy"
)

// Fetcher reads blobs through an azblob client
type Fetcher struct {
	client *azblob.Client
}

// New creates a fetcher using client
func New(client *azblob.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Probe implements datafy.Fetcher using blob properties
func (f *Fetcher) Probe(ctx context.Context, u *url.URL) (*datafy.Metadata, error) {
	container, blobName, err := parseURI(u)
	if err != nil {
		return nil, err
	}

	blobClient := f.client.ServiceClient().NewContainerClient(container).NewBlobClient(blobName)
	props, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		return nil, wrapError("probe", u, err)
	}

	meta := &datafy.Metadata{ContentLength: -1}
	if props.ContentType != nil {
		meta.ContentType = *props.ContentType
	}
	if props.ContentLength != nil {
		meta.ContentLength = *props.ContentLength
	}
	return meta, nil
}

// Fetch implements datafy.Fetcher
func (f *Fetcher) Fetch(ctx context.Context, u *url.URL) (*datafy.Response, []byte, error) {
	container, blobName, err := parseURI(u)
	if err != nil {
		return nil, nil, err
	}

	resp, err := f.client.DownloadStream(ctx, container, blobName, nil)
	if err != nil {
		return nil, nil, wrapError("fetch", u, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, wrapError("fetch", u, err)
	}

	out := &datafy.Response{
		URL:           u.String(),
		StatusCode:    http.StatusOK,
		ContentLength: int64(len(data)),
		Header:        http.Header{},
	}
	if resp.ContentType != nil {
		out.ContentType = *resp.ContentType
	}
	if resp.ETag != nil {
		out.Header.Set("ETag", string(*resp.ETag))
	}
	if resp.LastModified != nil {
		out.Header.Set("Last-Modified", resp.LastModified.UTC().Format(http.TimeFormat))
	}
	return out, data, nil
}

// parseURI splits azblob://container/blob
func parseURI(u *url.URL) (container, blobName string, err error) {
	container = u.Host
	blobName = strings.TrimPrefix(u.Path, "/")
	if container == "" || blobName == "" {
		return "", "", fmt.Errorf("%w: expected azblob://container/blob, got %q", datafy.ErrInvalidURI, u.String())
	}
	return container, blobName, nil
}

func wrapError(op string, u *url.URL, err error) error {
	te := &datafy.TransportError{Op: op, URI: u.String(), Err: err}
	var re *azcore.ResponseError
	if errors.As(err, &re) {
		te.StatusCode = re.StatusCode
	}
	return te
}
