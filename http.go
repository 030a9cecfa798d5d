package datafy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

func init() {
	factory := func(cfg *Config) (Fetcher, error) {
		return NewHTTPFetcher(http.DefaultClient, cfg.UserAgent), nil
	}
	RegisterFetcher("http", factory)
	RegisterFetcher("https", factory)
}

// HTTPFetcher fetches http and https resources. Redirects and TLS are left
// to the underlying client.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher using client
func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client, userAgent: userAgent}
}

// Probe issues a HEAD request
func (f *HTTPFetcher) Probe(ctx context.Context, u *url.URL) (*Metadata, error) {
	resp, err := f.do(ctx, http.MethodHead, u)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: "probe", URI: u.String(), StatusCode: resp.StatusCode}
	}

	return &Metadata{
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
	}, nil
}

// Fetch issues a GET request and reads the whole body
func (f *HTTPFetcher) Fetch(ctx context.Context, u *url.URL) (*Response, []byte, error) {
	resp, err := f.do(ctx, http.MethodGet, u)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &TransportError{Op: "fetch", URI: u.String(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		URL:           resp.Request.URL.String(),
		StatusCode:    resp.StatusCode,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Header:        resp.Header.Clone(),
	}, body, nil
}

func (f *HTTPFetcher) do(ctx context.Context, method string, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	return f.client.Do(req)
}
