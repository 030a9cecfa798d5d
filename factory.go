package datafy

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// Metadata is what a probe learns about a remote resource without
// transferring its body.
type Metadata struct {
	ContentType string

	// ContentLength is the advertised size in bytes, -1 when unknown.
	ContentLength int64
}

// Fetcher retrieves remote resources for one or more URI schemes.
type Fetcher interface {
	// Probe returns resource metadata without transferring the body.
	Probe(ctx context.Context, u *url.URL) (*Metadata, error)

	// Fetch returns the full body and the transport response describing it.
	Fetch(ctx context.Context, u *url.URL) (*Response, []byte, error)
}

// FetcherFactory is a function that creates a Fetcher from a config
type FetcherFactory func(cfg *Config) (Fetcher, error)

var (
	fetcherFactories = make(map[string]FetcherFactory)
	factoryMutex     sync.RWMutex
)

// RegisterFetcher registers a fetcher factory for a URI scheme.
// Drivers call this from init.
func RegisterFetcher(scheme string, factory FetcherFactory) {
	factoryMutex.Lock()
	defer factoryMutex.Unlock()
	fetcherFactories[strings.ToLower(scheme)] = factory
}

// Schemes returns the registered remote schemes, sorted
func Schemes() []string {
	factoryMutex.RLock()
	defer factoryMutex.RUnlock()

	schemes := make([]string, 0, len(fetcherFactories))
	for s := range fetcherFactories {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

// CreateFetcher creates a fetcher instance for scheme from config
func CreateFetcher(scheme string, cfg *Config) (Fetcher, error) {
	factoryMutex.RLock()
	factory, exists := fetcherFactories[strings.ToLower(scheme)]
	factoryMutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}

	return factory(cfg)
}
