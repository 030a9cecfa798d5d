package datafy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gobeaver/datafy/filevalidator"
	slogctx "github.com/veqryn/slog-context"
)

// Resolver turns URIs into datasets. A Resolver is safe for concurrent use;
// each call to Resolve works in its own scratch directory.
type Resolver struct {
	cfg          *Config
	probeTimeout time.Duration
	fetchTimeout time.Duration
	validator    *filevalidator.ArchiveValidator
	logger       *slog.Logger

	mu       sync.Mutex
	fetchers map[string]Fetcher
}

// ResolverOption configures a Resolver at construction
type ResolverOption func(*Resolver)

// WithFetcher uses f for scheme instead of the registered driver
func WithFetcher(scheme string, f Fetcher) ResolverOption {
	return func(r *Resolver) {
		r.fetchers[strings.ToLower(scheme)] = f
	}
}

// WithLogger replaces the logger built from the config
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Config returns the resolver's configuration
func (r *Resolver) Config() *Config {
	return r.cfg
}

// Resolve fetches the resource at uri and decodes it into one item, or into
// one item per member when the resource is a zip archive.
//
// Supported schemes are file plus every registered fetcher (http and https
// always, others through the driver packages).
func (r *Resolver) Resolve(ctx context.Context, uri string, options ...Option) ([]ResolvedItem, error) {
	opts := processOptions(Options{SizeLimit: r.cfg.SizeLimit}, options...)
	sel, err := opts.memberSelector()
	if err != nil {
		return nil, err
	}

	src, err := r.sourceFor(uri)
	if err != nil {
		return nil, err
	}

	ctx = slogctx.NewCtx(ctx, r.logger)
	ctx = slogctx.With(ctx, "uri", src.location())

	start := time.Now()
	items, err := r.resolve(ctx, src, opts, sel)
	if err != nil {
		slogctx.FromCtx(ctx).Debug("resolve failed", "error", err, "duration", time.Since(start))
		return nil, err
	}
	slogctx.FromCtx(ctx).Info("resolved", "items", len(items), "duration", time.Since(start))
	return items, nil
}

// Close releases fetchers that hold connections
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for scheme, f := range r.fetchers {
		if c, ok := f.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s fetcher: %w", scheme, err))
			}
		}
		delete(r.fetchers, scheme)
	}
	return errors.Join(errs...)
}

func (r *Resolver) sourceFor(uri string) (source, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	scheme, err := schemeOf(u)
	if err != nil {
		return nil, err
	}

	if scheme == "file" {
		p, err := parseFileURI(u)
		if err != nil {
			return nil, err
		}
		return &localSource{path: p, member: RootPath}, nil
	}

	f, err := r.fetcher(scheme)
	if err != nil {
		return nil, err
	}
	return &remoteSource{u: u, fetcher: f}, nil
}

// fetcher returns the cached fetcher for scheme, creating it on first use.
func (r *Resolver) fetcher(scheme string) (Fetcher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.fetchers[scheme]; ok {
		return f, nil
	}
	f, err := CreateFetcher(scheme, r.cfg)
	if err != nil {
		return nil, err
	}
	r.fetchers[scheme] = f
	return f, nil
}

// resolve runs the size guard, reads and classifies a top-level source.
func (r *Resolver) resolve(ctx context.Context, src source, opts *Options, sel MemberSelector) ([]ResolvedItem, error) {
	if remote, ok := src.(*remoteSource); ok {
		if err := r.checkSize(ctx, remote, opts.SizeLimit); err != nil {
			return nil, err
		}
	}

	b, err := src.read(ctx, r)
	if err != nil {
		return nil, err
	}

	tag, encoding, err := classifyBlob(src, b, opts)
	if err != nil {
		return nil, err
	}
	slogctx.FromCtx(ctx).Debug("classified", "type", tag, "content_type", b.contentType, "bytes", b.size)

	return r.handle(ctx, src, b, tag, encoding, opts, sel, 0)
}

// handle expands archives and dispatches everything else.
func (r *Resolver) handle(ctx context.Context, src source, b *blob, tag TypeTag, encoding string, opts *Options, sel MemberSelector, depth int) ([]ResolvedItem, error) {
	if IsArchive(tag) {
		return r.expand(ctx, src, b, opts, sel, depth)
	}
	item, err := r.dispatch(src, b, tag, encoding)
	if err != nil {
		return nil, err
	}
	return []ResolvedItem{item}, nil
}

// classifyBlob picks the type tag from the caller's hint or else from the
// declared media type. An explicit encoding overrides a declared charset.
func classifyBlob(src source, b *blob, opts *Options) (TypeTag, string, error) {
	if opts.TypeHint != "" {
		tag, err := TagFromHint(src.location(), opts.TypeHint)
		if err != nil {
			return "", "", err
		}
		return tag, opts.Encoding, nil
	}

	tag, charset, err := Classify(src.location(), b.contentType)
	if err != nil {
		return "", "", err
	}
	if opts.Encoding != "" {
		charset = opts.Encoding
	}
	return tag, charset, nil
}
