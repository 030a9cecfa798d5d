package datafy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gobeaver/beaver-kit/config"
	"github.com/gobeaver/datafy/filevalidator"
	"github.com/gobeaver/datafy/internal/logging"
)

// Global instance
var (
	defaultResolver *Resolver
	defaultOnce     sync.Once
	defaultErr      error
)

// Builder provides a way to create Resolver instances with custom prefixes
type Builder struct {
	prefix string
}

// WithPrefix creates a new Builder with the specified prefix
func WithPrefix(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Init initializes the global Resolver instance using the builder's prefix
func (b *Builder) Init() error {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return err
	}
	return Init(cfg)
}

// New creates a new Resolver instance using the builder's prefix
func (b *Builder) New(opts ...ResolverOption) (*Resolver, error) {
	cfg := &Config{}
	if err := config.Load(cfg, config.LoadOptions{Prefix: b.prefix}); err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Init initializes the global resolver
func Init(configs ...*Config) error {
	defaultOnce.Do(func() {
		var cfg *Config
		if len(configs) > 0 {
			cfg = configs[0]
		} else {
			cfg, defaultErr = GetConfig()
			if defaultErr != nil {
				return
			}
		}

		defaultResolver, defaultErr = New(cfg)
	})

	return defaultErr
}

// New creates a resolver with given config
func New(cfg *Config, opts ...ResolverOption) (*Resolver, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	probeTimeout, fetchTimeout, err := validateConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	r := &Resolver{
		cfg:          cfg,
		probeTimeout: probeTimeout,
		fetchTimeout: fetchTimeout,
		validator:    createValidator(cfg),
		logger:       logging.New(cfg.LogLevel, cfg.LogFormat),
		fetchers:     make(map[string]Fetcher),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// validateConfig checks configuration validity and parses the timeouts
func validateConfig(cfg *Config) (probe, fetch time.Duration, err error) {
	probe, err = time.ParseDuration(cfg.ProbeTimeout)
	if err != nil || probe <= 0 {
		return 0, 0, fmt.Errorf("probe timeout %q must be a positive duration", cfg.ProbeTimeout)
	}
	fetch, err = time.ParseDuration(cfg.FetchTimeout)
	if err != nil || fetch <= 0 {
		return 0, 0, fmt.Errorf("fetch timeout %q must be a positive duration", cfg.FetchTimeout)
	}

	switch {
	case cfg.SizeLimit < 0:
		return 0, 0, errors.New("size limit must not be negative")
	case cfg.MaxArchiveMembers < 0, cfg.MaxArchiveSize < 0, cfg.MaxCompressionRatio < 0:
		return 0, 0, errors.New("archive limits must not be negative")
	case cfg.MaxArchiveDepth < 0:
		return 0, 0, errors.New("archive depth must not be negative")
	}
	return probe, fetch, nil
}

// createValidator creates the archive validator from config
func createValidator(cfg *Config) *filevalidator.ArchiveValidator {
	if cfg.DisableArchiveValidate {
		return nil
	}
	return &filevalidator.ArchiveValidator{
		MaxCompressionRatio: float64(cfg.MaxCompressionRatio),
		MaxFiles:            cfg.MaxArchiveMembers,
		MaxUncompressedSize: cfg.MaxArchiveSize,
	}
}

// Resolve resolves uri with the global resolver
func Resolve(ctx context.Context, uri string, options ...Option) ([]ResolvedItem, error) {
	r, err := Default()
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, uri, options...)
}

// Default returns the global instance, initializing if needed with error handling
func Default() (*Resolver, error) {
	if defaultResolver == nil {
		if err := Init(); err != nil {
			return nil, err
		}
	}
	return defaultResolver, nil
}

// NewFromEnv creates instance from environment variables (convenience constructor)
func NewFromEnv(opts ...ResolverOption) (*Resolver, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Reset clears the global instance (for testing)
func Reset() {
	if defaultResolver != nil {
		_ = defaultResolver.Close()
	}
	defaultResolver = nil
	defaultOnce = sync.Once{}
	defaultErr = nil
}
