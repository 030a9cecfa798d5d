package datafy

import "fmt"

// Option represents a per-resolution option
type Option func(*Options)

// Options contains all possible options for a single Resolve call
type Options struct {
	// SizeLimit is the advisory upper bound in bytes for network sources.
	// Zero or negative disables the size guard.
	SizeLimit int64

	// TypeHint overrides classification. Either a type tag ("csv") or a
	// media type ("text/csv").
	TypeHint string

	// Encoding is the character encoding of the stream. It overrides any
	// charset declared by the transport.
	Encoding string

	// Members restricts which non-archive archive members are resolved.
	// Patterns are globs matched against the member's source path; "*" does
	// not cross "/", "**" does. Empty means every member.
	Members []string

	// Selector further restricts archive members. It is combined with
	// Members when both are set.
	Selector MemberSelector
}

// WithSizeLimit sets the size guard limit in bytes
func WithSizeLimit(limit int64) Option {
	return func(o *Options) {
		o.SizeLimit = limit
	}
}

// WithTypeHint skips metadata classification and uses hint instead
func WithTypeHint(hint string) Option {
	return func(o *Options) {
		o.TypeHint = hint
	}
}

// WithEncoding sets the character encoding used by text decoders
func WithEncoding(encoding string) Option {
	return func(o *Options) {
		o.Encoding = encoding
	}
}

// WithMembers limits archive expansion to members matching any pattern
func WithMembers(patterns ...string) Option {
	return func(o *Options) {
		o.Members = append(o.Members, patterns...)
	}
}

// WithSelector filters archive members with sel
func WithSelector(sel MemberSelector) Option {
	return func(o *Options) {
		o.Selector = sel
	}
}

// memberSelector compiles Members and Selector into one selector, nil when
// neither is set.
func (o *Options) memberSelector() (MemberSelector, error) {
	var globs []MemberSelector
	for _, p := range o.Members {
		g, err := CompileGlob(p)
		if err != nil {
			return nil, fmt.Errorf("%w: member pattern %q: %v", ErrInvalidOption, p, err)
		}
		globs = append(globs, g)
	}

	switch {
	case len(globs) == 0:
		return o.Selector, nil
	case o.Selector == nil:
		return Or(globs...), nil
	default:
		return And(Or(globs...), o.Selector), nil
	}
}

func processOptions(defaults Options, options ...Option) *Options {
	opts := defaults
	for _, option := range options {
		option(&opts)
	}
	return &opts
}
