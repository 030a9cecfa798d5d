package datafy

import (
	"errors"
	"fmt"
)

// Resolution errors
var (
	ErrResourceTooLarge      = errors.New("resource too large")
	ErrUnclassifiableContent = errors.New("unclassifiable content")
	ErrTransport             = errors.New("transport failure")
	ErrDecode                = errors.New("decode failure")
	ErrUnsupportedScheme     = errors.New("unsupported uri scheme")
	ErrUnsafeArchive         = errors.New("unsafe archive")
	ErrNotSupported          = errors.New("operation not supported")
	ErrInvalidURI            = errors.New("invalid uri")
	ErrInvalidOption         = errors.New("invalid option")
)

// SizeError is returned by the size guard when a probe advertises a length
// above the configured limit.
type SizeError struct {
	URI    string
	Length int64
	Limit  int64
}

// Error implements the error interface
func (e *SizeError) Error() string {
	return fmt.Sprintf("%s: advertised %d bytes exceeds limit of %d bytes", e.URI, e.Length, e.Limit)
}

// Unwrap returns ErrResourceTooLarge
func (e *SizeError) Unwrap() error {
	return ErrResourceTooLarge
}

// ClassifyError records a media type that could not be mapped to a type tag.
type ClassifyError struct {
	URI       string
	MediaType string
}

// Error implements the error interface
func (e *ClassifyError) Error() string {
	return fmt.Sprintf("couldn't determine meaning of content type %q associated with %s", e.MediaType, e.URI)
}

// Unwrap returns ErrUnclassifiableContent
func (e *ClassifyError) Unwrap() error {
	return ErrUnclassifiableContent
}

// TransportError records a failed probe or fetch.
// StatusCode is zero when no response was received.
type TransportError struct {
	Op         string
	URI        string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d", e.Op, e.URI, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URI, e.Err)
}

// Unwrap returns the underlying errors
func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

// DecodeError records a decoder rejecting the bytes of a classified stream.
type DecodeError struct {
	Tag        TypeTag
	SourcePath string
	Err        error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s (%s): %v", e.SourcePath, e.Tag, e.Err)
}

// Unwrap returns the underlying errors
func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// PathError records an error and the operation and file path that caused it
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *PathError) Unwrap() error {
	return e.Err
}

// IsTooLarge reports whether err was raised by the size guard
func IsTooLarge(err error) bool {
	return errors.Is(err, ErrResourceTooLarge)
}

// IsUnclassifiable reports whether err means no type tag could be determined
func IsUnclassifiable(err error) bool {
	return errors.Is(err, ErrUnclassifiableContent)
}

// IsTransport reports whether err is a probe or fetch failure
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsDecode reports whether err was raised by a decoder
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}
