package datafy

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// blob is the fetched content of a source.
type blob struct {
	// data stays nil for file-backed blobs until load is called.
	data        []byte
	size        int64
	contentType string

	// localPath is set when the bytes also live on disk, which decoders of
	// multi-file formats need.
	localPath string

	response *Response
}

// load reads a file-backed blob into memory.
func (b *blob) load() error {
	if b.data != nil || b.localPath == "" {
		return nil
	}
	data, err := os.ReadFile(b.localPath)
	if err != nil {
		return transportError("read", fileLocation(b.localPath), err)
	}
	b.data = data
	return nil
}

// checksum digests the blob. File-backed content that was never loaded is
// streamed from disk.
func (b *blob) checksum() (string, error) {
	if b.data != nil || b.localPath == "" {
		return Checksum(b.data), nil
	}
	f, err := os.Open(b.localPath)
	if err != nil {
		return "", transportError("read", fileLocation(b.localPath), err)
	}
	defer f.Close()

	sum, err := CalculateChecksum(f)
	if err != nil {
		return "", transportError("read", fileLocation(b.localPath), err)
	}
	return sum, nil
}

// source is something the resolver can read bytes from: a remote resource
// reached through a Fetcher, or a file on local disk.
type source interface {
	// location describes the source in errors and logs.
	location() string

	// sourcePath is the ResolvedItem.SourcePath label for items read from
	// this source.
	sourcePath() string

	// read returns the content and its declared media type.
	read(ctx context.Context, r *Resolver) (*blob, error)
}

type remoteSource struct {
	u       *url.URL
	fetcher Fetcher
}

func (s *remoteSource) location() string   { return s.u.String() }
func (s *remoteSource) sourcePath() string { return RootPath }

func (s *remoteSource) read(ctx context.Context, r *Resolver) (*blob, error) {
	ctx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	resp, data, err := s.fetcher.Fetch(ctx, s.u)
	if err != nil {
		return nil, transportError("fetch", s.location(), err)
	}
	return &blob{data: data, size: int64(len(data)), contentType: resp.ContentType, response: resp}, nil
}

type localSource struct {
	path string

	// member is the archive member path, RootPath for a top-level file.
	member string

	// response is inherited from the archive the file was extracted from.
	response *Response
}

func (s *localSource) location() string   { return fileLocation(s.path) }
func (s *localSource) sourcePath() string { return s.member }

func (s *localSource) read(ctx context.Context, _ *Resolver) (*blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportError("read", s.location(), err)
	}
	fi, err := os.Stat(s.path)
	if err != nil {
		return nil, transportError("read", s.location(), err)
	}
	if fi.IsDir() {
		return nil, transportError("read", s.location(), fmt.Errorf("%s is a directory", s.path))
	}
	return &blob{
		size:        fi.Size(),
		contentType: ContentTypeForPath(s.path),
		localPath:   s.path,
		response:    s.response,
	}, nil
}

func fileLocation(path string) string { return "file://" + filepath.ToSlash(path) }

// transportError wraps err unless a fetcher already returned a TransportError.
func transportError(op, uri string, err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, URI: uri, Err: err}
}

// parseFileURI returns the local path a file URI points at. Besides
// file:///abs/path it accepts file://localhost/abs/path, and relative
// forms file://./rel, file://../rel and file:rel.
func parseFileURI(u *url.URL) (string, error) {
	var p string
	switch {
	case u.Opaque != "":
		p = u.Opaque
	case u.Host == "" || u.Host == "localhost":
		p = u.Path
	case u.Host == "." || u.Host == "..":
		p = u.Host + u.Path
	default:
		return "", fmt.Errorf("%w: file uri with remote host %q", ErrInvalidURI, u.Host)
	}
	if p == "" {
		return "", fmt.Errorf("%w: empty file path", ErrInvalidURI)
	}
	return filepath.FromSlash(p), nil
}

// memberSourcePath joins an archive's own source path with a member path.
func memberSourcePath(parent, member string) string {
	if parent == "" || parent == RootPath {
		return member
	}
	return path.Join(parent, member)
}

// schemeOf returns the lowercased scheme of a URI or an error when missing.
func schemeOf(u *url.URL) (string, error) {
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		return "", fmt.Errorf("%w: missing scheme in %q", ErrInvalidURI, u.String())
	}
	return scheme, nil
}
