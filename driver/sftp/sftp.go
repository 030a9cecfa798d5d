// Package sftp resolves sftp://[user@]host[:port]/path URIs.
//
// Import it for its side effect:
//
//	import _ "github.com/gobeaver/datafy/driver/sftp"
//
// One SSH session is kept per user and address and reused across
// resolutions until the fetcher is closed.
package sftp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gobeaver/datafy"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Config holds SFTP connection configuration
type Config struct {
	Username       string
	Password       string
	PrivateKey     []byte // PEM encoded private key
	KnownHostsFile string // empty skips host key verification
	DialTimeout    time.Duration
}

// ClientFunc opens an SFTP client for user at addr (host:port)
type ClientFunc func(ctx context.Context, user, addr string) (*sftp.Client, error)

// Fetcher reads files over SFTP
type Fetcher struct {
	mu       sync.Mutex
	config   Config
	open     ClientFunc
	sessions map[string]*session
}

type session struct {
	client *sftp.Client
	conn   io.Closer // underlying SSH connection, nil when open supplied none
}

// FetcherOption is a function that configures Fetcher
type FetcherOption func(*Fetcher)

// WithClientFunc replaces SSH dialing, e.g. to reach a server over a tunnel
func WithClientFunc(fn ClientFunc) FetcherOption {
	return func(f *Fetcher) {
		f.open = fn
	}
}

// New creates a fetcher
func New(cfg Config, options ...FetcherOption) *Fetcher {
	f := &Fetcher{
		config:   cfg,
		sessions: make(map[string]*session),
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// Probe implements datafy.Fetcher with a remote stat
func (f *Fetcher) Probe(ctx context.Context, u *url.URL) (*datafy.Metadata, error) {
	key, s, err := f.session(ctx, u)
	if err != nil {
		return nil, err
	}

	info, err := s.client.Stat(u.Path)
	if err != nil {
		f.evictOnConnError(key, s, err)
		return nil, f.wrapError("probe", u, err)
	}
	if info.IsDir() {
		return nil, &datafy.TransportError{Op: "probe", URI: u.String(), Err: fmt.Errorf("%s is a directory", u.Path)}
	}
	return &datafy.Metadata{
		ContentType:   datafy.ContentTypeForPath(u.Path),
		ContentLength: info.Size(),
	}, nil
}

// Fetch implements datafy.Fetcher
func (f *Fetcher) Fetch(ctx context.Context, u *url.URL) (*datafy.Response, []byte, error) {
	key, s, err := f.session(ctx, u)
	if err != nil {
		return nil, nil, err
	}

	file, err := s.client.Open(u.Path)
	if err != nil {
		f.evictOnConnError(key, s, err)
		return nil, nil, f.wrapError("fetch", u, err)
	}
	defer file.Close()

	data, err := readAll(ctx, file)
	if err != nil {
		f.evictOnConnError(key, s, err)
		return nil, nil, f.wrapError("fetch", u, err)
	}

	header := http.Header{}
	if info, err := file.Stat(); err == nil {
		header.Set("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))
	}

	return &datafy.Response{
		URL:           u.String(),
		StatusCode:    http.StatusOK,
		ContentType:   datafy.ContentTypeForPath(u.Path),
		ContentLength: int64(len(data)),
		Header:        header,
	}, data, nil
}

// Close closes every open session
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs []error
	for key, s := range f.sessions {
		errs = append(errs, s.close())
		delete(f.sessions, key)
	}
	return errors.Join(errs...)
}

func (s *session) close() error {
	err := s.client.Close()
	if s.conn != nil {
		if cerr := s.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// session returns the cached session for the URI's user and address,
// connecting on first use, along with its cache key.
func (f *Fetcher) session(ctx context.Context, u *url.URL) (string, *session, error) {
	if u.Host == "" || u.Path == "" {
		return "", nil, fmt.Errorf("%w: expected sftp://host/path, got %q", datafy.ErrInvalidURI, u.String())
	}

	user := f.config.Username
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), "22")
	}
	key := user + "@" + addr

	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.sessions[key]; ok {
		return key, s, nil
	}

	var (
		s   *session
		err error
	)
	if f.open != nil {
		var client *sftp.Client
		client, err = f.open(ctx, user, addr)
		s = &session{client: client}
	} else {
		s, err = f.dial(ctx, user, addr)
	}
	if err != nil {
		return "", nil, &datafy.TransportError{Op: "connect", URI: u.String(), Err: err}
	}
	f.sessions[key] = s
	return key, s, nil
}

// evictOnConnError drops s from the cache when err means its connection is
// gone, so the next call reconnects. Errors reported by the server leave
// the session in place.
func (f *Fetcher) evictOnConnError(key string, s *session, err error) {
	if !isConnError(err) {
		return
	}

	f.mu.Lock()
	if f.sessions[key] == s {
		delete(f.sessions, key)
	}
	f.mu.Unlock()

	go func() { _ = s.close() }()
}

func isConnError(err error) bool {
	for _, target := range []error{
		sftp.ErrSSHFxConnectionLost,
		sftp.ErrSSHFxNoConnection,
		io.EOF,
		io.ErrUnexpectedEOF,
		io.ErrClosedPipe,
		net.ErrClosed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// dial establishes SSH and SFTP connections
func (f *Fetcher) dial(ctx context.Context, user, addr string) (*session, error) {
	sshConfig, err := f.sshConfig(user)
	if err != nil {
		return nil, err
	}

	dialer := &net.Dialer{Timeout: f.config.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SSH: %w", err)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake: %w", err)
	}
	sshConn := ssh.NewClient(c, chans, reqs)

	client, err := sftp.NewClient(sshConn)
	if err != nil {
		sshConn.Close()
		return nil, fmt.Errorf("failed to create SFTP client: %w", err)
	}
	return &session{client: client, conn: sshConn}, nil
}

func (f *Fetcher) sshConfig(user string) (*ssh.ClientConfig, error) {
	sshConfig := &ssh.ClientConfig{
		User:    user,
		Timeout: f.config.DialTimeout,
	}

	if f.config.KnownHostsFile != "" {
		callback, err := knownhosts.New(f.config.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts: %w", err)
		}
		sshConfig.HostKeyCallback = callback
	} else {
		sshConfig.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // opt-in via SFTPKnownHosts
	}

	if len(f.config.PrivateKey) > 0 {
		signer, err := ssh.ParsePrivateKey(f.config.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		sshConfig.Auth = append(sshConfig.Auth, ssh.PublicKeys(signer))
	}
	if f.config.Password != "" {
		sshConfig.Auth = append(sshConfig.Auth, ssh.Password(f.config.Password))
	}
	if len(sshConfig.Auth) == 0 {
		return nil, errors.New("no authentication method provided")
	}
	return sshConfig, nil
}

func (f *Fetcher) wrapError(op string, u *url.URL, err error) error {
	te := &datafy.TransportError{Op: op, URI: u.String(), Err: err}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		te.StatusCode = http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		te.StatusCode = http.StatusForbidden
	}
	return te
}

// readAll reads r, giving up when ctx is done
func readAll(ctx context.Context, r io.Reader) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(r)
		done <- result{data, err}
	}()

	select {
	case res := <-done:
		return res.data, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
