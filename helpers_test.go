package datafy

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/require"
)

type zipEntry struct {
	name string
	data []byte
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for _, e := range entries {
		f, err := w.Create(e.name)
		require.NoError(t, err)
		_, err = f.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// shapefileEntries writes a two-point shapefile with its sidecars and
// returns the four files as zip entries.
func shapefileEntries(t *testing.T, dir string) []zipEntry {
	t.Helper()
	base := filepath.Join(t.TempDir(), "stations")

	w, err := shp.Create(base+".shp", shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NAME", 25)}))
	for i, p := range []shp.Point{{X: 10, Y: 60}, {X: 12, Y: 40}} {
		n := w.Write(&p)
		require.NoError(t, w.WriteAttribute(int(n), 0, []string{"north", "south"}[i]))
	}
	w.Close()
	// The writer names the attribute table <base>dbf.
	require.NoError(t, os.Rename(base+"dbf", base+".dbf"))

	prj := `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["Degree",0.0174532925199433]]`
	require.NoError(t, os.WriteFile(base+".prj", []byte(prj), 0o600))

	var entries []zipEntry
	for _, ext := range []string{".shp", ".shx", ".dbf", ".prj"} {
		data, err := os.ReadFile(base + ext)
		require.NoError(t, err)
		entries = append(entries, zipEntry{name: dir + "stations" + ext, data: data})
	}
	return entries
}

// resource is one file served by testServer
type resource struct {
	contentType string
	body        []byte
	status      int
}

type testServer struct {
	*httptest.Server
	heads atomic.Int32
	gets  atomic.Int32
}

// newTestServer serves resources by path. HEAD answers carry the body
// length; GET answers carry the body.
func newTestServer(t *testing.T, resources map[string]resource) *testServer {
	t.Helper()
	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := resources[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodHead:
			ts.heads.Add(1)
		case http.MethodGet:
			ts.gets.Add(1)
		}
		if res.contentType != "" {
			w.Header().Set("Content-Type", res.contentType)
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(res.body)))
		status := res.status
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if r.Method == http.MethodGet {
			_, _ = w.Write(res.body)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

// fakeFetcher serves one body and counts calls
type fakeFetcher struct {
	meta        *Metadata
	probeErr    error
	contentType string
	body        []byte

	probes  int
	fetches int
}

func (f *fakeFetcher) Probe(context.Context, *url.URL) (*Metadata, error) {
	f.probes++
	return f.meta, f.probeErr
}

func (f *fakeFetcher) Fetch(_ context.Context, u *url.URL) (*Response, []byte, error) {
	f.fetches++
	return &Response{
		URL:           u.String(),
		StatusCode:    http.StatusOK,
		ContentType:   f.contentType,
		ContentLength: int64(len(f.body)),
	}, f.body, nil
}

// newTestResolver returns a resolver with a private scratch directory.
func newTestResolver(t *testing.T, opts ...ResolverOption) (*Resolver, string) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ScratchDir = t.TempDir()
	cfg.LogLevel = "error"

	r, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, cfg.ScratchDir
}

func fileURI(path string) string {
	return "file://" + filepath.ToSlash(path)
}

func requireEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "scratch directory not cleaned up")
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
