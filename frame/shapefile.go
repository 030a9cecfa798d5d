package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	shpFileCode   = 9994
	shpHeaderSize = 100
)

// ErrNotShapefile is returned for main files without a valid shapefile header.
var ErrNotShapefile = errors.New("not a shapefile")

// ReadShapefile decodes a shapefile from disk. Attributes are read from the
// .dbf sidecar next to path when present and become feature properties.
// Sidecars are matched case-insensitively, so STATIONS.SHP finds STATIONS.DBF.
func ReadShapefile(path string) (*Features, error) {
	shpFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile: %w", err)
	}
	if err := checkShpHeader(shpFile); err != nil {
		shpFile.Close()
		return nil, err
	}

	var table io.ReadCloser = newEmptyTable()
	if dbfPath, ok := sidecar(path, ".dbf"); ok {
		f, err := os.Open(dbfPath)
		if err != nil {
			shpFile.Close()
			return nil, fmt.Errorf("open attribute table: %w", err)
		}
		table = f
	}

	r := shp.SequentialReaderFromExt(shpFile, table)
	defer r.Close()

	fields := r.Fields()
	fc := geojson.NewFeatureCollection()
	for r.Next() {
		_, shape := r.Shape()
		f := geojson.NewFeature(shapeGeometry(shape))
		for k, field := range fields {
			f.Properties[field.String()] = strings.Trim(r.Attribute(k), "\x00 ")
		}
		fc.Append(f)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile: %w", err)
	}
	return &Features{Collection: fc}, nil
}

// checkShpHeader verifies the fixed 100 byte header starts with the
// shapefile file code.
func checkShpHeader(f *os.File) error {
	var header [shpHeaderSize]byte
	if _, err := f.ReadAt(header[:], 0); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: shorter than its %d byte header", ErrNotShapefile, shpHeaderSize)
		}
		return fmt.Errorf("read shapefile header: %w", err)
	}
	if code := binary.BigEndian.Uint32(header[:4]); code != shpFileCode {
		return fmt.Errorf("%w: file code %d", ErrNotShapefile, code)
	}
	return nil
}

// sidecar finds the file next to path with the same base name and extension
// ext, ignoring case. An exact match wins.
func sidecar(path, ext string) (string, bool) {
	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	exact := filepath.Join(dir, base+ext)
	if _, err := os.Stat(exact); err == nil {
		return exact, true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), base+ext) {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}

// emptyTable stands in for a missing .dbf: a header declaring no fields,
// followed by blank one-byte records for as many shapes as are read.
type emptyTable struct {
	header *bytes.Reader
}

func newEmptyTable() *emptyTable {
	header := make([]byte, 33)
	header[0] = 0x03
	binary.LittleEndian.PutUint16(header[8:10], 33) // header length
	binary.LittleEndian.PutUint16(header[10:12], 1) // record length
	header[32] = 0x0d
	return &emptyTable{header: bytes.NewReader(header)}
}

func (t *emptyTable) Read(p []byte) (int, error) {
	if t.header.Len() > 0 {
		return t.header.Read(p)
	}
	for i := range p {
		p[i] = ' '
	}
	return len(p), nil
}

func (t *emptyTable) Close() error { return nil }

// shapeGeometry converts a shape to an orb geometry. Z and M values are
// dropped. Unsupported shape types yield a nil geometry.
func shapeGeometry(shape shp.Shape) orb.Geometry {
	switch s := shape.(type) {
	case *shp.Point:
		return orb.Point{s.X, s.Y}
	case *shp.PointZ:
		return orb.Point{s.X, s.Y}
	case *shp.PointM:
		return orb.Point{s.X, s.Y}
	case *shp.MultiPoint:
		return orb.MultiPoint(toPoints(s.Points))
	case *shp.PolyLine:
		return lineGeometry(s.Parts, s.Points)
	case *shp.PolyLineZ:
		return lineGeometry(s.Parts, s.Points)
	case *shp.Polygon:
		return polygonGeometry(s.Parts, s.Points)
	case *shp.PolygonZ:
		return polygonGeometry(s.Parts, s.Points)
	default:
		return nil
	}
}

func toPoints(pts []shp.Point) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[i] = orb.Point{p.X, p.Y}
	}
	return out
}

// splitParts cuts the flat point list at the part offsets.
func splitParts(parts []int32, pts []shp.Point) [][]orb.Point {
	out := make([][]orb.Point, 0, len(parts))
	for i, start := range parts {
		end := int32(len(pts))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || int(end) > len(pts) {
			continue
		}
		out = append(out, toPoints(pts[start:end]))
	}
	return out
}

func lineGeometry(parts []int32, pts []shp.Point) orb.Geometry {
	segments := splitParts(parts, pts)
	if len(segments) == 1 {
		return orb.LineString(segments[0])
	}
	mls := make(orb.MultiLineString, len(segments))
	for i, seg := range segments {
		mls[i] = orb.LineString(seg)
	}
	return mls
}

// polygonGeometry groups rings into polygons. Shapefile outer rings are
// clockwise; counter-clockwise rings are holes of the preceding outer ring.
func polygonGeometry(parts []int32, pts []shp.Point) orb.Geometry {
	var polys orb.MultiPolygon
	for _, seg := range splitParts(parts, pts) {
		ring := orb.Ring(seg)
		if len(polys) == 0 || ring.Orientation() == orb.CW {
			polys = append(polys, orb.Polygon{ring})
			continue
		}
		last := len(polys) - 1
		polys[last] = append(polys[last], ring)
	}

	switch len(polys) {
	case 0:
		return nil
	case 1:
		return polys[0]
	default:
		return polys
	}
}
