package frame

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Kind identifies the shape of a decoded payload
type Kind int

const (
	KindTable Kind = iota + 1
	KindFeatures
	KindRaw
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindFeatures:
		return "features"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Frame is a decoded payload.
type Frame interface {
	Kind() Kind
}

// Table is tabular data: a header row and the records below it.
// Records are kept as read and may be shorter or longer than Columns.
type Table struct {
	// Name is the sheet name for spreadsheet sources.
	Name    string
	Columns []string
	Rows    [][]string
}

// Kind implements Frame
func (t *Table) Kind() Kind { return KindTable }

// Len returns the number of records
func (t *Table) Len() int { return len(t.Rows) }

// Column returns the values of the named column, with "" for records too
// short to have it.
func (t *Table) Column(name string) ([]string, bool) {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values, true
}

// Features is geospatial data.
type Features struct {
	Collection *geojson.FeatureCollection
}

// Kind implements Frame
func (f *Features) Kind() Kind { return KindFeatures }

// Len returns the number of features
func (f *Features) Len() int {
	if f.Collection == nil {
		return 0
	}
	return len(f.Collection.Features)
}

// Bound returns the bounding box of all feature geometries
func (f *Features) Bound() orb.Bound {
	var (
		b     orb.Bound
		found bool
	)
	if f.Collection == nil {
		return b
	}
	for _, feat := range f.Collection.Features {
		if feat.Geometry == nil {
			continue
		}
		if !found {
			b = feat.Geometry.Bound()
			found = true
			continue
		}
		b = b.Union(feat.Geometry.Bound())
	}
	return b
}

// Raw is a structured value decoded without interpretation.
type Raw struct {
	Value any
}

// Kind implements Frame
func (r *Raw) Kind() Kind { return KindRaw }
