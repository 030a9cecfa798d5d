package frame

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// ReadGeoJSON decodes GeoJSON into Features. A single Feature or a bare
// geometry object is wrapped into a one-element collection.
func ReadGeoJSON(data []byte) (*Features, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson: %w", err)
		}
		return &Features{Collection: fc}, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson: %w", err)
		}
		return &Features{Collection: geojson.NewFeatureCollection().Append(f)}, nil
	case "":
		return nil, fmt.Errorf("decode geojson: missing type member")
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("decode geojson: %w", err)
		}
		f := geojson.NewFeature(g.Geometry())
		return &Features{Collection: geojson.NewFeatureCollection().Append(f)}, nil
	}
}
