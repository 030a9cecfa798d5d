package frame

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadGeoJSON(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		count int
		bound orb.Bound
	}{
		{
			name: "feature collection",
			data: `{"type":"FeatureCollection","features":[
				{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"name":"a"}},
				{"type":"Feature","geometry":{"type":"Point","coordinates":[3,5]},"properties":{"name":"b"}}
			]}`,
			count: 2,
			bound: orb.Bound{Min: orb.Point{1, 2}, Max: orb.Point{3, 5}},
		},
		{
			name:  "single feature",
			data:  `{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[4,4]]},"properties":{}}`,
			count: 1,
			bound: orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{4, 4}},
		},
		{
			name:  "bare geometry",
			data:  `{"type":"Point","coordinates":[7,8]}`,
			count: 1,
			bound: orb.Bound{Min: orb.Point{7, 8}, Max: orb.Point{7, 8}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			features, err := ReadGeoJSON([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, KindFeatures, features.Kind())
			assert.Equal(t, tt.count, features.Len())
			assert.Equal(t, tt.bound, features.Bound())
		})
	}
}

func TestReadGeoJSON_Errors(t *testing.T) {
	for _, data := range []string{`not json`, `{"features":[]}`, `{"type":"Polygon","coordinates":"x"}`} {
		_, err := ReadGeoJSON([]byte(data))
		assert.Error(t, err, data)
	}
}

func TestFeatures_Empty(t *testing.T) {
	var f Features
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, orb.Bound{}, f.Bound())
}
