package datafy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		contentType string
		tag         TypeTag
		charset     string
	}{
		{"text/csv", TagCSV, ""},
		{"text/csv; charset=ISO-8859-1", TagCSV, "ISO-8859-1"},
		{"TEXT/CSV", TagCSV, ""},
		{"application/geo+json", TagGeoJSON, ""},
		{"application/vnd.geo+json", TagGeoJSON, ""},
		{"application/json; charset=utf-8", TagJSON, "utf-8"},
		{"application/zip", TagZip, ""},
		{"application/x-zip-compressed", TagZip, ""},
		{"application/vnd.ms-excel", TagXLS, ""},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", TagXLSX, ""},
		{"application/vnd.google-earth.kml+xml", TagKML, ""},
		{"application/vnd.google-earth.kmz", TagKMZ, ""},
		{"text/xml", TagXML, ""},
		{"application/cbor", TagCBOR, ""},
		{"application/yaml", TagYAML, ""},
		// malformed parameters fall back to the bare type
		{"text/csv; charset", TagCSV, ""},
		// mime package fallback
		{"image/png", "png", ""},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			tag, charset, err := Classify("https://example.org/x", tt.contentType)
			require.NoError(t, err)
			assert.Equal(t, tt.tag, tag)
			assert.Equal(t, tt.charset, charset)
		})
	}
}

func TestClassify_Unclassifiable(t *testing.T) {
	for _, contentType := range []string{"", "application/x-datafy-unknown", ";;"} {
		_, _, err := Classify("https://example.org/x", contentType)
		require.Error(t, err, contentType)
		assert.True(t, IsUnclassifiable(err))
		assert.Contains(t, err.Error(), "https://example.org/x")
	}
}

func TestTagFromHint(t *testing.T) {
	tests := []struct {
		hint    string
		want    TypeTag
		wantErr bool
	}{
		{hint: "csv", want: TagCSV},
		{hint: " .GeoJSON ", want: TagGeoJSON},
		{hint: "text/csv", want: TagCSV},
		{hint: "application/vnd.geo+json", want: TagGeoJSON},
		{hint: "gpx", want: "gpx"},
		{hint: "application/x-datafy-unknown", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			tag, err := TagFromHint("u", tt.hint)
			if tt.wantErr {
				assert.True(t, IsUnclassifiable(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tag)
		})
	}
}

func TestContentTypeForPath(t *testing.T) {
	assert.Equal(t, MIMETypeTextCSV, ContentTypeForPath("/data/a.CSV"))
	assert.Equal(t, MIMETypeGeoJSON, ContentTypeForPath("rivers.geojson"))
	assert.Equal(t, MIMETypeApplicationZip, ContentTypeForPath("dir/bundle.zip"))
	assert.Equal(t, MIMETypeApplicationYAML, ContentTypeForPath("meta.yml"))
	assert.Equal(t, "", ContentTypeForPath("LICENSE"))
}

func TestExtensionTag(t *testing.T) {
	assert.Equal(t, TagShp, ExtensionTag("data/Roads.SHP"))
	assert.Equal(t, TagPrj, ExtensionTag("roads.prj"))
	assert.Equal(t, TypeTag(""), ExtensionTag("README"))
	assert.True(t, IsArchive(ExtensionTag("nested.zip")))
	assert.False(t, IsArchive(TagKMZ))
}

func TestHasDecoder(t *testing.T) {
	for _, tag := range []TypeTag{TagCSV, TagGeoJSON, TagJSON, TagXLS, TagXLSX, TagShp, TagCBOR, TagYAML} {
		assert.True(t, HasDecoder(tag), tag)
	}
	for _, tag := range []TypeTag{TagShx, TagDbf, TagPrj, TagKML, TagZip, "txt", ""} {
		assert.False(t, HasDecoder(tag), tag)
	}
}
