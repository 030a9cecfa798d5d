package datafy

import (
	"mime"
	"path"
	"strings"
)

// Common MIME types
const (
	MIMETypeTextCSV         = "text/csv"
	MIMETypeApplicationJSON = "application/json"
	MIMETypeApplicationXML  = "application/xml"
	MIMETypeTextXML         = "text/xml"
	MIMETypeGeoJSON         = "application/geo+json"
	MIMETypeGeoJSONObsolete = "application/vnd.geo+json"
	MIMETypeKML             = "application/vnd.google-earth.kml+xml"
	MIMETypeKMZ             = "application/vnd.google-earth.kmz"
	MIMETypeApplicationZip  = "application/zip"
	MIMETypeZipCompressed   = "application/x-zip-compressed"
	MIMETypeExcel           = "application/vnd.ms-excel"
	MIMETypeSpreadsheetML   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMETypeShapefile       = "application/vnd.shp"
	MIMETypeShapeIndex      = "application/vnd.shx"
	MIMETypeDBase           = "application/vnd.dbf"
	MIMETypeApplicationCBOR = "application/cbor"
	MIMETypeApplicationYAML = "application/yaml"
	MIMETypeTextYAML        = "text/yaml"
)

// typeRules maps the media types open data portals actually send to type
// tags. It takes priority over the generic mime package table, which does not
// know several of these (e.g. the obsolete vnd.geo+json still served by
// Socrata) or maps them to unhelpful extensions.
var typeRules = map[string]TypeTag{
	MIMETypeTextCSV:         TagCSV,
	MIMETypeGeoJSON:         TagGeoJSON,
	MIMETypeGeoJSONObsolete: TagGeoJSON,
	MIMETypeKMZ:             TagKMZ,
	MIMETypeKML:             TagKML,
	MIMETypeApplicationZip:  TagZip,
	MIMETypeZipCompressed:   TagZip,
	MIMETypeApplicationJSON: TagJSON,
	MIMETypeApplicationXML:  TagXML,
	MIMETypeTextXML:         TagXML,
	MIMETypeExcel:           TagXLS,
	MIMETypeSpreadsheetML:   TagXLSX,
	MIMETypeShapefile:       TagShp,
	MIMETypeShapeIndex:      TagShx,
	MIMETypeDBase:           TagDbf,
	MIMETypeApplicationCBOR: TagCBOR,
	MIMETypeApplicationYAML: TagYAML,
	MIMETypeTextYAML:        TagYAML,
}

// Extension to MIME type mapping for local files, which carry no declared
// media type of their own.
var extensionToMIME = map[string]string{
	".csv":     MIMETypeTextCSV,
	".geojson": MIMETypeGeoJSON,
	".json":    MIMETypeApplicationJSON,
	".xml":     MIMETypeApplicationXML,
	".kml":     MIMETypeKML,
	".kmz":     MIMETypeKMZ,
	".zip":     MIMETypeApplicationZip,
	".xls":     MIMETypeExcel,
	".xlsx":    MIMETypeSpreadsheetML,
	".shp":     MIMETypeShapefile,
	".shx":     MIMETypeShapeIndex,
	".dbf":     MIMETypeDBase,
	".cbor":    MIMETypeApplicationCBOR,
	".yaml":    MIMETypeApplicationYAML,
	".yml":     MIMETypeApplicationYAML,
}

// LookupTypeRule returns the curated type tag for a bare media type.
func LookupTypeRule(mediaType string) (TypeTag, bool) {
	tag, ok := typeRules[strings.ToLower(strings.TrimSpace(mediaType))]
	return tag, ok
}

// ParseContentType splits a Content-Type value into its media type and
// charset parameter. Malformed parameter lists are tolerated: the token
// before the first ';' is used as the media type.
func ParseContentType(contentType string) (mediaType, charset string) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
		return strings.ToLower(strings.TrimSpace(mediaType)), ""
	}
	return mediaType, params["charset"]
}

// TagForMediaType maps a bare media type to a type tag, first through the
// curated table and then through the mime package's extension lookup.
func TagForMediaType(mediaType string) (TypeTag, bool) {
	if mediaType == "" {
		return "", false
	}
	if tag, ok := LookupTypeRule(mediaType); ok {
		return tag, true
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err == nil && len(exts) > 0 {
		if ext := strings.TrimPrefix(exts[0], "."); ext != "" {
			return TypeTag(ext), true
		}
	}
	return "", false
}

// Classify determines the type tag and encoding of a stream declared with
// contentType. uri is only used to describe failures.
func Classify(uri, contentType string) (TypeTag, string, error) {
	mediaType, charset := ParseContentType(contentType)
	tag, ok := TagForMediaType(mediaType)
	if !ok {
		return "", "", &ClassifyError{URI: uri, MediaType: contentType}
	}
	return tag, charset, nil
}

// TagFromHint normalizes a caller type hint. Hints may be a tag ("csv",
// ".csv") or a media type ("text/csv").
func TagFromHint(uri, hint string) (TypeTag, error) {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if strings.Contains(hint, "/") {
		mediaType, _ := ParseContentType(hint)
		tag, ok := TagForMediaType(mediaType)
		if !ok {
			return "", &ClassifyError{URI: uri, MediaType: hint}
		}
		return tag, nil
	}
	return TypeTag(strings.TrimPrefix(hint, ".")), nil
}

// ContentTypeForPath returns the media type implied by a file name's
// extension, or "" when neither the local table nor the mime package knows it.
func ContentTypeForPath(filePath string) string {
	ext := strings.ToLower(path.Ext(filePath))
	if ext == "" {
		return ""
	}
	if contentType, ok := extensionToMIME[ext]; ok {
		return contentType
	}
	return mime.TypeByExtension(ext)
}

// ExtensionTag returns the lowercased extension of name without its dot.
func ExtensionTag(name string) TypeTag {
	return TypeTag(strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")))
}

// IsArchive reports whether tag denotes a container the resolver expands
func IsArchive(tag TypeTag) bool {
	return tag == TagZip
}
