package datafy

import (
	"net/http"

	"github.com/gobeaver/datafy/frame"
)

// TypeTag is the short canonical code identifying a data format.
// Tags outside the constants below are kept verbatim (usually a bare file
// extension) and resolve to cataloged items without a payload.
type TypeTag string

// Known type tags
const (
	TagCSV     TypeTag = "csv"
	TagGeoJSON TypeTag = "geojson"
	TagJSON    TypeTag = "json"
	TagXLS     TypeTag = "xls"
	TagXLSX    TypeTag = "xlsx"
	TagShp     TypeTag = "shp"
	TagShx     TypeTag = "shx"
	TagDbf     TypeTag = "dbf"
	TagPrj     TypeTag = "prj"
	TagZip     TypeTag = "zip"
	TagKML     TypeTag = "kml"
	TagKMZ     TypeTag = "kmz"
	TagXML     TypeTag = "xml"
	TagCBOR    TypeTag = "cbor"
	TagYAML    TypeTag = "yaml"
)

// String returns the tag as a plain string
func (t TypeTag) String() string {
	return string(t)
}

// RootPath is the SourcePath of an item that is the whole fetched resource.
const RootPath = "."

// ResolvedItem is one dataset produced by a resolution.
type ResolvedItem struct {
	// Payload is the decoded data, or nil when no decoder handles TypeTag.
	Payload frame.Frame

	// SourcePath is RootPath for the resource itself, or the member path
	// inside the archive the item was extracted from.
	SourcePath string

	// TypeTag is the classified format of the item's bytes.
	TypeTag TypeTag

	// Encoding is the character encoding hint used, if any.
	Encoding string

	// Checksum is the hex xxhash digest of the item's bytes. Empty when
	// checksums are disabled.
	Checksum string

	// Response describes the transport response the bytes came from. Items
	// extracted from an archive share the archive's response. Nil for local
	// files.
	Response *Response
}

// Parsed reports whether a decoder produced a payload for the item
func (i ResolvedItem) Parsed() bool {
	return i.Payload != nil
}

// Response captures transport metadata for diagnostics.
type Response struct {
	// URL is the resource location the body was read from.
	URL string

	// StatusCode is the HTTP status, or 200 for sources without one.
	StatusCode int

	// ContentType is the declared media type, verbatim.
	ContentType string

	// ContentLength is the declared length in bytes, -1 when unknown.
	ContentLength int64

	// Header holds the raw response headers where the transport has them.
	Header http.Header
}
