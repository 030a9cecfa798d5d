// Package frame holds the payload types produced by datafy decoders and the
// decoders themselves.
//
// Three payload shapes exist:
//
//   - [Table]: delimited or spreadsheet data, a header row plus string cells.
//   - [Features]: geospatial data as a GeoJSON feature collection
//     (github.com/paulmach/orb/geojson), produced from GeoJSON and shapefiles.
//   - [Raw]: a structured value decoded without interpretation (JSON, CBOR, YAML).
//
// Decoders take bytes plus an optional character encoding label, except
// [ReadShapefile] which needs the .shp path so go-shp can find its sidecars.
package frame
