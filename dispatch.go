package datafy

import (
	"fmt"

	"github.com/gobeaver/datafy/frame"
)

type decodeFunc func(b *blob, encoding string) (frame.Frame, error)

// decoders is the dispatch table. Tags absent here (zip aside, which the
// resolver expands) produce cataloged items without a payload: shapefile
// sidecars, KML/KMZ, XML, and any unrecognized extension.
var decoders = map[TypeTag]decodeFunc{
	TagCSV: func(b *blob, encoding string) (frame.Frame, error) {
		return frame.ReadCSV(b.data, encoding)
	},
	TagGeoJSON: func(b *blob, _ string) (frame.Frame, error) {
		return frame.ReadGeoJSON(b.data)
	},
	TagJSON: func(b *blob, _ string) (frame.Frame, error) {
		return frame.ReadJSON(b.data)
	},
	TagXLS: func(b *blob, encoding string) (frame.Frame, error) {
		return frame.ReadXLS(b.data, encoding)
	},
	TagXLSX: func(b *blob, _ string) (frame.Frame, error) {
		return frame.ReadXLSX(b.data)
	},
	TagShp: func(b *blob, _ string) (frame.Frame, error) {
		if b.localPath == "" {
			return nil, fmt.Errorf("%w: shapefiles can only be read from local files", ErrNotSupported)
		}
		return frame.ReadShapefile(b.localPath)
	},
	TagCBOR: func(b *blob, _ string) (frame.Frame, error) {
		return frame.ReadCBOR(b.data)
	},
	TagYAML: func(b *blob, _ string) (frame.Frame, error) {
		return frame.ReadYAML(b.data)
	},
}

// HasDecoder reports whether items tagged tag get a payload
func HasDecoder(tag TypeTag) bool {
	_, ok := decoders[tag]
	return ok
}

// dispatch decodes b into exactly one item.
func (r *Resolver) dispatch(src source, b *blob, tag TypeTag, encoding string) (ResolvedItem, error) {
	item := ResolvedItem{
		SourcePath: src.sourcePath(),
		TypeTag:    tag,
		Encoding:   encoding,
		Response:   b.response,
	}
	decode, ok := decoders[tag]
	if ok {
		if err := b.load(); err != nil {
			return ResolvedItem{}, err
		}
	}
	if r.cfg.Checksums {
		sum, err := b.checksum()
		if err != nil {
			return ResolvedItem{}, err
		}
		item.Checksum = sum
	}
	if !ok {
		return item, nil
	}

	payload, err := decode(b, encoding)
	if err != nil {
		return ResolvedItem{}, &DecodeError{Tag: tag, SourcePath: src.sourcePath(), Err: err}
	}
	item.Payload = payload
	return item, nil
}
