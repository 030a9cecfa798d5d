// Package datafy resolves a URI to the datasets behind it.
//
// A resolution runs four stages: an advisory size probe for network sources,
// classification of the declared media type into a [TypeTag], expansion of
// zip archives into their members, and dispatch of each stream to the
// decoder registered for its tag. The result is one [ResolvedItem] per
// dataset: a single item for a plain resource, one per member for an archive.
//
// # Basic Usage
//
//	r, err := datafy.New(datafy.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	items, err := r.Resolve(ctx, "https://example.org/stations.csv",
//	    datafy.WithSizeLimit(50*1024*1024))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	table := items[0].Payload.(*frame.Table)
//
// Items whose tag has no decoder (shapefile sidecars, KML, unknown
// extensions) are returned with a nil Payload so callers can still see what
// an archive contained.
//
// # Type Classification
//
// Classification tries, in order: an explicit [WithTypeHint], the curated
// media type table ([LookupTypeRule]), and the mime package's extension
// lookup. A media type none of these recognize fails with
// [ErrUnclassifiableContent].
//
// # Sources
//
// file and http(s) URIs work out of the box. Cloud and SFTP sources are
// enabled by importing a driver for its side effect:
//
//	import _ "github.com/gobeaver/datafy/driver/s3"    // s3://bucket/key
//	import _ "github.com/gobeaver/datafy/driver/gcs"   // gs://bucket/object
//	import _ "github.com/gobeaver/datafy/driver/azure" // azblob://container/blob
//	import _ "github.com/gobeaver/datafy/driver/sftp"  // sftp://host/path
//
// # Archives
//
// Zip archives are checked by [filevalidator.ArchiveValidator] before
// anything touches disk, extracted into a scratch directory named
// datafy-<uuid>, and each member is resolved with the type implied by its
// extension. Nested archives are expanded recursively up to
// MaxArchiveDepth. Use [WithMembers] or [WithSelector] to pick members:
//
//	items, err := r.Resolve(ctx, uri, datafy.WithMembers("**.csv"))
//
// # Configuration
//
// [GetConfig] reads DATAFY_* variables through beaver-kit/config; [WithPrefix]
// loads a second, independently prefixed configuration.
//
// # Error Handling
//
//	items, err := r.Resolve(ctx, uri)
//	switch {
//	case datafy.IsTooLarge(err):
//	case datafy.IsUnclassifiable(err):
//	case datafy.IsTransport(err):
//	case datafy.IsDecode(err):
//	}
//
// # Command Line
//
// cmd/datafy exposes the resolver to the shell:
//
//	datafy resolve s3://bucket/boundaries.zip --member '**/*.shp' -o yaml
package datafy
