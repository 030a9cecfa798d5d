// Package filevalidator checks archives before datafy expands them to disk.
//
// [ArchiveValidator] reads only the ZIP central directory and rejects
// archives that would be unsafe to extract: too many members, too large once
// decompressed, suspicious compression ratios (zip bombs), or member paths
// that escape the extraction directory (zip slip).
//
//	v := filevalidator.DefaultArchiveValidator()
//	if err := v.ValidateContent(bytes.NewReader(data), int64(len(data))); err != nil {
//	    // reject
//	}
//
// Failures are [*ValidationError] values; use [IsValidationError] or
// [IsErrorOfType] to inspect them.
package filevalidator
