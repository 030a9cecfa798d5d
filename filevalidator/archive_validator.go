package filevalidator

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// Size constants
const (
	KB = int64(1024)
	MB = KB * 1024
	GB = MB * 1024
)

// ArchiveValidator validates ZIP archives for zip bombs and path traversal.
// A zero limit disables that check.
type ArchiveValidator struct {
	// MaxCompressionRatio is the maximum allowed compression ratio
	// (uncompressed/compressed), per member and for the archive as a whole.
	// Zip bombs often have ratios of 1000:1 or higher.
	MaxCompressionRatio float64

	// MaxFiles is the maximum number of entries allowed in the archive.
	MaxFiles int

	// MaxUncompressedSize is the maximum total uncompressed size in bytes.
	MaxUncompressedSize int64
}

// DefaultArchiveValidator creates an archive validator with sensible defaults
func DefaultArchiveValidator() *ArchiveValidator {
	return &ArchiveValidator{
		MaxCompressionRatio: 100.0, // 100:1 compression ratio max
		MaxFiles:            1000,
		MaxUncompressedSize: 1 * GB,
	}
}

// ValidateContent validates the content of an archive file.
// Readers implementing io.ReaderAt (*os.File, *bytes.Reader) are validated
// without being read into memory; other readers are buffered.
func (v *ArchiveValidator) ValidateContent(reader io.Reader, size int64) error {
	if readerAt, ok := reader.(io.ReaderAt); ok {
		return v.validateWithReaderAt(readerAt, size)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return NewValidationError(ErrorTypeContent, "failed to read archive content")
	}
	return v.validateWithReaderAt(bytes.NewReader(data), int64(len(data)))
}

// validateWithReaderAt only reads the central directory
func (v *ArchiveValidator) validateWithReaderAt(reader io.ReaderAt, size int64) error {
	zipReader, err := zip.NewReader(reader, size)
	if errors.Is(err, zip.ErrInsecurePath) {
		return NewValidationError(ErrorTypePath, err.Error())
	}
	if err != nil {
		return NewValidationError(ErrorTypeContent, fmt.Sprintf("cannot open archive: %v", err))
	}

	if v.MaxFiles > 0 && len(zipReader.File) > v.MaxFiles {
		return NewValidationError(ErrorTypeCount,
			fmt.Sprintf("archive contains too many files: %d (max: %d)", len(zipReader.File), v.MaxFiles))
	}

	var totalUncompressedSize uint64
	for _, file := range zipReader.File {
		if IsDangerousPath(file.Name) {
			return NewValidationError(ErrorTypePath,
				fmt.Sprintf("dangerous path detected: %s", file.Name))
		}

		if v.MaxCompressionRatio > 0 && file.CompressedSize64 > 0 {
			ratio := float64(file.UncompressedSize64) / float64(file.CompressedSize64)
			if ratio > v.MaxCompressionRatio {
				return NewValidationError(ErrorTypeRatio,
					fmt.Sprintf("suspicious compression ratio for %s: %.2f:1 (max: %.2f:1)",
						file.Name, ratio, v.MaxCompressionRatio))
			}
		}

		totalUncompressedSize += file.UncompressedSize64
		if v.MaxUncompressedSize > 0 && totalUncompressedSize > uint64(v.MaxUncompressedSize) { //nolint:gosec // MaxUncompressedSize is positive here
			return NewValidationError(ErrorTypeSize,
				fmt.Sprintf("archive would expand to %d bytes (max: %d bytes)",
					totalUncompressedSize, v.MaxUncompressedSize))
		}
	}

	if v.MaxCompressionRatio > 0 && totalUncompressedSize > 0 && size > 0 {
		totalRatio := float64(totalUncompressedSize) / float64(size)
		if totalRatio > v.MaxCompressionRatio {
			return NewValidationError(ErrorTypeRatio,
				fmt.Sprintf("archive has suspicious total compression ratio: %.2f:1", totalRatio))
		}
	}

	return nil
}

// IsDangerousPath reports whether an archive member name would escape the
// directory it is extracted into: absolute paths, drive letters, UNC paths,
// or ".." segments.
func IsDangerousPath(name string) bool {
	if name == "" {
		return true
	}
	slashed := strings.ReplaceAll(name, "\\", "/")

	if strings.HasPrefix(slashed, "/") {
		return true
	}
	// Windows drive letters (C:\, D:/)
	if len(slashed) > 1 && slashed[1] == ':' {
		return true
	}

	cleaned := path.Clean(slashed)
	return cleaned == ".." || strings.HasPrefix(cleaned, "../")
}
