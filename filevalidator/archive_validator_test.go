package filevalidator

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"
)

type zipEntry struct {
	name string
	data []byte
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	for _, e := range entries {
		f, err := w.Create(e.name)
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}
		if _, err := f.Write(e.data); err != nil {
			t.Fatalf("write %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestArchiveValidator_ValidateContent(t *testing.T) {
	validator := DefaultArchiveValidator()

	manyFiles := make([]zipEntry, validator.MaxFiles+1)
	for i := range manyFiles {
		manyFiles[i] = zipEntry{name: fmt.Sprintf("file%d.txt", i), data: []byte("test")}
	}

	tests := []struct {
		name     string
		zip      []byte
		wantType ValidationErrorType
		errorMsg string
	}{
		{
			name: "valid small zip",
			zip:  buildZip(t, zipEntry{"test.csv", []byte("a,b\n1,2\n")}),
		},
		{
			name: "nested directories",
			zip: buildZip(t,
				zipEntry{"data/", nil},
				zipEntry{"data/roads.shp", []byte("shape")},
				zipEntry{"data/../data/roads.dbf", []byte("attrs")},
			),
		},
		{
			name:     "too many files",
			zip:      buildZip(t, manyFiles...),
			wantType: ErrorTypeCount,
			errorMsg: "too many files",
		},
		{
			name:     "high compression ratio",
			zip:      buildZip(t, zipEntry{"zeros.bin", make([]byte, 10*MB)}),
			wantType: ErrorTypeRatio,
			errorMsg: "compression ratio",
		},
		{
			name:     "path traversal",
			zip:      buildZip(t, zipEntry{"../../../etc/passwd", []byte("root")}),
			wantType: ErrorTypePath,
		},
		{
			name:     "absolute path",
			zip:      buildZip(t, zipEntry{"/tmp/evil.csv", []byte("x")}),
			wantType: ErrorTypePath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateContent(bytes.NewReader(tt.zip), int64(len(tt.zip)))
			if tt.wantType == "" {
				if err != nil {
					t.Fatalf("ValidateContent() unexpected error: %v", err)
				}
				return
			}
			if !IsErrorOfType(err, tt.wantType) {
				t.Fatalf("ValidateContent() error = %v, want %s error", err, tt.wantType)
			}
			if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errorMsg)
			}
		})
	}
}

func TestArchiveValidator_ZeroLimitsDisableChecks(t *testing.T) {
	validator := &ArchiveValidator{}
	data := buildZip(t, zipEntry{"zeros.bin", make([]byte, 2*MB)})

	if err := validator.ValidateContent(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("ValidateContent() unexpected error: %v", err)
	}
}

func TestArchiveValidator_UncompressedSize(t *testing.T) {
	validator := &ArchiveValidator{MaxUncompressedSize: 10}
	data := buildZip(t, zipEntry{"a.csv", []byte("0123456789abcdef")})

	err := validator.ValidateContent(bytes.NewReader(data), int64(len(data)))
	if !IsErrorOfType(err, ErrorTypeSize) {
		t.Fatalf("ValidateContent() error = %v, want size error", err)
	}
}

func TestArchiveValidator_NotAnArchive(t *testing.T) {
	validator := DefaultArchiveValidator()

	// plain io.Reader takes the buffered path
	err := validator.ValidateContent(strings.NewReader("not a zip"), 9)
	if !IsErrorOfType(err, ErrorTypeContent) {
		t.Fatalf("ValidateContent() error = %v, want content error", err)
	}
}

func TestIsDangerousPath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.csv", false},
		{"dir/a.csv", false},
		{"dir/../a.csv", false},
		{"./a.csv", false},
		{"..", true},
		{"../a.csv", true},
		{"dir/../../a.csv", true},
		{"/etc/passwd", true},
		{"\\windows\\system32", true},
		{"C:\\evil.csv", true},
		{"..\\evil.csv", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDangerousPath(tt.name); got != tt.want {
				t.Errorf("IsDangerousPath(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestIsErrorOfType(t *testing.T) {
	err := NewValidationError(ErrorTypePath, "dangerous path detected: ../x")
	if err.Error() != "path validation error: dangerous path detected: ../x" {
		t.Errorf("Error() = %s", err.Error())
	}
	if !IsValidationError(err) {
		t.Error("IsValidationError() = false, want true")
	}
	if IsErrorOfType(err, ErrorTypeSize) {
		t.Error("IsErrorOfType(size) = true, want false")
	}
	if IsErrorOfType(fmt.Errorf("plain"), ErrorTypePath) {
		t.Error("IsErrorOfType(plain) = true, want false")
	}
}
