package frame

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrEmpty is returned when a tabular source has no header row.
var ErrEmpty = errors.New("no columns to parse")

// ReadCSV decodes delimited data. The first record is the header.
// encoding is an optional charset label ("latin1", "windows-1252", ...);
// empty means UTF-8.
func ReadCSV(data []byte, encoding string) (*Table, error) {
	data, err := DecodeCharset(data, encoding)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &Table{Columns: header}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, record)
	}
	return t, nil
}

// DecodeCharset converts data from the named charset to UTF-8.
// Labels follow the WHATWG encoding names; "" and UTF-8 return data as is.
func DecodeCharset(data []byte, label string) ([]byte, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return data, nil
	}
	switch strings.ToLower(label) {
	case "utf-8", "utf8":
		return data, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", label, err)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", label, err)
	}
	return out, nil
}
