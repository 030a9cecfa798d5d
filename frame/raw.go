package frame

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// ReadJSON decodes a JSON document into a Raw value. Numbers are kept as
// json.Number so large identifiers survive.
func ReadJSON(data []byte) (*Raw, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode json: trailing data after document")
	}
	return &Raw{Value: v}, nil
}

// ReadCBOR decodes a CBOR data item into a Raw value.
func ReadCBOR(data []byte) (*Raw, error) {
	var v any
	if err := cbor.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode cbor: %w", err)
	}
	return &Raw{Value: v}, nil
}

// ReadYAML decodes a YAML document into a Raw value.
func ReadYAML(data []byte) (*Raw, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &Raw{Value: v}, nil
}
