package jsonx

import (
	"bytes"
	"encoding/json"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var jsonx = jsoniter.ConfigCompatibleWithStandardLibrary

// canonical writes struct fields in declaration order and leaves <, > and &
// unescaped, which matches what a browser's JSON.stringify produces.
var canonical = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

func Marshal(v interface{}) ([]byte, error) {
	return jsonx.Marshal(v)
}

func Unmarshal(data []byte, v interface{}) error {
	return jsonx.Unmarshal(data, v)
}

func NewDecoder(r io.Reader) *jsoniter.Decoder {
	return jsonx.NewDecoder(r)
}

func NewEncoder(w io.Writer) *jsoniter.Encoder {
	return jsonx.NewEncoder(w)
}

// MarshalCanonical encodes v compactly without HTML escaping.
func MarshalCanonical(v interface{}) ([]byte, error) {
	return canonical.Marshal(v)
}

// MarshalIndent encodes v like MarshalCanonical and indents the result,
// the layout used for every JSON data file.
func MarshalIndent(v interface{}, indent string) ([]byte, error) {
	raw, err := canonical.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Compact strips insignificant whitespace from an encoded JSON value.
func Compact(data []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := json.Compact(&out, data); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
