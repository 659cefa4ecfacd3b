package datastore

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain"
)

// Value is the raw result of a datastore operation. The service stores both
// JSON documents and plain text; Value preserves the body exactly as it
// arrived and reports which of the two it is.
type Value struct {
	raw    []byte
	isJSON bool
}

// NewValue wraps a raw response body, detecting whether it is valid JSON.
// It is mainly useful for stubbing out the client in tests of code that
// consumes values.
func NewValue(raw []byte) Value {
	return Value{raw: raw, isJSON: json.Valid(raw)}
}

// Bytes returns the raw body.
func (v Value) Bytes() []byte {
	return v.raw
}

// String returns the raw body as text.
func (v Value) String() string {
	return string(v.raw)
}

// IsJSON reports whether the body is a valid JSON document.
func (v Value) IsJSON() bool {
	return v.isJSON
}

// IsNull reports whether the body is the JSON null literal, which the
// service uses to represent a deleted or absent value.
func (v Value) IsNull() bool {
	return v.isJSON && string(bytes.TrimSpace(v.raw)) == "null"
}

// Decode unmarshals a JSON body into out. It fails if the body is not
// valid JSON.
func (v Value) Decode(out any) error {
	if !v.isJSON {
		return fmt.Errorf("value is not valid JSON: %q", v.raw)
	}
	return json.Unmarshal(v.raw, out)
}

// encodePayload converts a value into a request body. Strings, numbers and
// booleans are sent as plain text to preserve their literal form, nil as a
// JSON null, and everything else as a JSON document. A json.RawMessage is
// passed through untouched, and a []byte is treated as raw text.
func encodePayload(value any) (body []byte, contentType string, err error) {
	if value == nil {
		return []byte("null"), contentTypeJSON, nil
	}

	switch v := value.(type) {
	case json.RawMessage:
		return v, contentTypeJSON, nil
	case []byte:
		return v, contentTypeText, nil
	case string:
		return []byte(v), contentTypeText, nil
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return []byte(fmt.Sprint(v)), contentTypeText, nil
	}

	body, err = json.Marshal(value)
	if err != nil {
		return nil, "", fmt.Errorf("failed encoding value as JSON: %w", err)
	}

	return body, contentTypeJSON, nil
}
