package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"
)

// ParseError reports document text that is not well-formed.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s document: %v", e.Format, e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes JSON document text into a Value.
// Comments and trailing commas are stripped first (JSONC). Exactly one
// top-level value is accepted; trailing data is an error.
func Parse(data []byte) (Value, error) {
	stripped := jsonc.ToJSON(data)

	// UseNumber keeps integers beyond 2^53 exact
	dec := json.NewDecoder(bytes.NewReader(stripped))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, &ParseError{Format: FormatJSON, Err: err}
	}
	// Reject a second top-level value
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Format: FormatJSON, Err: errors.New("unexpected data after top-level value")}
	}

	v, err := FromAny(raw)
	if err != nil {
		return nil, &ParseError{Format: FormatJSON, Err: err}
	}
	return v, nil
}

// ParseObject is Parse restricted to a top-level object.
func ParseObject(data []byte) (Object, error) {
	return ParseObjectFormat(FormatJSON, data)
}

// ParseObjectFormat parses data in the given format and requires the
// top-level value to be an object.
func ParseObjectFormat(format Format, data []byte) (Object, error) {
	v, err := ParseFormat(format, data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(Object)
	if !ok {
		return nil, &ParseError{Format: format, Err: fmt.Errorf("top-level value is %s, expected object", KindOf(v))}
	}
	return obj, nil
}
