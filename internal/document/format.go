package document

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format selects the text or binary encoding of a document.
type Format string

// Supported formats. JSON input may carry comments and trailing commas.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// ValidFormats lists the accepted format names.
var ValidFormats = []Format{FormatJSON, FormatYAML, FormatCBOR}

// ParseFormatName converts a user-supplied name into a Format.
func ParseFormatName(name string) (Format, error) {
	switch name {
	case "json", "jsonc":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("unknown document format %q: must be one of %v", name, ValidFormats)
	}
}

// cborEnc uses Core Deterministic Encoding (RFC 8949 §4.2) so the same
// document always produces identical bytes.
var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

// init builds the CBOR modes. Both option sets are static, so an error
// here is a programming bug.
func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("document: CBOR encoder initialization failed: " + err.Error())
	}
	// Decode maps as map[string]any so FromAny sees string keys
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("document: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v in the given format. JSON output is indented.
func Marshal(format Format, v Value) ([]byte, error) {
	switch format {
	case FormatJSON:
		return MarshalIndent(v)
	case FormatYAML:
		return yaml.Marshal(ToAny(v))
	case FormatCBOR:
		return cborEnc.Marshal(ToAny(v))
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
}

// ParseFormat decodes data in the given format into a Value.
// All failures are reported as *ParseError.
func ParseFormat(format Format, data []byte) (Value, error) {
	var raw any
	switch format {
	// JSON has its own parser that keeps integers exact
	case FormatJSON:
		return Parse(data)
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &ParseError{Format: format, Err: err}
		}
	case FormatCBOR:
		if err := cborDec.Unmarshal(data, &raw); err != nil {
			return nil, &ParseError{Format: format, Err: err}
		}
	default:
		return nil, &ParseError{Format: format, Err: fmt.Errorf("unknown document format")}
	}

	// YAML and CBOR go through the generic conversion
	v, err := FromAny(raw)
	if err != nil {
		return nil, &ParseError{Format: format, Err: err}
	}
	return v, nil
}
