package codec

import (
	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/ir"
)

// pipeDefaults holds the values used for absent pipe size fields.
var pipeDefaults = struct {
	InputSize, OutputSize, BufferSize, Latency string
}{
	InputSize:  "1",
	OutputSize: "1",
	BufferSize: "0",
	Latency:    "1",
}

// NewPipe returns a pipe with default sizes.
func NewPipe(name, typ string) ir.Pipe {
	return ir.Pipe{
		Name:       name,
		Type:       typ,
		InputSize:  pipeDefaults.InputSize,
		OutputSize: pipeDefaults.OutputSize,
		BufferSize: pipeDefaults.BufferSize,
		Latency:    pipeDefaults.Latency,
	}
}

// EncodePipe returns the document for a pipe descriptor.
func EncodePipe(p *ir.Pipe) document.Object {
	doc := document.Object{
		// Sizes are expression text, never integers
		"type":          document.String(p.Type),
		"input_size":    document.String(p.InputSize),
		"output_size":   document.String(p.OutputSize),
		"buffer_size":   document.String(p.BufferSize),
		"latency":       document.String(p.Latency),
		"has_handshake": document.Bool(p.HasHandshake),
		"has_valid":     document.Bool(p.HasValid),
	}
	putComment(doc, p.Comment)
	return doc
}

// DecodePipe replaces out with the pipe described by doc. Every field is
// optional; an empty document yields a pipe with default sizes.
func DecodePipe(doc document.Object, out *ir.Pipe) error {
	f := newFields("pipe", doc)

	p := ir.Pipe{Name: out.Name}
	var err error
	if p.Comment, err = f.optString("comment", ""); err != nil {
		return err
	}
	if p.Type, err = f.optString("type", ""); err != nil {
		return err
	}
	// Sizes fall back to pipeDefaults when absent or null
	if p.InputSize, err = f.optText("input_size", pipeDefaults.InputSize); err != nil {
		return err
	}
	if p.OutputSize, err = f.optText("output_size", pipeDefaults.OutputSize); err != nil {
		return err
	}
	if p.BufferSize, err = f.optText("buffer_size", pipeDefaults.BufferSize); err != nil {
		return err
	}
	if p.Latency, err = f.optText("latency", pipeDefaults.Latency); err != nil {
		return err
	}
	if p.HasHandshake, err = f.optBool("has_handshake", false); err != nil {
		return err
	}
	if p.HasValid, err = f.optBool("has_valid", false); err != nil {
		return err
	}

	*out = p
	return nil
}

// UnmarshalPipe parses text and decodes it into out.
func UnmarshalPipe(data []byte, out *ir.Pipe) error {
	doc, err := parseEntity("pipe", data)
	if err != nil {
		return err
	}
	return DecodePipe(doc, out)
}
