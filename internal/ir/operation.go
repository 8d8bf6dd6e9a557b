package ir

import "github.com/roach88/hwir/internal/document"

// AnyIndex marks an operation argument without a position.
const AnyIndex = -1

// OperationArg is one argument of an operation package.
type OperationArg struct {
	Index int    // position, or AnyIndex
	Name  string // empty matches any name in Arg lookups
	Value string
}

// OperationPackage is a remote operation request.
type OperationPackage struct {
	Name string
	Args []OperationArg
}

// Arg returns the value of the first argument matching name and index.
// An argument with an empty name matches any name, and one with
// AnyIndex matches any index.
func (p *OperationPackage) Arg(name string, index int) (string, bool) {
	for _, arg := range p.Args {
		if arg.Name != "" && arg.Name != name {
			continue
		}
		if arg.Index != AnyIndex && arg.Index != index {
			continue
		}
		return arg.Value, true
	}
	return "", false
}

// BoolArg reports whether the matching argument is set to a true literal.
func (p *OperationPackage) BoolArg(name string, index int) bool {
	v, ok := p.Arg(name, index)
	if !ok {
		return false
	}
	switch v {
	case "true", "True", "TRUE", "1":
		return true
	}
	return false
}

// OperationResponse is the result of an operation.
// Code 0 means success. Results holds structured values and ListResults
// string lists; both may be nil.
type OperationResponse struct {
	Code        uint32
	Msg         string
	Results     map[string]document.Value
	ListResults map[string][]string
}

// NewErrorResponse returns a response carrying only a status.
func NewErrorResponse(code uint32, msg string) OperationResponse {
	return OperationResponse{Code: code, Msg: msg}
}
