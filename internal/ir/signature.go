package ir

import "strings"

// basicTypes are the scalar types of the hardware language.
var basicTypes = map[string]struct{}{
	"uint8": {}, "uint16": {}, "uint32": {}, "uint64": {}, "uint128": {},
	"int8": {}, "int16": {}, "int32": {}, "int64": {}, "int128": {},
	"bool": {},
}

// IsBasicType reports whether typ is a built-in scalar type.
// Basic types are passed by value in port signatures.
func IsBasicType(typ string) bool {
	_, ok := basicTypes[typ]
	return ok
}

// IsValidIdentifier reports whether s is a letter or underscore followed by
// letters, digits or underscores.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		// Digits anywhere but first
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// SignatureArgOnly formats the parameter list of the port, without
// parentheses. Non-basic args are passed by reference and return values
// by pointer.
func (rs *ReqServ) SignatureArgOnly() string {
	parts := make([]string, 0, len(rs.Args)+len(rs.Rets))
	for _, arg := range rs.Args {
		if IsBasicType(arg.Type) {
			parts = append(parts, arg.Type+" "+arg.Name)
		} else {
			parts = append(parts, arg.Type+" & "+arg.Name)
		}
	}
	// Rets follow args as out-pointers
	for _, ret := range rs.Rets {
		parts = append(parts, ret.Type+" * "+ret.Name)
	}
	return strings.Join(parts, ", ")
}

// SignatureFull formats the complete declaration of the port, e.g.
// "bool read(uint32 addr, uint64 * data)" for a handshake port.
func (rs *ReqServ) SignatureFull() string {
	ret := "void "
	if rs.HasHandshake {
		ret = "bool "
	}
	return ret + rs.Name + "(" + rs.SignatureArgOnly() + ")"
}

// IsBlankLine reports whether line has only spaces, tabs, CR or LF.
func IsBlankLine(line string) bool {
	return strings.Trim(line, " \t\r\n") == ""
}

// IsCodeLineEmpty reports whether every line is blank.
func IsCodeLineEmpty(lines []string) bool {
	for _, line := range lines {
		if !IsBlankLine(line) {
			return false
		}
	}
	return true
}

// NonBlankLines returns lines with blank entries removed, preserving order.
func NonBlankLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if !IsBlankLine(line) {
			out = append(out, line)
		}
	}
	return out
}
