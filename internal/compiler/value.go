package compiler

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue"

	"github.com/roach88/hwir/internal/ir"
)

// lookup returns the named field of v, or false when it is absent.
func lookup(v cue.Value, name string) (cue.Value, bool) {
	f := v.LookupPath(cue.MakePath(cue.Str(name)))
	return f, f.Exists()
}

// optString returns the named string field, or "" when it is absent.
func optString(v cue.Value, name, path string) (string, error) {
	f, ok := lookup(v, name)
	if !ok {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", &CompileError{Field: path + "." + name, Message: "must be a string", Pos: f.Pos()}
	}
	return s, nil
}

// reqString is optString for fields that must be present.
func reqString(v cue.Value, name, path string) (string, error) {
	if _, ok := lookup(v, name); !ok {
		return "", &CompileError{Field: path + "." + name, Message: name + " is required", Pos: v.Pos()}
	}
	return optString(v, name, path)
}

func optBool(v cue.Value, name, path string) (bool, error) {
	f, ok := lookup(v, name)
	if !ok {
		return false, nil
	}
	b, err := f.Bool()
	if err != nil {
		return false, &CompileError{Field: path + "." + name, Message: "must be a bool", Pos: f.Pos()}
	}
	return b, nil
}

// exprText renders a config expression. Strings are taken verbatim, ints
// and bools in canonical form. Floats are forbidden.
func exprText(v cue.Value, path string) (string, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return "", formatCUEError(err)
		}
		return s, nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return "", formatCUEError(err)
		}
		return strconv.FormatInt(n, 10), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return "", formatCUEError(err)
		}
		return strconv.FormatBool(b), nil
	// CUE infers FloatKind for 1.5 and NumberKind for number-typed
	// constraints; neither has a stable textual form
	case cue.FloatKind, cue.NumberKind:
		return "", &CompileError{
			Field:   path,
			Message: "float values are forbidden - write the expression as a string",
			Pos:     v.Pos(),
		}
	default:
		return "", &CompileError{
			Field:   path,
			Message: fmt.Sprintf("unsupported value kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// optExpr returns the expression text of the named field, or def.
func optExpr(v cue.Value, name, path string, def string) (string, error) {
	f, ok := lookup(v, name)
	if !ok {
		return def, nil
	}
	return exprText(f, path+"."+name)
}

// optExprList renders each element of the named list with exprText.
// Used for array dimensions.
func optExprList(v cue.Value, name, path string) ([]string, error) {
	f, ok := lookup(v, name)
	if !ok {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for i := 0; iter.Next(); i++ {
		s, err := exprText(iter.Value(), fmt.Sprintf("%s.%s[%d]", path, name, i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func optStringList(v cue.Value, name, path string) ([]string, error) {
	f, ok := lookup(v, name)
	if !ok {
		return nil, nil
	}
	return stringList(f, path+"."+name)
}

// stringList requires v to be a list whose elements are all strings.
func stringList(v cue.Value, path string) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: path, Message: "must be a list of strings", Pos: v.Pos()}
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{Field: path, Message: "must be a list of strings", Pos: iter.Value().Pos()}
		}
		out = append(out, s)
	}
	return out, nil
}

// eachField calls fn for every regular field of the named struct, in
// declaration order. Labels must be valid identifiers.
func eachField(v cue.Value, name, path string, fn func(label string, fv cue.Value, fpath string) error) error {
	f, ok := lookup(v, name)
	if !ok {
		return nil
	}
	iter, err := f.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		label := iter.Selector().Unquoted()
		fpath := path + "." + name + "." + label
		if !ir.IsValidIdentifier(label) {
			return &CompileError{Field: fpath, Message: fmt.Sprintf("%q is not a valid identifier", label), Pos: iter.Value().Pos()}
		}
		if err := fn(label, iter.Value(), fpath); err != nil {
			return err
		}
	}
	return nil
}

// eachElem calls fn for every element of the named list.
func eachElem(v cue.Value, name, path string, fn func(ev cue.Value, epath string) error) error {
	f, ok := lookup(v, name)
	if !ok {
		return nil
	}
	iter, err := f.List()
	if err != nil {
		return &CompileError{Field: path + "." + name, Message: "must be a list", Pos: f.Pos()}
	}
	for i := 0; iter.Next(); i++ {
		if err := fn(iter.Value(), fmt.Sprintf("%s.%s[%d]", path, name, i)); err != nil {
			return err
		}
	}
	return nil
}
