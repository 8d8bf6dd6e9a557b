package codec

import (
	"strconv"

	"github.com/roach88/hwir/internal/document"
)

// fields reads typed values out of one object of an entity document.
// Absent and null fields yield the caller's default; present fields of the
// wrong kind yield a TypeMismatch FieldError naming the full path.
type fields struct {
	entity string
	prefix string
	obj    document.Object
}

func newFields(entity string, obj document.Object) fields {
	return fields{entity: entity, obj: obj}
}

// path returns the dotted path of name inside the entity.
func (f fields) path(name string) string {
	if f.prefix == "" {
		return name
	}
	return f.prefix + "." + name
}

// lookup treats an explicit null like an absent field.
func (f fields) lookup(name string) (document.Value, bool) {
	v, ok := f.obj[name]
	if !ok {
		return nil, false
	}
	if _, isNull := v.(document.Null); isNull {
		return nil, false
	}
	return v, true
}

// mismatch reports a field at path whose kind is not want.
func (f fields) mismatch(path, want string, got document.Value) error {
	return &FieldError{
		Entity: f.entity,
		Field:  path,
		Kind:   TypeMismatch,
		Want:   want,
		Got:    document.KindOf(got),
	}
}

func (f fields) missing(name string) error {
	return &FieldError{Entity: f.entity, Field: f.path(name), Kind: MissingRequiredField}
}

func (f fields) optString(name, def string) (string, error) {
	v, ok := f.lookup(name)
	if !ok {
		return def, nil
	}
	s, ok := v.(document.String)
	if !ok {
		return "", f.mismatch(f.path(name), "string", v)
	}
	return string(s), nil
}

// optText reads an expression-valued field. Config values, sizes and
// dimensions are text in the IR, so integers and booleans are accepted and
// rendered in their canonical form.
func (f fields) optText(name, def string) (string, error) {
	v, ok := f.lookup(name)
	if !ok {
		return def, nil
	}
	s, ok := textOf(v)
	if !ok {
		return "", f.mismatch(f.path(name), "string", v)
	}
	return s, nil
}

// textOf renders a scalar as expression text. document.Number is not
// accepted: IR expressions never carry fractional literals.
func textOf(v document.Value) (string, bool) {
	switch tv := v.(type) {
	case document.String:
		return string(tv), true
	case document.Int:
		return strconv.FormatInt(int64(tv), 10), true
	case document.Bool:
		return strconv.FormatBool(bool(tv)), true
	}
	return "", false
}

func (f fields) optBool(name string, def bool) (bool, error) {
	v, ok := f.lookup(name)
	if !ok {
		return def, nil
	}
	b, ok := v.(document.Bool)
	if !ok {
		return false, f.mismatch(f.path(name), "bool", v)
	}
	return bool(b), nil
}

// optInt accepts document.Int only; expression text is not converted.
func (f fields) optInt(name string, def int64) (int64, error) {
	v, ok := f.lookup(name)
	if !ok {
		return def, nil
	}
	n, ok := v.(document.Int)
	if !ok {
		return 0, f.mismatch(f.path(name), "int", v)
	}
	return int64(n), nil
}

func (f fields) optArray(name string) (document.Array, error) {
	v, ok := f.lookup(name)
	if !ok {
		return nil, nil
	}
	arr, ok := v.(document.Array)
	if !ok {
		return nil, f.mismatch(f.path(name), "array", v)
	}
	return arr, nil
}

func (f fields) optObject(name string) (document.Object, error) {
	v, ok := f.lookup(name)
	if !ok {
		return nil, nil
	}
	obj, ok := v.(document.Object)
	if !ok {
		return nil, f.mismatch(f.path(name), "object", v)
	}
	return obj, nil
}

// optTextList reads an array of expression values, element by element.
func (f fields) optTextList(name string) ([]string, error) {
	arr, err := f.optArray(name)
	if err != nil || arr == nil {
		return nil, err
	}
	var out []string
	for i, item := range arr {
		s, ok := textOf(item)
		if !ok {
			return nil, f.mismatch(indexPath(f.path(name), i), "string", item)
		}
		out = append(out, s)
	}
	return out, nil
}

// objects returns a reader for each element of the named array. Every
// element must be an object.
func (f fields) objects(name string) ([]fields, error) {
	arr, err := f.optArray(name)
	if err != nil || arr == nil {
		return nil, err
	}
	out := make([]fields, 0, len(arr))
	for i, item := range arr {
		p := indexPath(f.path(name), i)
		obj, ok := item.(document.Object)
		if !ok {
			return nil, f.mismatch(p, "object", item)
		}
		out = append(out, fields{entity: f.entity, prefix: p, obj: obj})
	}
	return out, nil
}

// indexPath appends an array index, giving paths like members[2].
func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

// parseEntity parses text into an entity's top-level object.
// parseEntity parses text for one of the Unmarshal functions, wrapping
// failures as a ParseError for entity.
func parseEntity(entity string, data []byte) (document.Object, error) {
	obj, err := document.ParseObject(data)
	if err != nil {
		return nil, &ParseError{Entity: entity, Err: err}
	}
	return obj, nil
}

// putComment sets "comment" only when non-empty.
func putComment(obj document.Object, comment string) {
	if comment != "" {
		obj["comment"] = document.String(comment)
	}
}
