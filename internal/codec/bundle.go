package codec

import (
	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/ir"
)

// EncodeBundle returns the document for a bundle declaration. Member lists
// are emitted even for aliases.
func EncodeBundle(b *ir.BundleItem) document.Object {
	members := make(document.Array, 0, len(b.Members))
	for i := range b.Members {
		members = append(members, encodeMember(&b.Members[i]))
	}
	enums := make(document.Array, 0, len(b.EnumMembers))
	for _, e := range b.EnumMembers {
		enums = append(enums, document.Object{
			"name":    document.String(e.Name),
			"comment": document.String(e.Comment),
			"value":   document.String(e.Value),
		})
	}

	doc := document.Object{
		"is_alias":     document.Bool(b.IsAlias),
		"members":      members,
		"enum_members": enums,
	}
	putComment(doc, b.Comment)
	return doc
}

// encodeMember writes every member field, empty or not. The same shape is
// used for storages.
func encodeMember(m *ir.BundleMember) document.Object {
	return document.Object{
		"name":        document.String(m.Name),
		"comment":     document.String(m.Comment),
		"type":        document.String(m.Type),
		"value":       document.String(m.Value),
		"uint_length": document.String(m.UintLength),
		"dims":        document.Strings(m.Dims),
	}
}

// DecodeBundle replaces the contents of out with the bundle described by
// doc. out.Name is not part of the document and is left as is.
func DecodeBundle(doc document.Object, out *ir.BundleItem) error {
	f := newFields("bundle", doc)

	// Decode into a fresh value so a failure leaves out untouched
	b := ir.BundleItem{Name: out.Name}
	var err error
	if b.IsAlias, err = f.optBool("is_alias", false); err != nil {
		return err
	}
	if b.Comment, err = f.optString("comment", ""); err != nil {
		return err
	}

	// Parse members (optional); every entry must be an object
	entries, err := f.objects("members")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		m, err := decodeMember(entry)
		if err != nil {
			return err
		}
		b.Members = append(b.Members, m)
	}

	// Parse enum members (optional)
	entries, err = f.objects("enum_members")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		var e ir.BundleEnumMember
		if e.Name, err = entry.optString("name", ""); err != nil {
			return err
		}
		if e.Comment, err = entry.optString("comment", ""); err != nil {
			return err
		}
		if e.Value, err = entry.optText("value", ""); err != nil {
			return err
		}
		b.EnumMembers = append(b.EnumMembers, e)
	}

	*out = b
	return nil
}

// decodeMember reads one member entry. Value, uint_length and dims are
// expression text and also accept integers and bools.
func decodeMember(f fields) (ir.BundleMember, error) {
	var m ir.BundleMember
	var err error
	if m.Name, err = f.optString("name", ""); err != nil {
		return m, err
	}
	if m.Comment, err = f.optString("comment", ""); err != nil {
		return m, err
	}
	if m.Type, err = f.optString("type", ""); err != nil {
		return m, err
	}
	if m.Value, err = f.optText("value", ""); err != nil {
		return m, err
	}
	if m.UintLength, err = f.optText("uint_length", ""); err != nil {
		return m, err
	}
	if m.Dims, err = f.optTextList("dims"); err != nil {
		return m, err
	}
	return m, nil
}

// UnmarshalBundle parses text and decodes it into out.
// Malformed text and a non-object root are both ErrParse.
func UnmarshalBundle(data []byte, out *ir.BundleItem) error {
	doc, err := parseEntity("bundle", data)
	if err != nil {
		return err
	}
	return DecodeBundle(doc, out)
}
