package codec

import (
	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/ir"
)

// EncodeInstance returns the standalone document for an instance.
func EncodeInstance(inst *ir.Instance) document.Object {
	overrides := make(document.Object, len(inst.LocalConfigOverrides))
	for k, v := range inst.LocalConfigOverrides {
		overrides[k] = document.String(v)
	}
	doc := document.Object{
		"module_name":            document.String(inst.ModuleName),
		"local_config_overrides": overrides,
	}
	putComment(doc, inst.Comment)
	return doc
}

// DecodeInstance replaces the contents of out with the instance described
// by doc. Override names are not checked against the target module.
func DecodeInstance(doc document.Object, out *ir.Instance) error {
	f := newFields("instance", doc)

	inst := ir.Instance{Name: out.Name, LocalConfigOverrides: map[string]string{}}
	var err error
	if inst.ModuleName, err = f.optString("module_name", ""); err != nil {
		return err
	}
	if inst.Comment, err = f.optString("comment", ""); err != nil {
		return err
	}

	// Overrides are decoded in key order so errors are deterministic
	overrides, err := f.optObject("local_config_overrides")
	if err != nil {
		return err
	}
	// Nested reader so error paths read local_config_overrides.<key>
	of := fields{entity: f.entity, prefix: "local_config_overrides", obj: overrides}
	for _, key := range overrides.SortedKeys() {
		v, err := of.optText(key, "")
		if err != nil {
			return err
		}
		inst.LocalConfigOverrides[key] = v
	}

	*out = inst
	return nil
}

// UnmarshalInstance parses text and decodes it into out.
func UnmarshalInstance(data []byte, out *ir.Instance) error {
	doc, err := parseEntity("instance", data)
	if err != nil {
		return err
	}
	return DecodeInstance(doc, out)
}
