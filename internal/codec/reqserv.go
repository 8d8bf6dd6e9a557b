package codec

import (
	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/ir"
)

// EncodeReqServ returns the document for a request or service port,
// including its formatted declaration under "sig".
func EncodeReqServ(rs *ir.ReqServ) document.Object {
	doc := document.Object{
		"has_handshake": document.Bool(rs.HasHandshake),
		"sig":           document.String(rs.SignatureFull()),
		"args":          encodePortArgs(rs.Args),
		"rets":          encodePortArgs(rs.Rets),
	}
	putComment(doc, rs.Comment)
	return doc
}

// encodePortArgs writes name and type always and comment only when set.
func encodePortArgs(args []ir.PortArg) document.Array {
	arr := make(document.Array, 0, len(args))
	for _, a := range args {
		obj := document.Object{
			"name": document.String(a.Name),
			"type": document.String(a.Type),
		}
		putComment(obj, a.Comment)
		arr = append(arr, obj)
	}
	return arr
}

// DecodeReqServ replaces the contents of out with the port described by
// doc. Arg and ret entries without a name or type are dropped. "sig" is
// derived and ignored.
func DecodeReqServ(doc document.Object, out *ir.ReqServ) error {
	f := newFields("reqserv", doc)

	rs := ir.ReqServ{Name: out.Name}
	var err error
	if rs.Comment, err = f.optString("comment", ""); err != nil {
		return err
	}
	if rs.HasHandshake, err = f.optBool("has_handshake", false); err != nil {
		return err
	}
	if rs.Args, err = decodePortArgs(f, "args"); err != nil {
		return err
	}
	if rs.Rets, err = decodePortArgs(f, "rets"); err != nil {
		return err
	}

	*out = rs
	return nil
}

// decodePortArgs reads the args or rets list of f. Entries are still type
// checked before incomplete ones are dropped.
func decodePortArgs(f fields, name string) ([]ir.PortArg, error) {
	entries, err := f.objects(name)
	if err != nil {
		return nil, err
	}
	var args []ir.PortArg
	for _, entry := range entries {
		var a ir.PortArg
		if a.Name, err = entry.optString("name", ""); err != nil {
			return nil, err
		}
		if a.Type, err = entry.optString("type", ""); err != nil {
			return nil, err
		}
		if a.Comment, err = entry.optString("comment", ""); err != nil {
			return nil, err
		}
		// Skip incomplete entries
		if a.Name == "" || a.Type == "" {
			continue
		}
		args = append(args, a)
	}
	return args, nil
}

// UnmarshalReqServ parses text and decodes it into out.
func UnmarshalReqServ(data []byte, out *ir.ReqServ) error {
	doc, err := parseEntity("reqserv", data)
	if err != nil {
		return err
	}
	return DecodeReqServ(doc, out)
}
