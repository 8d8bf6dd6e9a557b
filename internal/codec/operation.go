package codec

import (
	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/ir"
)

// DecodeOperationPackage parses an operation request. "name" is required;
// every argument field defaults independently and no argument is dropped.
func DecodeOperationPackage(data []byte) (ir.OperationPackage, error) {
	doc, err := parseEntity("operation", data)
	if err != nil {
		return ir.OperationPackage{}, err
	}
	return DecodeOperationDocument(doc)
}

// DecodeOperationDocument decodes an already parsed operation request.
func DecodeOperationDocument(doc document.Object) (ir.OperationPackage, error) {
	f := newFields("operation", doc)

	// Parse name (required, may be empty)
	var pkg ir.OperationPackage
	if _, ok := f.lookup("name"); !ok {
		return pkg, f.missing("name")
	}
	name, err := f.optString("name", "")
	if err != nil {
		return pkg, err
	}
	pkg.Name = name

	// Parse args (optional); index defaults to AnyIndex
	entries, err := f.objects("args")
	if err != nil {
		return ir.OperationPackage{}, err
	}
	pkg.Args = make([]ir.OperationArg, 0, len(entries))
	for _, entry := range entries {
		var arg ir.OperationArg
		index, err := entry.optInt("index", ir.AnyIndex)
		if err != nil {
			return ir.OperationPackage{}, err
		}
		arg.Index = int(index)
		if arg.Name, err = entry.optString("name", ""); err != nil {
			return ir.OperationPackage{}, err
		}
		if arg.Value, err = entry.optText("value", ""); err != nil {
			return ir.OperationPackage{}, err
		}
		pkg.Args = append(pkg.Args, arg)
	}
	return pkg, nil
}

// EncodeOperationPackage returns the request document for pkg.
func EncodeOperationPackage(pkg *ir.OperationPackage) document.Object {
	args := make(document.Array, 0, len(pkg.Args))
	for _, arg := range pkg.Args {
		args = append(args, document.Object{
			"index": document.Int(arg.Index),
			"name":  document.String(arg.Name),
			"value": document.String(arg.Value),
		})
	}
	return document.Object{
		"name": document.String(pkg.Name),
		"args": args,
	}
}

// EncodeOperationResponse returns the fixed-shape response document. Both
// result maps are always present.
func EncodeOperationResponse(resp *ir.OperationResponse) document.Object {
	// Nil results are left out rather than written as null
	results := make(document.Object, len(resp.Results))
	for k, v := range resp.Results {
		if v == nil {
			continue
		}
		results[k] = v
	}

	lists := make(document.Object, len(resp.ListResults))
	for k, v := range resp.ListResults {
		lists[k] = document.Strings(v)
	}

	return document.Object{
		"code":         document.Int(resp.Code),
		"msg":          document.String(resp.Msg),
		"results":      results,
		"list_results": lists,
	}
}

// MarshalOperationResponse returns the compact JSON text of the response.
// Fails only if a result holds a value JSON cannot represent.
func MarshalOperationResponse(resp *ir.OperationResponse) ([]byte, error) {
	return document.MarshalValue(EncodeOperationResponse(resp))
}
