package codec

import (
	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/ir"
)

// EncodeStorage returns the document for a storage declaration. Storages
// share the bundle member shape.
func EncodeStorage(s *ir.Storage) document.Object {
	return encodeMember(s)
}

// DecodeStorage replaces out with the storage described by doc.
func DecodeStorage(doc document.Object, out *ir.Storage) error {
	s, err := decodeMember(newFields("storage", doc))
	if err != nil {
		return err
	}
	*out = s
	return nil
}

// UnmarshalStorage parses text and decodes it into out.
func UnmarshalStorage(data []byte, out *ir.Storage) error {
	doc, err := parseEntity("storage", data)
	if err != nil {
		return err
	}
	return DecodeStorage(doc, out)
}
