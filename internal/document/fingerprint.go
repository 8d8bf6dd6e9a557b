package document

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// fingerprintKey is the BLAKE3 domain key for document fingerprints: the
// ASCII domain name zero-padded to 32 bytes. Changing it invalidates every
// stored fingerprint.
var fingerprintKey = [32]byte{
	'h', 'w', 'i', 'r', '.', 'd', 'o', 'c', 'u', 'm', 'e', 'n', 't', '.', 'v', '1',
}

// Fingerprint computes the content identity of a document: the keyed
// BLAKE3 hash of its canonical JSON form, hex encoded.
// Documents that differ only in key order have the same fingerprint.
func Fingerprint(v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}

	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("document: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(canonical)
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
