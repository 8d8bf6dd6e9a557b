package store

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Body compression names stored in snapshots.compression.
const (
	compressionNone = "none"
	compressionZstd = "zstd"
)

// zstd.Encoder and zstd.Decoder are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

// init builds the shared codecs once. Failure here means the zstd package
// itself is broken, so it panics.
func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("store: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("store: zstd decoder initialization failed: " + err.Error())
	}
}

// compressBody returns the stored form of data and its compression name.
// Data that zstd does not shrink is stored as is.
func compressBody(data []byte) ([]byte, string) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return data, compressionNone
	}
	return compressed, compressionZstd
}

// decompressBody reverses compressBody. size is the recorded length of the
// original body and is checked after decompression.
func decompressBody(stored []byte, compression string, size int) ([]byte, error) {
	switch compression {
	case compressionNone:
		if len(stored) != size {
			return nil, fmt.Errorf("uncompressed body: size %d does not match expected %d", len(stored), size)
		}
		return stored, nil
	case compressionZstd:
		result, err := zstdDecoder.DecodeAll(stored, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(result) != size {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), size)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unsupported body compression: %q", compression)
	}
}
