package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hwir/internal/ir"
)

func TestStorageRoundTrip(t *testing.T) {
	s := ir.Storage{Name: "counter", Comment: "cycles", Type: "uint", UintLength: "48", Value: "0", Dims: []string{"2"}}

	var got ir.Storage
	require.NoError(t, DecodeStorage(EncodeStorage(&s), &got))
	assert.Equal(t, s, got)
}

func TestDecodeStorageErrors(t *testing.T) {
	var got ir.Storage
	err := UnmarshalStorage([]byte(`{"name": "x", "dims": "4"}`), &got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	fe, ok := IsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "storage", fe.Entity)
	assert.Equal(t, "dims", fe.Field)
}
