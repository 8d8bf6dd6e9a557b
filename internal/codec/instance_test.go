package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/ir"
)

func TestInstanceRoundTrip(t *testing.T) {
	inst := ir.Instance{
		Name:                 "alu0",
		Comment:              "first alu",
		ModuleName:           "Alu",
		LocalConfigOverrides: map[string]string{"WIDTH": "64", "DEPTH": "N * 2"},
	}

	got := ir.Instance{Name: "alu0"}
	require.NoError(t, DecodeInstance(EncodeInstance(&inst), &got))
	assert.Equal(t, inst, got)
}

func TestEncodeInstanceShape(t *testing.T) {
	inst := ir.Instance{Name: "ram", ModuleName: "Ram"}
	doc := EncodeInstance(&inst)

	assert.Equal(t, document.Object{
		"module_name":            document.String("Ram"),
		"local_config_overrides": document.Object{},
	}, doc)
}

func TestDecodeInstanceClearsOverrides(t *testing.T) {
	got := ir.Instance{
		Name:                 "alu0",
		ModuleName:           "Old",
		LocalConfigOverrides: map[string]string{"STALE": "1"},
	}

	err := UnmarshalInstance([]byte(`{"module_name": "Alu", "local_config_overrides": {"WIDTH": 32, "SIGNED": true}}`), &got)
	require.NoError(t, err)

	assert.Equal(t, "alu0", got.Name)
	assert.Equal(t, "Alu", got.ModuleName)
	assert.Equal(t, map[string]string{"WIDTH": "32", "SIGNED": "true"}, got.LocalConfigOverrides)
}

func TestDecodeInstanceDefaults(t *testing.T) {
	var got ir.Instance
	require.NoError(t, UnmarshalInstance([]byte(`{}`), &got))

	assert.Empty(t, got.ModuleName)
	assert.Empty(t, got.Comment)
	assert.NotNil(t, got.LocalConfigOverrides)
	assert.Empty(t, got.LocalConfigOverrides)
}

func TestDecodeInstanceErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"overrides array", `{"local_config_overrides": []}`, "local_config_overrides"},
		{"override value object", `{"local_config_overrides": {"W": {}}}`, "local_config_overrides.W"},
		{"module name bool", `{"module_name": false}`, "module_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ir.Instance
			err := UnmarshalInstance([]byte(tt.input), &got)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTypeMismatch))

			fe, ok := IsFieldError(err)
			require.True(t, ok)
			assert.Equal(t, "instance", fe.Entity)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}
