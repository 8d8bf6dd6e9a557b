package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBasicType(t *testing.T) {
	for _, typ := range []string{"uint8", "uint128", "int64", "bool"} {
		assert.True(t, IsBasicType(typ), typ)
	}
	for _, typ := range []string{"", "uint", "Packet", "float"} {
		assert.False(t, IsBasicType(typ), typ)
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"alu", true},
		{"_tmp0", true},
		{"Data_1", true},
		{"", false},
		{"0abc", false},
		{"a-b", false},
		{"a b", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, IsValidIdentifier(tt.input), tt.input)
	}
}

func TestSignatureFull(t *testing.T) {
	tests := []struct {
		name     string
		port     ReqServ
		expected string
	}{
		{
			name:     "no args",
			port:     ReqServ{Name: "tick"},
			expected: "void tick()",
		},
		{
			name: "handshake with basic and bundle args",
			port: ReqServ{
				Name:         "write",
				HasHandshake: true,
				Args:         []PortArg{{Name: "addr", Type: "uint32"}, {Name: "pkt", Type: "Packet"}},
				Rets:         []PortArg{{Name: "ok", Type: "bool"}},
			},
			expected: "bool write(uint32 addr, Packet & pkt, bool * ok)",
		},
		{
			name:     "returns only",
			port:     ReqServ{Name: "read", Rets: []PortArg{{Name: "data", Type: "uint64"}}},
			expected: "void read(uint64 * data)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.port.SignatureFull())
		})
	}
}

func TestCodeLineEmptiness(t *testing.T) {
	assert.True(t, IsCodeLineEmpty(nil))
	assert.True(t, IsCodeLineEmpty([]string{"", "  ", "\t\r\n"}))
	assert.False(t, IsCodeLineEmpty([]string{"", "x=1"}))

	assert.Equal(t, []string{"x=1"}, NonBlankLines([]string{"", "  ", "x=1"}))
	assert.Equal(t, []string{}, NonBlankLines([]string{" "}))
}
