package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hwir/internal/ir"
)

func TestOrderText(t *testing.T) {
	dir := defaultLibrary(t)

	out, _, err := execute(NewOrderCommand(&RootOptions{Format: "text"}), dir, "Top")
	require.NoError(t, err)
	assert.Equal(t, "1. mem\n2. core\n3. post\n", out)
}

func TestOrderJSON(t *testing.T) {
	dir := defaultLibrary(t)

	out, _, err := execute(NewOrderCommand(&RootOptions{Format: "json"}), dir, "Core")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   OrderResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "Core", resp.Data.Module)
	assert.Equal(t, []string{}, resp.Data.Order)
}

func TestOrderExtraConstraintCreatesLoop(t *testing.T) {
	dir := defaultLibrary(t)

	out, _, err := execute(NewOrderCommand(&RootOptions{Format: "text"}), dir, "Top", "--constraint", "core:mem")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeOrderLoop)
	assert.Contains(t, out, "✗ Update order has loops")
	assert.Contains(t, out, "core ↔ mem")
}

func TestOrderLoopJSON(t *testing.T) {
	dir := defaultLibrary(t)

	out, _, err := execute(NewOrderCommand(&RootOptions{Format: "json"}), dir, "Top", "--constraint", "post:mem")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeOrderLoop, resp.Error.Code)
	details := resp.Error.Details.(map[string]interface{})
	assert.Equal(t, []interface{}{"core", "mem", "post"}, details["nodes"])
}

func TestParseConstraints(t *testing.T) {
	got, err := parseConstraints([]string{"a:b", "x:y"})
	require.NoError(t, err)
	assert.Equal(t, []ir.SequenceConnection{{Former: "a", Latter: "b"}, {Former: "x", Latter: "y"}}, got)

	for _, bad := range []string{"ab", ":b", "a:"} {
		_, err := parseConstraints([]string{bad})
		assert.Error(t, err, bad)
	}
}
