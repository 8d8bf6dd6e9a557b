package order

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hwir/internal/codec"
	"github.com/roach88/hwir/internal/document"
	"github.com/roach88/hwir/internal/ir"
)

var _ codec.OrderResolver = Resolver{}

func seq(former, latter string) ir.SequenceConnection {
	return ir.SequenceConnection{Former: former, Latter: latter}
}

func module(instances []string, blocks []string, constraints ...ir.SequenceConnection) *ir.Module {
	mod := &ir.Module{ModuleBase: ir.ModuleBase{Name: "Top"}, UpdateConstraints: constraints}
	for _, n := range instances {
		mod.Instances = append(mod.Instances, ir.Instance{Name: n})
	}
	for _, n := range blocks {
		mod.UserTickCodeBlocks = append(mod.UserTickCodeBlocks, ir.TickCodeBlock{Name: n})
	}
	return mod
}

func TestUpdateOrder(t *testing.T) {
	tests := []struct {
		name     string
		mod      *ir.Module
		expected []string
	}{
		{
			name:     "no constraints keeps declaration order",
			mod:      module([]string{"A", "B", "C"}, []string{"blk"}),
			expected: []string{"A", "B", "C", "blk"},
		},
		{
			name:     "constraints reorder",
			mod:      module([]string{"A", "B", "C"}, nil, seq("B", "A")),
			expected: []string{"B", "A", "C"},
		},
		{
			name:     "code blocks interleave",
			mod:      module([]string{"A", "B"}, []string{"pre"}, seq("pre", "A"), seq("B", "pre")),
			expected: []string{"B", "pre", "A"},
		},
		{
			name:     "top interface ignored",
			mod:      module([]string{"A", "B"}, nil, seq(ir.TopInterface, "B"), seq("B", ir.TopInterface), seq("B", "A")),
			expected: []string{"B", "A"},
		},
		{
			name:     "duplicate constraint",
			mod:      module([]string{"A", "B"}, nil, seq("B", "A"), seq("B", "A")),
			expected: []string{"B", "A"},
		},
		{
			name:     "empty module",
			mod:      module(nil, nil),
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolver{}.UpdateOrder(tt.mod)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUpdateOrderStalledConnections(t *testing.T) {
	mod := module([]string{"A", "B", "C"}, nil)
	mod.StalledConnections = []ir.SequenceConnection{seq("C", "A")}

	got, err := Resolver{}.UpdateOrder(mod)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A"}, got)
}

func TestUpdateOrderLoop(t *testing.T) {
	mod := module([]string{"A", "B", "C", "D"}, []string{"blk"},
		seq("A", "B"), seq("B", "A"), seq("D", "D"), seq("B", "C"))

	_, err := Resolver{}.UpdateOrder(mod)
	require.Error(t, err)

	var loopErr *LoopError
	require.True(t, errors.As(err, &loopErr))
	assert.Equal(t, "Top", loopErr.Module)
	assert.Equal(t, []string{"A", "B", "C", "D"}, loopErr.Nodes)
	assert.Equal(t, [][]string{{"A", "B"}, {"D"}}, loopErr.Cycles)
	assert.Equal(t, "module Top: update order has loops: [A B], [D]", err.Error())
}

func TestUpdateOrderNameConflict(t *testing.T) {
	mod := module([]string{"a", "x"}, []string{"x"}, seq("x", "a"))

	got, err := Resolver{}.UpdateOrder(mod)
	require.Error(t, err)
	assert.Nil(t, got)

	var conflict *NameConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Top", conflict.Module)
	assert.Equal(t, "x", conflict.Name)

	doc := (&codec.ModuleEncoder{Resolver: Resolver{}}).Encode(mod)
	for _, inst := range doc["instances"].(document.Array) {
		assert.Equal(t, document.Int(0), inst.(document.Object)["order"])
	}
}

func TestUpdateOrderWith(t *testing.T) {
	mod := module([]string{"A", "B"}, nil, seq("A", "B"))

	got, err := UpdateOrderWith(mod, []ir.SequenceConnection{seq(ir.TopInterface, "A")})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got)

	_, err = UpdateOrderWith(mod, []ir.SequenceConnection{seq("B", "A")})
	var loopErr *LoopError
	require.True(t, errors.As(err, &loopErr))
	assert.Equal(t, [][]string{{"A", "B"}}, loopErr.Cycles)
	assert.Empty(t, mod.UpdateConstraints[1:], "extra constraints are not stored on the module")
}

func TestResolverDrivesEncoder(t *testing.T) {
	mod := module([]string{"A", "B", "C"}, []string{"blk"}, seq("C", "blk"), seq("blk", "A"))
	enc := &codec.ModuleEncoder{Resolver: Resolver{}}

	doc := enc.Encode(mod)
	instances := doc["instances"].(document.Array)
	require.Len(t, instances, 3)

	var names []string
	for _, inst := range instances {
		obj := inst.(document.Object)
		names = append(names, string(obj["name"].(document.String)))
	}
	assert.Equal(t, []string{"B", "C", "A"}, names)

	blocks := doc["user_tick_codeblocks"].(document.Array)
	assert.Equal(t, document.Int(3), blocks[0].(document.Object)["order"])
}

func TestLoopFallsBackInEncoder(t *testing.T) {
	mod := module([]string{"A", "B"}, nil, seq("A", "B"), seq("B", "A"))
	doc := (&codec.ModuleEncoder{Resolver: Resolver{}}).Encode(mod)

	for _, inst := range doc["instances"].(document.Array) {
		assert.Equal(t, document.Int(0), inst.(document.Object)["order"])
	}
}

func TestCycles(t *testing.T) {
	edges := map[string][]string{
		"a": {"b"},
		"b": {"c", "x"},
		"c": {"a"},
		"d": {"d"},
		"e": {"a"},
		"x": {"b"},
	}

	assert.Equal(t, [][]string{{"a", "b", "c"}, {"d"}}, Cycles([]string{"a", "b", "c", "d", "e"}, edges))
	assert.Equal(t, [][]string{{"a", "b", "c", "x"}, {"d"}}, Cycles([]string{"e", "d", "c", "b", "a", "x"}, edges))
	assert.Empty(t, Cycles([]string{"e", "a"}, edges))
	assert.Empty(t, Cycles(nil, edges))
}
