package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hwir/internal/ir"
)

func libraryOf(mods ...*ir.Module) *ir.ModuleLib {
	lib := ir.NewModuleLib()
	for _, m := range mods {
		lib.Add(m)
	}
	return lib
}

func moduleWith(name string, targets ...string) *ir.Module {
	mod := &ir.Module{ModuleBase: ir.ModuleBase{Name: name}}
	for i, target := range targets {
		mod.Instances = append(mod.Instances, ir.Instance{Name: string(rune('a' + i)), ModuleName: target})
	}
	return mod
}

// TestAnalyzeInstantiation_Empty tests that an empty library produces no warnings.
func TestAnalyzeInstantiation_Empty(t *testing.T) {
	warnings := AnalyzeInstantiation(ir.NewModuleLib())
	assert.Empty(t, warnings)
}

// TestAnalyzeInstantiation_DAG tests that a hierarchy without loops produces no warnings.
func TestAnalyzeInstantiation_DAG(t *testing.T) {
	lib := libraryOf(
		moduleWith("Top", "Alu", "Ram", "Alu"),
		moduleWith("Alu", "Adder"),
		moduleWith("Adder"),
		moduleWith("Ram", "Missing"),
	)
	assert.Empty(t, AnalyzeInstantiation(lib))
}

// TestAnalyzeInstantiation_SelfLoop tests a module instantiating itself.
func TestAnalyzeInstantiation_SelfLoop(t *testing.T) {
	lib := libraryOf(moduleWith("Loop", "Loop"))

	warnings := AnalyzeInstantiation(lib)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"Loop", "Loop"}, warnings[0].Path)
	assert.Equal(t, "warning", warnings[0].Level)
	assert.Contains(t, warnings[0].Message, "instantiates itself")
}

// TestAnalyzeInstantiation_Cycle tests a loop through several modules.
func TestAnalyzeInstantiation_Cycle(t *testing.T) {
	lib := libraryOf(
		moduleWith("A", "B"),
		moduleWith("B", "C"),
		moduleWith("C", "A"),
		moduleWith("D", "A"),
	)

	warnings := AnalyzeInstantiation(lib)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"A", "B", "C", "A"}, warnings[0].Path)
	assert.Equal(t, "Instantiation cycle detected: A → B → C → A", warnings[0].Message)
}

// TestAnalyzeInstantiation_ExternalTargets tests that external modules end paths.
func TestAnalyzeInstantiation_ExternalTargets(t *testing.T) {
	lib := libraryOf(moduleWith("Top", "Ram"))
	lib.Add(&ir.ExternalModule{ModuleBase: ir.ModuleBase{Name: "Ram"}})
	assert.Empty(t, AnalyzeInstantiation(lib))
}
