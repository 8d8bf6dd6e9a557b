package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/hwir/internal/ir"
	"github.com/roach88/hwir/internal/order"
)

// CycleWarning represents a loop in the module instantiation graph.
//
// Loops are warnings, not errors: encoding expands instance targets one
// level deep and terminates regardless, but code generation for such a
// library would not.
type CycleWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["A", "B", "A"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning"
}

// AnalyzeInstantiation reports modules that instantiate themselves,
// directly or through other modules of the library. Instances of modules
// missing from the library are ignored.
//
// A library without loops returns an empty warning list.
func AnalyzeInstantiation(lib *ir.ModuleLib) []CycleWarning {
	names := lib.Names()
	if len(names) == 0 {
		return []CycleWarning{}
	}

	graph := buildInstantiationGraph(lib, names)

	warnings := []CycleWarning{}
	for _, scc := range order.Cycles(names, graph) {
		warnings = append(warnings, cycleSCCToWarning(scc, graph))
	}
	return warnings
}

// instantiationGraph maps module name -> module names it instantiates.
type instantiationGraph map[string][]string

// buildInstantiationGraph has one edge per distinct target module that is
// present in the library. External modules have no instances.
func buildInstantiationGraph(lib *ir.ModuleLib, names []string) instantiationGraph {
	graph := make(instantiationGraph, len(names))
	for _, name := range names {
		mod, ok := lib.Module(name)
		if !ok {
			continue
		}
		seen := make(map[string]bool)
		for _, inst := range mod.Instances {
			if seen[inst.ModuleName] {
				continue
			}
			if _, known := lib.Get(inst.ModuleName); !known {
				continue
			}
			seen[inst.ModuleName] = true
			graph[name] = append(graph[name], inst.ModuleName)
		}
	}
	return graph
}

// cycleSCCToWarning converts an SCC to a CycleWarning.
func cycleSCCToWarning(scc []string, graph instantiationGraph) CycleWarning {
	// Order only reports single-node components with a self edge
	if len(scc) == 1 {
		name := scc[0]
		return CycleWarning{
			Path:    []string{name, name},
			Message: fmt.Sprintf("Module instantiates itself: %s → %s", name, name),
			Level:   "warning",
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("Instantiation cycle detected: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath builds a cycle path from an SCC.
//
// Strategy: Start at first node in SCC, follow edges to other SCC members,
// continue until we return to start node.
func reconstructCyclePath(scc []string, graph instantiationGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool)
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)

		if next == start {
			break
		}

		current = next
	}

	return path
}
