// Package order computes the update order of a module's instances and user
// tick code blocks.
package order

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/hwir/internal/ir"
)

// NameConflictError reports a name declared twice in the update-order
// namespace, for example an instance and a code block with the same name.
type NameConflictError struct {
	Module string
	Name   string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("module %s: %q is declared more than once among instances and code blocks", e.Module, e.Name)
}

// LoopError reports sequence constraints that cannot be satisfied.
type LoopError struct {
	Module string
	Nodes  []string   // nodes left unordered, sorted
	Cycles [][]string // strongly connected components, each sorted
}

func (e *LoopError) Error() string {
	parts := make([]string, 0, len(e.Cycles))
	for _, c := range e.Cycles {
		parts = append(parts, "["+strings.Join(c, " ")+"]")
	}
	return fmt.Sprintf("module %s: update order has loops: %s", e.Module, strings.Join(parts, ", "))
}

// Resolver orders instances and code blocks so that the former of every
// update constraint and stalled connection comes before the latter.
// Endpoints that are neither an instance nor a code block, such as
// ir.TopInterface, are ignored. Unconstrained nodes keep declaration order,
// instances first.
type Resolver struct{}

// UpdateOrder returns the update order of mod, or a *LoopError when the
// constraints loop and a *NameConflictError when a name repeats.
func (Resolver) UpdateOrder(mod *ir.Module) ([]string, error) {
	return UpdateOrderWith(mod, nil)
}

// UpdateOrderWith orders mod as if extra constraints were also declared.
// It answers whether adding a constraint would create a loop.
func UpdateOrderWith(mod *ir.Module, extra []ir.SequenceConnection) ([]string, error) {
	g, err := buildGraph(mod, extra)
	if err != nil {
		return nil, err
	}
	order := g.kahn()
	// Every node placed means no loops
	if len(order) == len(g.nodes) {
		return order, nil
	}

	// Nodes Kahn could not place are on a loop or downstream of one
	placed := make(map[string]bool, len(order))
	for _, n := range order {
		placed[n] = true
	}
	var left []string
	for _, n := range g.nodes {
		if !placed[n] {
			left = append(left, n)
		}
	}
	sort.Strings(left)

	return nil, &LoopError{Module: mod.Name, Nodes: left, Cycles: Cycles(left, g.edges)}
}

// graph is the constraint graph over instances and code blocks.
type graph struct {
	nodes []string       // declaration order
	index map[string]int // node -> declaration position
	edges map[string][]string
}

// buildGraph collects the nodes of mod, instances then code blocks, and
// one edge per distinct constraint whose endpoints are both nodes.
func buildGraph(mod *ir.Module, extra []ir.SequenceConnection) (*graph, error) {
	g := &graph{
		index: make(map[string]int),
		edges: make(map[string][]string),
	}
	add := func(name string) error {
		if _, ok := g.index[name]; ok {
			return &NameConflictError{Module: mod.Name, Name: name}
		}
		g.index[name] = len(g.nodes)
		g.nodes = append(g.nodes, name)
		return nil
	}
	for _, inst := range mod.Instances {
		if err := add(inst.Name); err != nil {
			return nil, err
		}
	}
	for _, blk := range mod.UserTickCodeBlocks {
		if err := add(blk.Name); err != nil {
			return nil, err
		}
	}

	// Duplicate constraints would inflate in-degrees
	seen := make(map[ir.SequenceConnection]bool)
	link := func(seqs []ir.SequenceConnection) {
		for _, s := range seqs {
			_, okFormer := g.index[s.Former]
			_, okLatter := g.index[s.Latter]
			if !okFormer || !okLatter || seen[s] {
				continue
			}
			seen[s] = true
			g.edges[s.Former] = append(g.edges[s.Former], s.Latter)
		}
	}
	link(mod.UpdateConstraints)
	link(mod.StalledConnections)
	link(extra)
	return g, nil
}

// kahn runs Kahn's algorithm, always taking the earliest declared ready node.
func (g *graph) kahn() []string {
	indeg := make(map[string]int, len(g.nodes))
	for _, targets := range g.edges {
		for _, v := range targets {
			indeg[v]++
		}
	}

	var ready []int
	for i, n := range g.nodes {
		if indeg[n] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		u := g.nodes[ready[0]]
		ready = ready[1:]
		order = append(order, u)
		for _, v := range g.edges[u] {
			indeg[v]--
			if indeg[v] == 0 {
				ready = insertSorted(ready, g.index[v])
			}
		}
	}
	return order
}

// insertSorted inserts v into the sorted slice s.
func insertSorted(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// Cycles returns the loops of a directed graph: strongly connected
// components with two or more nodes, or one node with a self edge. Edges to
// nodes outside nodes are ignored. Each cycle is sorted and cycles are
// ordered by their first node.
func Cycles(nodes []string, edges map[string][]string) [][]string {
	member := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		member[n] = true
	}

	var (
		counter = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		cycles  [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range edges[v] {
			if !member[w] {
				continue
			}
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is not the root of a component
		if lowlink[v] != indices[v] {
			return
		}
		var scc []string
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		// Single nodes only count when they loop onto themselves
		if len(scc) > 1 || hasSelfEdge(v, edges) {
			sort.Strings(scc)
			cycles = append(cycles, scc)
		}
	}

	for _, n := range nodes {
		if _, visited := indices[n]; !visited {
			strongConnect(n)
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

func hasSelfEdge(n string, edges map[string][]string) bool {
	for _, w := range edges[n] {
		if w == n {
			return true
		}
	}
	return false
}
