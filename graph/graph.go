// Package graph provides a string-keyed dependency graph with Kahn's
// algorithm leveling. Nodes within a level share no ordering constraint
// and may be processed in parallel; output is deterministic, sorted within
// each level. It backs lifecycle start ordering.
package graph

import (
	"sort"
	"strings"

	"github.com/skillsenselab/wirekit/errors"
	"github.com/skillsenselab/wirekit/util"
)

// Graph accumulates nodes and dependency edges. The zero value is not
// usable; construct instances with New. Not safe for concurrent mutation.
type Graph struct {
	nodes map[string]struct{}
	// edges[from] holds the set of nodes that depend on from.
	edges map[string]map[string]struct{}
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]struct{}),
		edges: make(map[string]map[string]struct{}),
	}
}

// AddNode declares a node. Adding a node twice is a no-op.
func (g *Graph) AddNode(name string) {
	g.nodes[name] = struct{}{}
}

// AddEdge declares that to depends on from. Both endpoints are added as
// nodes if not already declared; duplicate edges collapse.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	set, ok := g.edges[from]
	if !ok {
		set = make(map[string]struct{})
		g.edges[from] = set
	}
	set[to] = struct{}{}
}

// Len returns the number of declared nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// HasNode reports whether name has been declared.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Nodes returns all declared node names in sorted order.
func (g *Graph) Nodes() []string {
	return util.SortedKeys(g.nodes)
}

// Levels groups nodes into dependency waves: level 0 holds nodes with no
// dependencies, level n holds nodes whose dependencies all appear in
// earlier levels. Names are sorted within each level. Returns a
// DEPENDENCY_CYCLE error naming the unresolved nodes when the graph is
// cyclic.
func (g *Graph) Levels() ([][]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for name := range g.nodes {
		inDegree[name] = 0
	}
	for _, dependents := range g.edges {
		for to := range dependents {
			inDegree[to]++
		}
	}

	var queue []string
	for name, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var levels [][]string
	visited := 0

	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)

		var next []string
		for _, name := range queue {
			for to := range g.edges[name] {
				inDegree[to]--
				if inDegree[to] == 0 {
					next = append(next, to)
				}
			}
		}
		sort.Strings(next)
		queue = next
	}

	if visited != len(g.nodes) {
		var stuck []string
		for name, deg := range inDegree {
			if deg > 0 {
				stuck = append(stuck, name)
			}
		}
		sort.Strings(stuck)
		return nil, errors.DependencyCycle("unresolved nodes: " + strings.Join(stuck, ", "))
	}

	return levels, nil
}

// TopoSort returns one dependency-respecting total order, the levels
// flattened. Deterministic for a given graph.
func (g *Graph) TopoSort() ([]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	order := make([]string, 0, len(g.nodes))
	for _, level := range levels {
		order = append(order, level...)
	}
	return order, nil
}
