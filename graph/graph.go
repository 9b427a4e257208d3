/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package graph provides a directed dependency graph with cycle
// detection and topological ordering, generic over the node type so
// the same machinery serves token paths and file paths.
package graph

// Graph is a directed graph where an edge from a to b means
// "a depends on b". Nodes are kept in insertion order so traversal is
// deterministic.
type Graph[N comparable] struct {
	dependencies map[N][]N
	dependents   map[N][]N
	nodes        map[N]bool
	order        []N
}

// New creates an empty graph.
func New[N comparable]() *Graph[N] {
	return &Graph[N]{
		dependencies: make(map[N][]N),
		dependents:   make(map[N][]N),
		nodes:        make(map[N]bool),
	}
}

// AddNode adds an isolated node. Adding an existing node is a no-op.
func (g *Graph[N]) AddNode(n N) {
	if g.nodes[n] {
		return
	}
	g.nodes[n] = true
	g.order = append(g.order, n)
}

// AddEdge records that from depends on to. Both endpoints become
// nodes. Duplicate edges are ignored.
func (g *Graph[N]) AddEdge(from, to N) {
	g.AddNode(from)
	g.AddNode(to)
	for _, existing := range g.dependencies[from] {
		if existing == to {
			return
		}
	}
	g.dependencies[from] = append(g.dependencies[from], to)
	g.dependents[to] = append(g.dependents[to], from)
}

// Nodes returns all nodes in insertion order.
func (g *Graph[N]) Nodes() []N {
	out := make([]N, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of nodes.
func (g *Graph[N]) Len() int {
	return len(g.nodes)
}

// Has reports whether the node is in the graph.
func (g *Graph[N]) Has(n N) bool {
	return g.nodes[n]
}

// Dependencies returns the nodes that n depends on.
func (g *Graph[N]) Dependencies(n N) []N {
	if deps, ok := g.dependencies[n]; ok {
		out := make([]N, len(deps))
		copy(out, deps)
		return out
	}
	return nil
}

// Dependents returns the nodes that depend on n.
func (g *Graph[N]) Dependents(n N) []N {
	if deps, ok := g.dependents[n]; ok {
		out := make([]N, len(deps))
		copy(out, deps)
		return out
	}
	return nil
}

// HasEdge reports whether from depends directly on to.
func (g *Graph[N]) HasEdge(from, to N) bool {
	for _, dep := range g.dependencies[from] {
		if dep == to {
			return true
		}
	}
	return false
}
