/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package graph

// Cycles is the outcome of cycle detection over a graph. An
// all-cyclic graph is a normal, fully-reported outcome; detection
// never fails.
type Cycles[N comparable] struct {
	// HasCycles is true when at least one cycle exists.
	HasCycles bool

	// Cycles holds one entry per strongly connected component of size
	// greater than one, plus single-node self-loops. Ordering within a
	// cycle follows Tarjan's stack extraction and is unspecified,
	// except single-node cycles which are exactly [n].
	Cycles [][]N

	// CyclicNodes is the union of all cycle members.
	CyclicNodes map[N]bool

	// TopologicalOrder is a dependency-respecting order over every
	// node in the graph, isolated nodes included. It is nil if and
	// only if HasCycles is true; an empty graph yields an empty,
	// non-nil order.
	TopologicalOrder []N
}

// DetectCycles finds all cycles via Tarjan's strongly-connected-
// components algorithm and, when the graph is acyclic, computes a
// topological order via Kahn's algorithm.
func (g *Graph[N]) DetectCycles() *Cycles[N] {
	result := &Cycles[N]{
		CyclicNodes: make(map[N]bool),
	}

	for _, component := range g.stronglyConnectedComponents() {
		isCycle := len(component) > 1
		if len(component) == 1 && g.HasEdge(component[0], component[0]) {
			isCycle = true
		}
		if !isCycle {
			continue
		}
		result.HasCycles = true
		result.Cycles = append(result.Cycles, component)
		for _, n := range component {
			result.CyclicNodes[n] = true
		}
	}

	if !result.HasCycles {
		result.TopologicalOrder = g.topologicalOrder()
	}

	return result
}

// stronglyConnectedComponents runs Tarjan's algorithm over the
// forward (depends-on) edges. Single pass, O(V+E).
func (g *Graph[N]) stronglyConnectedComponents() [][]N {
	index := 0
	stack := make([]N, 0, len(g.order))
	onStack := make(map[N]bool, len(g.order))
	indexOf := make(map[N]int, len(g.order))
	lowLink := make(map[N]int, len(g.order))
	var components [][]N

	var strongConnect func(N)
	strongConnect = func(v N) {
		indexOf[v] = index
		lowLink[v] = index
		index++

		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.dependencies[v] {
			if _, seen := indexOf[w]; !seen {
				strongConnect(w)
				if lowLink[w] < lowLink[v] {
					lowLink[v] = lowLink[w]
				}
			} else if onStack[w] && indexOf[w] < lowLink[v] {
				lowLink[v] = indexOf[w]
			}
		}

		if lowLink[v] != indexOf[v] {
			return
		}

		var component []N
		for {
			last := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[last] = false
			component = append(component, last)
			if last == v {
				break
			}
		}
		components = append(components, component)
	}

	for _, n := range g.order {
		if _, seen := indexOf[n]; !seen {
			strongConnect(n)
		}
	}

	return components
}

// topologicalOrder computes a dependency-first order via Kahn's
// algorithm: a node is emitted once all of its dependencies have been
// emitted. Must only be called on acyclic graphs.
func (g *Graph[N]) topologicalOrder() []N {
	pending := make(map[N]int, len(g.order))
	for _, n := range g.order {
		pending[n] = len(g.dependencies[n])
	}

	queue := make([]N, 0, len(g.order))
	for _, n := range g.order {
		if pending[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]N, 0, len(g.order))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)

		for _, dependent := range g.dependents[n] {
			pending[dependent]--
			if pending[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	return order
}
