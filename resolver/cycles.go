/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import (
	"bennypowers.dev/kesher/graph"
	"bennypowers.dev/kesher/token"
)

// CycleDetection reports all reference cycles in a token tree or
// graph, and the safe resolution order when acyclic.
type CycleDetection struct {
	// HasCycles is true when at least one cycle exists.
	HasCycles bool

	// Cycles lists each cycle's member paths. Treat internal ordering
	// as unspecified except single-node self-references.
	Cycles [][]string

	// CyclicTokens is the union of all cycle members.
	CyclicTokens map[string]bool

	// TopologicalOrder is a valid resolution order over every token
	// participating in any reference; nil if and only if HasCycles.
	TopologicalOrder []string
}

// DetectCycles runs cycle detection over the dependency graph of a
// built tree.
func DetectCycles(root *token.Group) *CycleDetection {
	return DetectCyclesInGraph(BuildGraph(root))
}

// DetectCyclesInGraph runs cycle detection over an existing token
// dependency graph.
func DetectCyclesInGraph(g *graph.Graph[string]) *CycleDetection {
	cycles := g.DetectCycles()
	return &CycleDetection{
		HasCycles:        cycles.HasCycles,
		Cycles:           cycles.Cycles,
		CyclicTokens:     cycles.CyclicNodes,
		TopologicalOrder: cycles.TopologicalOrder,
	}
}
