/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package resolver provides token reference resolution: dependency
// graphs, cycle detection, and value resolution over token documents.
package resolver

import (
	"bennypowers.dev/kesher/graph"
	"bennypowers.dev/kesher/token"
	"bennypowers.dev/kesher/tree"
)

// BuildGraph builds a token dependency graph from a built tree.
// For every token with references it records forward edges to each
// referenced path and reverse edges back to the token. Tokens that
// reference nothing do not appear in the graph.
func BuildGraph(root *token.Group) *graph.Graph[string] {
	g := graph.New[string]()
	for _, t := range root.AllTokens() {
		for _, ref := range t.References {
			g.AddEdge(t.DotPath(), ref.Path)
		}
	}
	return g
}

// BuildGraphFromDocument builds a token dependency graph directly
// from a raw document. Equivalent to building the tree first.
func BuildGraphFromDocument(doc map[string]any) *graph.Graph[string] {
	root, _ := tree.Build(doc)
	return BuildGraph(root)
}
