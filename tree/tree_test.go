/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package tree_test

import (
	"testing"

	"bennypowers.dev/kesher/token"
	"bennypowers.dev/kesher/tree"
)

func TestBuildTypeInheritance(t *testing.T) {
	doc := map[string]any{
		"color": map[string]any{
			"$type": "color",
			"brand": map[string]any{
				"primary": map[string]any{"$value": "#FF6B35"},
				"weight":  map[string]any{"$type": "fontWeight", "$value": 700.0},
			},
		},
	}

	root, warnings := tree.Build(doc)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	primary, ok := root.Lookup("color.brand.primary")
	if !ok {
		t.Fatal("expected color.brand.primary")
	}
	if primary.Type != "color" {
		t.Errorf("expected inherited type color, got %q", primary.Type)
	}

	weight, _ := root.Lookup("color.brand.weight")
	if weight.Type != "fontWeight" {
		t.Errorf("expected own type to win over inherited, got %q", weight.Type)
	}
}

func TestBuildWarnings(t *testing.T) {
	doc := map[string]any{
		"scalar": "not an object",
		"empty":  map[string]any{"$description": "no value, no children"},
		"ok":     map[string]any{"$value": "1rem"},
	}

	root, warnings := tree.Build(doc)

	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
	paths := map[string]bool{}
	for _, w := range warnings {
		paths[w.Path] = true
	}
	if !paths["scalar"] || !paths["empty"] {
		t.Errorf("expected warnings for scalar and empty, got %v", warnings)
	}

	if len(root.AllTokens()) != 1 {
		t.Errorf("expected skipped entries to be dropped, got %d tokens", len(root.AllTokens()))
	}
}

func TestBuildRefToken(t *testing.T) {
	doc := map[string]any{
		"alias": map[string]any{"$ref": "#/base/$value"},
		"base":  map[string]any{"$value": "16px"},
	}

	root, warnings := tree.Build(doc)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	alias, ok := root.Lookup("alias")
	if !ok {
		t.Fatal("expected alias token despite missing $value")
	}
	if alias.Resolved {
		t.Error("expected alias to start unresolved")
	}
	if paths := alias.ReferencePaths(); len(paths) != 1 || paths[0] != "base" {
		t.Errorf("expected reference to base, got %v", paths)
	}

	base, _ := root.Lookup("base")
	if !base.Resolved {
		t.Error("expected reference-free token to start resolved")
	}
}

func TestBuildExtractsCompositeReferences(t *testing.T) {
	doc := map[string]any{
		"border": map[string]any{
			"$value": map[string]any{
				"width": "{size.border}",
				"style": "solid",
				"color": "{color.border}",
			},
		},
	}

	root, _ := tree.Build(doc)
	border, _ := root.Lookup("border")
	paths := border.ReferencePaths()
	want := []string{"color.border", "size.border"}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("expected %v, got %v", want, paths)
	}
}

func TestWalkOrder(t *testing.T) {
	doc := map[string]any{
		"b": map[string]any{"$value": "2"},
		"a": map[string]any{
			"nested": map[string]any{"$value": "1"},
		},
	}

	root, _ := tree.Build(doc)

	var visited []string
	tree.Walk(root,
		func(g *token.Group) { visited = append(visited, "g:"+g.DotPath()) },
		func(t *token.Token) { visited = append(visited, "t:"+t.DotPath()) },
	)

	want := []string{"g:", "t:b", "g:a", "t:a.nested"}
	if len(visited) != len(want) {
		t.Fatalf("expected %v, got %v", want, visited)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, visited)
		}
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	doc := map[string]any{
		"size": map[string]any{"$value": "{base}"},
		"base": map[string]any{"$value": "4px"},
	}

	tree.Build(doc)

	if doc["size"].(map[string]any)["$value"] != "{base}" {
		t.Error("expected input document untouched")
	}
}
