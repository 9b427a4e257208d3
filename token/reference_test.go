/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package token_test

import (
	"reflect"
	"testing"

	"bennypowers.dev/kesher/token"
)

func TestExtractReference(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"simple", "{color.primary}", "color.primary", true},
		{"single segment", "{base}", "base", true},
		{"interpolated is not a reference", "1px solid {color.border}", "", false},
		{"two references", "{a} {b}", "", false},
		{"plain string", "#FF6B35", "", false},
		{"empty braces", "{}", "", false},
		{"json pointer", "#/color/primary/$value", "color.primary", true},
		{"unbalanced", "{color.primary", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := token.ExtractReference(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ExtractReference(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("ExtractReference(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeReference(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"dot path unchanged", "color.primary", "color.primary"},
		{"pointer to dots", "#/color/primary/$value", "color.primary"},
		{"pointer without $value", "#/color/primary", "color.primary"},
		{"file prefix stripped", "base.json#/color/primary/$value", "color.primary"},
		{"escaped slash", "#/color/a~1b/$value", "color.a/b"},
		{"escaped tilde", "#/color/a~0b/$value", "color.a~b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := token.NormalizeReference(tt.ref)
			if got != tt.want {
				t.Errorf("NormalizeReference(%q) = %q, want %q", tt.ref, got, tt.want)
			}
			// Normalization must be idempotent
			if again := token.NormalizeReference(got); again != got {
				t.Errorf("NormalizeReference(%q) not idempotent: %q", got, again)
			}
		})
	}
}

func TestToJSONPointer(t *testing.T) {
	got := token.ToJSONPointer("color.primary")
	want := "#/color/primary/$value"
	if got != want {
		t.Errorf("ToJSONPointer = %q, want %q", got, want)
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	path := "color.brand.primary"
	if got := token.NormalizeReference(token.ToJSONPointer(path)); got != path {
		t.Errorf("round trip = %q, want %q", got, path)
	}
}

func TestHasReferences(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"whole reference", "{color.primary}", true},
		{"plain string", "#fff", false},
		{"nested map", map[string]any{"color": "{base}"}, true},
		{"ref field", map[string]any{"$ref": "#/color/base/$value"}, true},
		{"slice", []any{"1px", "{border.width}"}, true},
		{"number", 42.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := token.HasReferences(tt.value); got != tt.want {
				t.Errorf("HasReferences(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestCollectReferences(t *testing.T) {
	value := map[string]any{
		"width": "{border.width}",
		"color": "{color.primary}",
		"style": "solid",
	}

	refs := token.CollectReferences(value)

	paths := make([]string, len(refs))
	for i, r := range refs {
		paths[i] = r.Path
	}
	// Map keys are visited in sorted order, so output is deterministic
	want := []string{"color.primary", "border.width"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("CollectReferences paths = %v, want %v", paths, want)
	}
}

func TestCollectReferencesRefField(t *testing.T) {
	value := map[string]any{
		"$ref":  "#/color/base/$value",
		"other": "{ignored}",
	}

	refs := token.CollectReferences(value)
	if len(refs) != 1 {
		t.Fatalf("expected 1 reference, got %d", len(refs))
	}
	if refs[0].Path != "color.base" {
		t.Errorf("expected color.base, got %s", refs[0].Path)
	}
	if refs[0].Raw != "#/color/base/$value" {
		t.Errorf("expected raw pointer preserved, got %s", refs[0].Raw)
	}
}
