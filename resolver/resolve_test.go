/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"bennypowers.dev/kesher/resolver"
	"bennypowers.dev/kesher/tree"
)

func tokenValue(t *testing.T, doc map[string]any, keys ...string) any {
	t.Helper()
	current := any(doc)
	for _, key := range keys {
		m, ok := current.(map[string]any)
		if !ok {
			t.Fatalf("expected object at %v, got %T", keys, current)
		}
		current, ok = m[key]
		if !ok {
			t.Fatalf("missing key %q in %v", key, keys)
		}
	}
	return current
}

func TestResolveSimpleChain(t *testing.T) {
	doc := map[string]any{
		"color": map[string]any{
			"$type": "color",
			"base":  map[string]any{"$value": "#FF6B35"},
			"primary": map[string]any{
				"$value": "{color.base}",
			},
			"button": map[string]any{
				"$value": "{color.primary}",
			},
		},
	}

	result := resolver.Resolve(doc, nil)

	if !result.Success {
		t.Fatalf("expected success, got errors: %v", result.Errors)
	}
	if got := tokenValue(t, result.Document, "color", "button", "$value"); got != "#FF6B35" {
		t.Errorf("expected #FF6B35, got %v", got)
	}
	if result.Values["color.primary"] != "#FF6B35" {
		t.Errorf("expected Values entry, got %v", result.Values["color.primary"])
	}
}

func TestResolveDiamond(t *testing.T) {
	doc := map[string]any{
		"base": map[string]any{"$value": "4px"},
		"a":    map[string]any{"$value": "{base}"},
		"b":    map[string]any{"$value": "{base}"},
		"both": map[string]any{
			"$value": map[string]any{
				"left":  "{a}",
				"right": "{b}",
			},
		},
	}

	result := resolver.Resolve(doc, nil)

	if !result.Success {
		t.Fatalf("expected success, got %v", result.Errors)
	}
	want := map[string]any{"left": "4px", "right": "4px"}
	if got := tokenValue(t, result.Document, "both", "$value"); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestResolveMissingPreserved(t *testing.T) {
	doc := map[string]any{
		"accent": map[string]any{"$value": "{color.missing}"},
	}

	result := resolver.Resolve(doc, nil)

	if result.Success {
		t.Fatal("expected failure")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	e := result.Errors[0]
	if e.Kind != resolver.ErrorMissing {
		t.Errorf("expected missing, got %s", e.Kind)
	}
	if e.Path != "accent" {
		t.Errorf("expected path accent, got %s", e.Path)
	}
	// Default PreserveOnError keeps the original reference
	if got := tokenValue(t, result.Document, "accent", "$value"); got != "{color.missing}" {
		t.Errorf("expected preserved reference, got %v", got)
	}
}

func TestResolveMissingDropped(t *testing.T) {
	doc := map[string]any{
		"accent": map[string]any{"$value": "{color.missing}"},
	}

	opts := resolver.DefaultOptions()
	opts.PreserveOnError = false
	result := resolver.Resolve(doc, opts)

	if got := tokenValue(t, result.Document, "accent", "$value"); got != nil {
		t.Errorf("expected nil value, got %v", got)
	}
}

func TestResolvePartial(t *testing.T) {
	doc := map[string]any{
		"ok":     map[string]any{"$value": "{base}"},
		"base":   map[string]any{"$value": "1rem"},
		"broken": map[string]any{"$value": "{nowhere}"},
	}

	opts := resolver.DefaultOptions()
	opts.Partial = true
	result := resolver.Resolve(doc, opts)

	if !result.Success {
		t.Errorf("expected partial success despite missing reference")
	}
	if got := tokenValue(t, result.Document, "ok", "$value"); got != "1rem" {
		t.Errorf("expected independent branch resolved, got %v", got)
	}
}

func TestResolvePartialDoesNotForgiveCycles(t *testing.T) {
	doc := map[string]any{
		"a": map[string]any{"$value": "{b}"},
		"b": map[string]any{"$value": "{a}"},
	}

	opts := resolver.DefaultOptions()
	opts.Partial = true
	result := resolver.Resolve(doc, opts)

	if result.Success {
		t.Error("expected circular errors to fail even under Partial")
	}
}

func TestResolveCycle(t *testing.T) {
	doc := map[string]any{
		"a": map[string]any{"$value": "{b}"},
		"b": map[string]any{"$value": "{a}"},
		"c": map[string]any{"$value": "independent"},
	}

	result := resolver.Resolve(doc, nil)

	if result.Success {
		t.Fatal("expected failure")
	}
	for _, e := range result.Errors {
		if e.Kind != resolver.ErrorCircular {
			t.Errorf("expected circular, got %s", e.Kind)
		}
		if len(e.Chain) == 0 {
			t.Error("expected chain on circular error")
		}
	}
	// Cycle members keep their references; independent branches resolve
	if got := tokenValue(t, result.Document, "a", "$value"); got != "{b}" {
		t.Errorf("expected preserved {b}, got %v", got)
	}
	if got := tokenValue(t, result.Document, "c", "$value"); got != "independent" {
		t.Errorf("expected independent resolved, got %v", got)
	}
}

func TestResolveSelfReference(t *testing.T) {
	doc := map[string]any{
		"a": map[string]any{"$value": "{a}"},
	}

	result := resolver.Resolve(doc, nil)

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	e := result.Errors[0]
	if e.Kind != resolver.ErrorCircular {
		t.Errorf("expected circular, got %s", e.Kind)
	}
	want := []string{"a", "a"}
	if !reflect.DeepEqual(e.Chain, want) {
		t.Errorf("expected chain %v, got %v", want, e.Chain)
	}
}

func TestResolveDepthLimit(t *testing.T) {
	// t01 -> t02 -> ... -> t12, with t12 concrete
	doc := map[string]any{}
	for i := 1; i < 12; i++ {
		doc[fmt.Sprintf("t%02d", i)] = map[string]any{
			"$value": fmt.Sprintf("{t%02d}", i+1),
		}
	}
	doc["t12"] = map[string]any{"$value": "#000000"}

	result := resolver.Resolve(doc, nil)

	if result.Success {
		t.Fatal("expected depth failure")
	}
	for _, e := range result.Errors {
		if e.Kind != resolver.ErrorDepthExceeded {
			t.Errorf("expected depth-exceeded, got %s: %s", e.Kind, e.Message)
		}
	}
	// Tokens within MaxDepth of the concrete end still resolve
	if len(result.Values) != 9 {
		t.Errorf("expected exactly 9 resolved values, got %d: %v",
			len(result.Values), result.Values)
	}
	if result.Values["t04"] != "#000000" {
		t.Errorf("expected t04 resolved, got %v", result.Values["t04"])
	}
	if _, ok := result.Values["t03"]; ok {
		t.Error("expected t03 unresolved past the depth ceiling")
	}
}

func TestResolveRefPointer(t *testing.T) {
	doc := map[string]any{
		"base": map[string]any{"$value": "16px"},
		"alias": map[string]any{
			"$ref":  "#/base/$value",
			"$type": "dimension",
		},
	}

	result := resolver.Resolve(doc, nil)

	if !result.Success {
		t.Fatalf("expected success, got %v", result.Errors)
	}
	alias := tokenValue(t, result.Document, "alias").(map[string]any)
	if alias["$value"] != "16px" {
		t.Errorf("expected 16px, got %v", alias["$value"])
	}
	if _, hasRef := alias["$ref"]; hasRef {
		t.Error("expected $ref replaced by $value")
	}
	if alias["$type"] != "dimension" {
		t.Error("expected token metadata preserved")
	}
}

func TestResolveMalformedRefPointer(t *testing.T) {
	doc := map[string]any{
		"bad": map[string]any{"$ref": 42.0},
	}

	result := resolver.Resolve(doc, nil)

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Errors[0].Kind != resolver.ErrorInvalid {
		t.Errorf("expected invalid, got %s", result.Errors[0].Kind)
	}
}

func TestResolveInterpolationLeftAlone(t *testing.T) {
	doc := map[string]any{
		"border": map[string]any{"$value": "1px solid {color.border}"},
	}

	result := resolver.Resolve(doc, nil)

	// Interpolated strings are not references
	if !result.Success {
		t.Fatalf("expected success, got %v", result.Errors)
	}
	if got := tokenValue(t, result.Document, "border", "$value"); got != "1px solid {color.border}" {
		t.Errorf("expected untouched string, got %v", got)
	}
}

func TestResolveCompositeValue(t *testing.T) {
	doc := map[string]any{
		"size":  map[string]any{"border": map[string]any{"$value": "1px"}},
		"color": map[string]any{"border": map[string]any{"$value": "#ccc"}},
		"border": map[string]any{
			"$value": map[string]any{
				"width": "{size.border}",
				"style": "solid",
				"color": "{color.border}",
			},
		},
	}

	result := resolver.Resolve(doc, nil)

	if !result.Success {
		t.Fatalf("expected success, got %v", result.Errors)
	}
	want := map[string]any{"width": "1px", "style": "solid", "color": "#ccc"}
	if got := tokenValue(t, result.Document, "border", "$value"); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	doc := map[string]any{
		"base":  map[string]any{"$value": "4px"},
		"alias": map[string]any{"$value": "{base}"},
	}

	resolver.Resolve(doc, nil)

	if got := doc["alias"].(map[string]any)["$value"]; got != "{base}" {
		t.Errorf("expected input untouched, got %v", got)
	}
}

func TestResolveIdempotent(t *testing.T) {
	doc := map[string]any{
		"base":  map[string]any{"$value": "4px"},
		"alias": map[string]any{"$value": "{base}"},
	}

	first := resolver.Resolve(doc, nil)
	second := resolver.Resolve(first.Document, nil)

	if !second.Success {
		t.Fatalf("expected resolved document to resolve cleanly, got %v", second.Errors)
	}
	if !reflect.DeepEqual(first.Document, second.Document) {
		t.Error("expected resolution to be idempotent")
	}
}

func TestResolveChains(t *testing.T) {
	doc := map[string]any{
		"base":   map[string]any{"$value": "#fff"},
		"mid":    map[string]any{"$value": "{base}"},
		"button": map[string]any{"$value": "{mid}"},
	}

	result := resolver.Resolve(doc, nil)

	want := []string{"button", "mid", "base"}
	if !reflect.DeepEqual(result.Chains["button"], want) {
		t.Errorf("expected chain %v, got %v", want, result.Chains["button"])
	}
	if _, ok := result.Chains["base"]; ok {
		t.Error("expected no chain for reference-free token")
	}
}

func TestAnnotate(t *testing.T) {
	doc := map[string]any{
		"base":  map[string]any{"$value": "4px"},
		"alias": map[string]any{"$value": "{base}"},
	}

	root, _ := tree.Build(doc)
	result := resolver.ResolveTree(root, nil)
	if !result.Success {
		t.Fatalf("expected success, got %v", result.Errors)
	}

	alias, _ := root.Lookup("alias")
	if alias.Resolved {
		t.Fatal("expected tree untouched before Annotate")
	}

	resolver.Annotate(root, result)

	if !alias.Resolved || alias.ResolvedValue != "4px" {
		t.Errorf("expected annotated alias, got %v", alias.ResolvedValue)
	}
}

func TestResolveFileMarkedReferenceNeverLocal(t *testing.T) {
	doc := map[string]any{
		"color": map[string]any{
			"primary": map[string]any{"$value": "#LOCAL"},
		},
		"brand": map[string]any{
			"$value": "{b.json#/color/primary}",
		},
	}

	result := resolver.Resolve(doc, nil)

	// The target file was never loaded; the local color.primary must
	// not shadow it.
	if result.Success {
		t.Fatal("expected failure for a reference into an unloaded file")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	e := result.Errors[0]
	if e.Kind != resolver.ErrorMissing {
		t.Errorf("expected missing, got %s", e.Kind)
	}
	if !strings.Contains(e.Message, "b.json") {
		t.Errorf("expected error to name the unloaded file, got %q", e.Message)
	}
	if got := tokenValue(t, result.Document, "brand", "$value"); got != "{b.json#/color/primary}" {
		t.Errorf("expected preserved reference, got %v", got)
	}
	if _, ok := result.Values["brand"]; ok {
		t.Errorf("brand = %v, want unresolved", result.Values["brand"])
	}
}

func TestResolveFailedPointerKeepsRefPosition(t *testing.T) {
	doc := map[string]any{
		"alias": map[string]any{
			"$ref":  "#/missing/$value",
			"$type": "dimension",
		},
	}

	result := resolver.Resolve(doc, nil)

	if result.Success {
		t.Fatal("expected failure")
	}
	alias := tokenValue(t, result.Document, "alias").(map[string]any)
	if alias["$ref"] != "#/missing/$value" {
		t.Errorf("expected top-level $ref preserved, got %v", alias)
	}
	if _, hasValue := alias["$value"]; hasValue {
		t.Error("expected no $value wrapper around the failed pointer")
	}
	if alias["$type"] != "dimension" {
		t.Error("expected token metadata preserved")
	}
}

func TestResolveFileMarkedPointerKeepsRefPosition(t *testing.T) {
	doc := map[string]any{
		"color": map[string]any{
			"primary": map[string]any{"$value": "#ff0000"},
		},
		"brand": map[string]any{
			"$ref": "palette.json#/color/primary/$value",
		},
	}

	result := resolver.Resolve(doc, nil)

	if result.Success {
		t.Fatal("expected failure for a $ref into an unloaded file")
	}
	if result.Errors[0].Kind != resolver.ErrorMissing {
		t.Errorf("expected missing, got %s", result.Errors[0].Kind)
	}
	brand := tokenValue(t, result.Document, "brand").(map[string]any)
	if brand["$ref"] != "palette.json#/color/primary/$value" {
		t.Errorf("expected $ref preserved in place, got %v", brand)
	}
	if _, hasValue := brand["$value"]; hasValue {
		t.Error("expected no $value for an unresolved pointer token")
	}
}

func TestResolveTreeZeroValueOptions(t *testing.T) {
	doc := map[string]any{
		"base":  map[string]any{"$value": "4px"},
		"alias": map[string]any{"$value": "{base}"},
	}

	root, _ := tree.Build(doc)
	result := resolver.ResolveTree(root, &resolver.Options{PreserveOnError: true})

	// An unset MaxDepth falls back to the default rather than failing
	// every chain at depth zero.
	if !result.Success {
		t.Fatalf("expected success, got %v", result.Errors)
	}
	if result.Values["alias"] != "4px" {
		t.Errorf("alias = %v, want 4px", result.Values["alias"])
	}
}

func TestResolveWarningsSurfaceAndSkip(t *testing.T) {
	doc := map[string]any{
		"stray": "not an object",
		"ok":    map[string]any{"$value": "1"},
	}

	result := resolver.Resolve(doc, nil)

	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", result.Warnings)
	}
	if !result.Success {
		t.Error("expected warnings not to fail resolution")
	}
	// Skipped entries are still present in the output document
	if got := tokenValue(t, result.Document, "stray"); got != "not an object" {
		t.Errorf("expected stray entry copied through, got %v", got)
	}
}
