/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package merge deep-merges token documents with type-aware,
// depth-limited, conflict-tolerant semantics.
package merge

import (
	"fmt"
	"reflect"
	"strings"
)

// maxDepth bounds merge recursion on pathological nesting. Beyond the
// ceiling the overlay wins wholesale.
const maxDepth = 64

// Merge deep-merges two token documents; the overlay wins conflicts
// silently. Groups and composite token values merge key-wise, scalars,
// arrays and scalar-valued token leaves are replaced wholesale, and
// $extensions deep-merge per third-party namespace. Neither input is
// mutated.
func Merge(base, overlay map[string]any) map[string]any {
	merged, _ := mergeMaps(base, overlay, nil, nil, 0)
	return merged
}

// All left-folds Merge over documents in order; later documents win.
func All(docs ...map[string]any) map[string]any {
	if len(docs) == 0 {
		return map[string]any{}
	}
	result := docs[0]
	for _, doc := range docs[1:] {
		result = Merge(result, doc)
	}
	return result
}

// Safe merges like Merge but additionally collects a record for every
// type or shape conflict it resolved. The merge itself never aborts.
func Safe(base, overlay map[string]any) (map[string]any, []Conflict) {
	var conflicts []Conflict
	merged, _ := mergeMaps(base, overlay, nil, &conflicts, 0)
	return merged, conflicts
}

// mergeMaps merges two mapping levels key-wise. The second return is
// false when the depth ceiling was hit and the overlay was taken
// wholesale.
func mergeMaps(base, overlay map[string]any, path []string, conflicts *[]Conflict, depth int) (map[string]any, bool) {
	if depth >= maxDepth {
		return copyMap(overlay), false
	}

	out := make(map[string]any, len(base)+len(overlay))
	for key, value := range base {
		out[key] = copyAny(value)
	}

	for key, overlayValue := range overlay {
		baseValue, exists := base[key]
		if !exists {
			out[key] = copyAny(overlayValue)
			continue
		}
		out[key] = mergeEntry(baseValue, overlayValue, append(path[:len(path):len(path)], key), conflicts, depth+1)
	}

	return out, true
}

// mergeEntry merges one key's competing values.
func mergeEntry(base, overlay any, path []string, conflicts *[]Conflict, depth int) any {
	baseMap, baseIsMap := base.(map[string]any)
	overlayMap, overlayIsMap := overlay.(map[string]any)

	// Scalars and arrays are replaced wholesale.
	if !baseIsMap || !overlayIsMap {
		if conflicts != nil && !reflect.DeepEqual(base, overlay) {
			record(conflicts, path, KindValueConflict, base, overlay,
				"values differ, overlay wins")
		}
		return copyAny(overlay)
	}

	baseIsToken := isTokenLeaf(baseMap)
	overlayIsToken := isTokenLeaf(overlayMap)

	// Group on one side, token on the other: overlay wins wholesale.
	if baseIsToken != overlayIsToken {
		record(conflicts, path, KindGroupTokenConflict, base, overlay,
			"group and token collide, overlay wins")
		return copyAny(overlay)
	}

	if baseIsToken {
		return mergeToken(baseMap, overlayMap, path, conflicts, depth)
	}

	merged, _ := mergeMaps(baseMap, overlayMap, path, conflicts, depth)
	return merged
}

// mergeToken merges two token entries field-wise. Composite $values
// merge key-wise; scalar and array $values are replaced.
func mergeToken(base, overlay map[string]any, path []string, conflicts *[]Conflict, depth int) any {
	out := make(map[string]any, len(base)+len(overlay))
	for key, value := range base {
		out[key] = copyAny(value)
	}

	if conflicts != nil {
		baseType, baseHas := base["$type"].(string)
		overlayType, overlayHas := overlay["$type"].(string)
		if baseHas && overlayHas && baseType != overlayType {
			record(conflicts, append(path[:len(path):len(path)], "$type"), KindTypeMismatch, baseType, overlayType,
				fmt.Sprintf("token type changes from %q to %q", baseType, overlayType))
		}
	}

	for key, overlayValue := range overlay {
		baseValue, exists := base[key]
		if !exists {
			out[key] = copyAny(overlayValue)
			continue
		}

		switch key {
		case "$value":
			out[key] = mergeTokenValue(baseValue, overlayValue, append(path[:len(path):len(path)], key), conflicts, depth)
		case "$extensions":
			out[key] = mergeExtensions(baseValue, overlayValue, append(path[:len(path):len(path)], key), conflicts, depth)
		default:
			if conflicts != nil && !reflect.DeepEqual(baseValue, overlayValue) {
				record(conflicts, append(path[:len(path):len(path)], key), KindValueConflict, baseValue, overlayValue,
					"token metadata differs, overlay wins")
			}
			out[key] = copyAny(overlayValue)
		}
	}

	return out
}

// mergeTokenValue merges competing $value contents. Composite
// mappings merge key-wise; anything else is replaced wholesale,
// arrays included.
func mergeTokenValue(base, overlay any, path []string, conflicts *[]Conflict, depth int) any {
	baseMap, baseIsMap := base.(map[string]any)
	overlayMap, overlayIsMap := overlay.(map[string]any)
	if !baseIsMap || !overlayIsMap {
		if conflicts != nil && !reflect.DeepEqual(base, overlay) {
			record(conflicts, path, KindValueConflict, base, overlay,
				"token value replaced by overlay")
		}
		return copyAny(overlay)
	}
	merged, _ := mergeMaps(baseMap, overlayMap, path, conflicts, depth)
	return merged
}

// mergeExtensions deep-merges $extensions so independent third-party
// tool namespaces don't clobber each other's metadata.
func mergeExtensions(base, overlay any, path []string, conflicts *[]Conflict, depth int) any {
	baseMap, baseIsMap := base.(map[string]any)
	overlayMap, overlayIsMap := overlay.(map[string]any)
	if !baseIsMap || !overlayIsMap {
		return copyAny(overlay)
	}
	merged, _ := mergeMaps(baseMap, overlayMap, path, conflicts, depth)
	return merged
}

// isTokenLeaf reports whether a mapping is a token entry.
func isTokenLeaf(m map[string]any) bool {
	if _, ok := m["$value"]; ok {
		return true
	}
	_, ok := m["$ref"]
	return ok
}

func record(conflicts *[]Conflict, path []string, kind ConflictKind, base, overlay any, message string) {
	if conflicts == nil {
		return
	}
	*conflicts = append(*conflicts, Conflict{
		Path:    strings.Join(path, "."),
		Kind:    kind,
		Base:    base,
		Overlay: overlay,
		Winner:  WinnerOverlay,
		Message: message,
	})
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, value := range m {
		out[key] = copyAny(value)
	}
	return out
}

func copyAny(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return copyMap(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = copyAny(elem)
		}
		return out
	default:
		return value
	}
}
