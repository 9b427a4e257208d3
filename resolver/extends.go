/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"bennypowers.dev/kesher/schema"
	"bennypowers.dev/kesher/token"
)

// extension records one group that extends another.
type extension struct {
	// path locates the extending group.
	path []string

	// base locates the extended group.
	base []string

	// raw is the original $extends string.
	raw string
}

// ExpandExtends rewrites $extends group inheritance into concrete
// group members: each extending group gains copies of the entries its
// base group defines, except those it already defines itself. Runs
// before tree building so reference resolution sees the inherited
// tokens. Documents that are not 2025.10 pass through unchanged.
func ExpandExtends(doc map[string]any) (map[string]any, []Error) {
	if schema.DetectVersion(doc, schema.Unknown) != schema.V2025_10 {
		return doc, nil
	}

	extensions := findExtensions(doc, nil)
	if len(extensions) == 0 {
		return doc, nil
	}

	if cycle := extensionCycle(extensions); cycle != nil {
		raws := make(map[string]string, len(extensions))
		for _, ext := range extensions {
			raws[strings.Join(ext.path, ".")] = ext.raw
		}
		return doc, []Error{{
			Kind:      ErrorCircular,
			Path:      cycle[0],
			Reference: raws[cycle[0]],
			Message:   "circular $extends chain",
			Chain:     cycle,
		}}
	}

	out := copyValue(doc).(map[string]any)
	var errors []Error
	for _, ext := range sortByBaseDepth(extensions) {
		group, ok := lookupGroup(out, ext.path)
		if !ok {
			continue
		}
		base, ok := lookupGroup(out, ext.base)
		if !ok {
			errors = append(errors, Error{
				Kind:      ErrorMissing,
				Path:      strings.Join(ext.path, "."),
				Reference: ext.raw,
				Message:   fmt.Sprintf("$extends target %q not found", ext.raw),
			})
			continue
		}
		inherit(group, base)
		delete(group, token.ExtendsField)
	}
	return out, errors
}

// inherit copies base group entries the extending group does not
// define. The group's own entries always win. Inherited entries
// without a $type of their own keep the base group's.
func inherit(group, base map[string]any) {
	baseType, baseTyped := base["$type"]
	for key, value := range base {
		if strings.HasPrefix(key, "$") {
			continue
		}
		if _, defined := group[key]; defined {
			continue
		}
		copied := copyValue(value)
		if m, ok := copied.(map[string]any); ok && baseTyped {
			if _, typed := m["$type"]; !typed {
				m["$type"] = baseType
			}
		}
		group[key] = copied
	}
}

// findExtensions walks the document collecting every group carrying a
// parseable $extends pointer. Malformed pointers are the validator's
// concern and are skipped here.
func findExtensions(data map[string]any, currentPath []string) []extension {
	var extensions []extension
	for key, value := range data {
		if strings.HasPrefix(key, "$") {
			continue
		}
		valueMap, ok := value.(map[string]any)
		if !ok {
			continue
		}

		childPath := append(slices.Clip(slices.Clone(currentPath)), key)

		if raw, ok := valueMap[token.ExtendsField].(string); ok {
			if base := pointerSegments(raw); base != nil {
				extensions = append(extensions, extension{
					path: childPath,
					base: base,
					raw:  raw,
				})
			}
		}

		extensions = append(extensions, findExtensions(valueMap, childPath)...)
	}
	return extensions
}

// pointerSegments parses a same-document JSON pointer like "#/a/b"
// into path segments, with RFC 6901 unescaping.
func pointerSegments(ref string) []string {
	if !strings.HasPrefix(ref, "#/") {
		return nil
	}
	path := strings.TrimPrefix(ref, "#/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	// Order matters: ~1 before ~0
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		parts[i] = strings.ReplaceAll(part, "~0", "~")
	}
	return parts
}

// extensionCycle reports a circular $extends chain as the sequence of
// group paths forming the cycle, or nil when none exists.
func extensionCycle(extensions []extension) []string {
	next := make(map[string]string, len(extensions))
	for _, ext := range extensions {
		next[strings.Join(ext.path, ".")] = strings.Join(ext.base, ".")
	}

	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	var walk func(node string, path []string) []string
	walk = func(node string, path []string) []string {
		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		if to, ok := next[node]; ok {
			if onStack[to] {
				if start := slices.Index(path, to); start >= 0 {
					return append(path[start:], to)
				}
				return append(path, to)
			}
			if !visited[to] {
				if cycle := walk(to, path); cycle != nil {
					return cycle
				}
			}
		}

		onStack[node] = false
		return nil
	}

	nodes := make([]string, 0, len(next))
	for node := range next {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if !visited[node] {
			if cycle := walk(node, nil); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// sortByBaseDepth orders extensions so base groups expand before the
// groups extending them, letting chained inheritance see the already
// expanded base.
func sortByBaseDepth(extensions []extension) []extension {
	next := make(map[string]string, len(extensions))
	for _, ext := range extensions {
		next[strings.Join(ext.path, ".")] = strings.Join(ext.base, ".")
	}

	depths := make(map[string]int)
	var depth func(node string) int
	depth = func(node string) int {
		if d, ok := depths[node]; ok {
			return d
		}
		depths[node] = 0
		if to, ok := next[node]; ok {
			depths[node] = depth(to) + 1
		}
		return depths[node]
	}

	out := slices.Clone(extensions)
	sort.SliceStable(out, func(i, j int) bool {
		di := depth(strings.Join(out[i].path, "."))
		dj := depth(strings.Join(out[j].path, "."))
		if di != dj {
			return di < dj
		}
		return slices.Compare(out[i].path, out[j].path) < 0
	})
	return out
}

// lookupGroup descends the document to the group at path.
func lookupGroup(doc map[string]any, path []string) (map[string]any, bool) {
	current := doc
	for _, segment := range path {
		child, ok := current[segment].(map[string]any)
		if !ok {
			return nil, false
		}
		current = child
	}
	return current, true
}
