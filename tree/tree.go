/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package tree builds typed token trees from raw token documents.
package tree

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"bennypowers.dev/kesher/token"
)

// Warning reports a document entry that is neither clearly a token nor
// a group. Such entries are skipped, never fatal.
type Warning struct {
	// Path is the canonical dot path of the offending entry.
	Path string

	// Message describes why the entry was skipped.
	Message string
}

func (w Warning) String() string {
	if w.Path == "" {
		return w.Message
	}
	return w.Path + ": " + w.Message
}

// Build converts a raw nested document into a typed tree of Token and
// Group nodes. Group $type declarations propagate to descendant tokens
// that don't redeclare their own. Each token's references are extracted
// and normalized during the build; tokens without references start
// resolved. Build is a pure function of its input.
func Build(doc map[string]any) (*token.Group, []Warning) {
	root := token.NewRoot()
	var warnings []Warning
	if groupType, ok := doc["$type"].(string); ok {
		root.Type = groupType
	}
	if desc, ok := doc["$description"].(string); ok {
		root.Description = desc
	}
	buildChildren(root, doc, root.Type, &warnings)
	return root, warnings
}

// buildChildren populates a group from its document entries.
// inheritedType is the nearest ancestor $type.
func buildChildren(parent *token.Group, data map[string]any, inheritedType string, warnings *[]Warning) {
	for _, key := range childKeys(data) {
		childPath := appendPath(parent.Path, key)

		valueMap, ok := data[key].(map[string]any)
		if !ok {
			*warnings = append(*warnings, Warning{
				Path:    strings.Join(childPath, "."),
				Message: fmt.Sprintf("entry is neither a token nor a group (unexpected %T)", data[key]),
			})
			continue
		}

		_, hasValue := valueMap["$value"]
		_, hasRef := valueMap[token.RefField]

		if hasValue || hasRef {
			parent.AddToken(buildToken(key, childPath, valueMap, inheritedType))
			continue
		}

		if len(childKeys(valueMap)) == 0 {
			*warnings = append(*warnings, Warning{
				Path:    strings.Join(childPath, "."),
				Message: "entry has no $value and no children",
			})
			continue
		}

		group := token.NewGroup(key, childPath)
		group.Type = inheritedType
		if groupType, ok := valueMap["$type"].(string); ok {
			group.Type = groupType
		}
		if desc, ok := valueMap["$description"].(string); ok {
			group.Description = desc
		}
		parent.AddGroup(group)
		buildChildren(group, valueMap, group.Type, warnings)
	}
}

// buildToken creates a Token node from a token-shaped entry.
func buildToken(name string, path []string, valueMap map[string]any, inheritedType string) *token.Token {
	value := valueMap["$value"]
	if value == nil {
		// Pointer-only tokens carry the $ref as their value; malformed
		// pointers are carried too so the resolver can report them.
		if ref, ok := valueMap[token.RefField]; ok {
			value = map[string]any{token.RefField: ref}
		}
	}

	t := &token.Token{
		Name:  name,
		Path:  path,
		Value: value,
	}

	if typeStr, ok := valueMap["$type"].(string); ok {
		t.Type = typeStr
	} else {
		t.Type = inheritedType
	}
	if desc, ok := valueMap["$description"].(string); ok {
		t.Description = desc
	}
	if extensions, ok := valueMap["$extensions"].(map[string]any); ok {
		t.Extensions = extensions
	}

	t.References = token.CollectReferences(value)
	t.Resolved = len(t.References) == 0

	return t
}

// childKeys returns the non-metadata keys of a document entry in
// sorted order for deterministic trees.
func childKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		if strings.HasPrefix(k, "$") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// appendPath extends a path without sharing backing arrays between
// siblings.
func appendPath(path []string, segment string) []string {
	return append(slices.Clip(slices.Clone(path)), segment)
}

// Walk visits every group and token in the tree, depth first. Group
// callbacks run before their children.
func Walk(root *token.Group, visitGroup func(*token.Group), visitToken func(*token.Token)) {
	if visitGroup != nil {
		visitGroup(root)
	}
	for _, key := range sortedTokenKeys(root.Tokens) {
		if visitToken != nil {
			visitToken(root.Tokens[key])
		}
	}
	for _, key := range sortedGroupKeys(root.Groups) {
		Walk(root.Groups[key], visitGroup, visitToken)
	}
}

func sortedTokenKeys(m map[string]*token.Token) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedGroupKeys(m map[string]*token.Group) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
