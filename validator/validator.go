/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package validator checks token documents for structural problems
// before resolution: malformed references, ambiguous entries,
// reserved-key misuse, and schema version mismatches.
package validator

import (
	"fmt"
	"strings"

	"bennypowers.dev/kesher/schema"
	"bennypowers.dev/kesher/token"
)

// ValidationError represents a structural or consistency error.
type ValidationError struct {
	// FilePath is the path to the file containing the error.
	FilePath string
	// Path is the dot path to the problematic element.
	Path string
	// Message describes what's wrong.
	Message string
	// Suggestion provides an actionable fix.
	Suggestion string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	if e.FilePath != "" {
		sb.WriteString(e.FilePath)
		sb.WriteString(": ")
	}
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if e.Suggestion != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Suggestion)
		sb.WriteString(")")
	}
	return sb.String()
}

// reservedKeys are the $-prefixed keys a document may carry.
var reservedKeys = map[string]bool{
	"$schema":      true,
	"$value":       true,
	"$type":        true,
	"$description": true,
	"$extensions":  true,
	"$deprecated":  true,
	"$ref":         true,
	"$extends":     true,
}

// Validate checks a parsed document against the given schema version.
func Validate(doc map[string]any, version schema.Version) []ValidationError {
	return ValidateWithPath(doc, version, "")
}

// ValidateWithPath validates a document and includes the file path in
// every error.
func ValidateWithPath(doc map[string]any, version schema.Version, filePath string) []ValidationError {
	v := &validation{version: version, filePath: filePath}
	v.walkGroup(doc, nil)
	return v.errors
}

type validation struct {
	version  schema.Version
	filePath string
	errors   []ValidationError
}

func (v *validation) record(path []string, message, suggestion string) {
	v.errors = append(v.errors, ValidationError{
		FilePath:   v.filePath,
		Path:       strings.Join(path, "."),
		Message:    message,
		Suggestion: suggestion,
	})
}

func (v *validation) walkGroup(group map[string]any, path []string) {
	for key, value := range group {
		if strings.HasPrefix(key, "$") {
			if key == token.ExtendsField {
				v.checkExtends(value, path)
				continue
			}
			v.checkReservedKey(key, path)
			continue
		}

		currentPath := append(path[:len(path):len(path)], key)

		entry, ok := value.(map[string]any)
		if !ok {
			v.record(currentPath, "entry is not an object",
				"wrap the value in a token object with $value")
			continue
		}

		_, hasValue := entry["$value"]
		_, hasRef := entry["$ref"]
		if hasValue || hasRef {
			v.checkToken(entry, currentPath)
			continue
		}

		// A group carrying only $extends is legal: its members arrive
		// through inheritance.
		_, extends := entry[token.ExtendsField]
		if !extends && len(childKeys(entry)) == 0 {
			v.record(currentPath, "entry has no $value and no children",
				"add a $value to make it a token, or child entries to make it a group")
			continue
		}

		v.walkGroup(entry, currentPath)
	}
}

func (v *validation) checkToken(entry map[string]any, path []string) {
	for key := range entry {
		if key == token.ExtendsField {
			v.record(path, "$extends is not valid on a token",
				"move $extends to the enclosing group")
		} else if strings.HasPrefix(key, "$") {
			v.checkReservedKey(key, path)
		} else {
			// Children under a token entry are unreachable
			v.record(append(path[:len(path):len(path)], key),
				"token has child entries",
				"move child entries out of the token, or remove $value to make it a group")
		}
	}

	if ref, ok := entry["$ref"]; ok {
		v.checkRefPointer(ref, path)
		if v.version == schema.Draft {
			v.record(path, "$ref is not valid in draft schema",
				"use curly-brace references like {token.path} or update to 2025.10 schema")
		}
	}

	if value, ok := entry["$value"]; ok {
		v.checkValue(value, path)
		if t, ok := entry["$type"].(string); ok && t == "color" {
			v.checkColorFormat(value, path)
		}
	}
}

// checkReservedKey flags $-prefixed keys outside the reserved set.
func (v *validation) checkReservedKey(key string, path []string) {
	if !reservedKeys[key] {
		v.record(append(path[:len(path):len(path)], key),
			fmt.Sprintf("unknown reserved key %q", key),
			"keys starting with $ are reserved; rename the entry")
	}
}

// checkExtends validates a group-level $extends: a same-document JSON
// pointer, 2025.10 only.
func (v *validation) checkExtends(ref any, path []string) {
	s, ok := ref.(string)
	if !ok {
		v.record(path, fmt.Sprintf("$extends must be a string, got %T", ref),
			"use a JSON pointer like #/base/colors")
		return
	}
	if !strings.HasPrefix(s, "#/") || s == "#/" {
		v.record(path, fmt.Sprintf("$extends %q is not a same-document JSON pointer", s),
			"use a JSON pointer like #/base/colors")
	}
	if v.version == schema.Draft {
		v.record(path, "$extends is not valid in draft schema",
			"remove $extends or update $schema to 2025.10")
	}
}

// checkRefPointer validates a $ref field: it must be a non-empty
// string.
func (v *validation) checkRefPointer(ref any, path []string) {
	s, ok := ref.(string)
	if !ok {
		v.record(path, fmt.Sprintf("$ref must be a string, got %T", ref),
			"use a JSON pointer like #/color/primary/$value")
		return
	}
	if s == "" {
		v.record(path, "$ref is empty",
			"use a JSON pointer like #/color/primary/$value")
	}
}

// checkValue walks a token value looking for malformed curly-brace
// references. Interpolated strings are allowed; unbalanced braces are
// not.
func (v *validation) checkValue(value any, path []string) {
	switch val := value.(type) {
	case string:
		if strings.Count(val, "{") != strings.Count(val, "}") {
			v.record(path, fmt.Sprintf("unbalanced braces in %q", val),
				"references take the form {token.path}")
			return
		}
		if strings.Contains(val, "{}") {
			v.record(path, "empty reference {}",
				"references take the form {token.path}")
		}
	case map[string]any:
		for key, child := range val {
			v.checkValue(child, append(path[:len(path):len(path)], key))
		}
	case []any:
		for i, child := range val {
			v.checkValue(child, append(path[:len(path):len(path)], fmt.Sprintf("%d", i)))
		}
	}
}

// checkColorFormat flags color value shapes that disagree with the
// schema version.
func (v *validation) checkColorFormat(value any, path []string) {
	switch val := value.(type) {
	case map[string]any:
		if _, hasSpace := val["colorSpace"]; hasSpace && v.version == schema.Draft {
			v.record(path, "structured color values are not valid in draft schema",
				"use string color format like \"#RRGGBB\" or update $schema to 2025.10")
		}
	case string:
		if v.version == schema.V2025_10 && !token.HasReferences(val) {
			v.record(path, fmt.Sprintf("string color value %q is not valid in 2025.10 schema", val),
				"use structured color format with colorSpace and components")
		}
	}
}

func childKeys(entry map[string]any) []string {
	keys := []string{}
	for key := range entry {
		if !strings.HasPrefix(key, "$") {
			keys = append(keys, key)
		}
	}
	return keys
}
