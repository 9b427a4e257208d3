/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package parser reads raw token document bytes into document trees.
package parser

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"bennypowers.dev/kesher/fs"
)

// Parse parses JSON, JSONC or YAML token data into a document.
func Parse(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Unmarshal decodes JSON, JSONC or YAML data into v, sniffing the
// format first.
func Unmarshal(data []byte, v any) error {
	if isLikelyJSON(data) {
		// Strip comments and trailing commas before decoding
		if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
			return fmt.Errorf("failed to parse JSON: %w", err)
		}
		return nil
	}

	if m, ok := v.(*map[string]any); ok {
		var yamlRaw any
		if err := yaml.Unmarshal(data, &yamlRaw); err != nil {
			return fmt.Errorf("failed to parse YAML: %w", err)
		}
		normalized, ok := normalizeMap(yamlRaw).(map[string]any)
		if !ok {
			return fmt.Errorf("YAML root must be an object")
		}
		*m = normalized
		return nil
	}

	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// ParseFile reads and parses a token file.
func ParseFile(filesystem fs.FileSystem, path string) (map[string]any, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	return doc, nil
}

// isLikelyJSON checks if data appears to be JSON rather than YAML.
// JSON documents start with '{' (optionally preceded by whitespace or
// a BOM).
func isLikelyJSON(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case 0xEF, 0xBB, 0xBF: // UTF-8 BOM
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

// normalizeMap recursively converts map[any]any to map[string]any.
// YAML with numeric keys (like "10:") produces map[any]any, which must
// be normalized for string-keyed processing.
func normalizeMap(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			x[k] = normalizeMap(val)
		}
		return x
	case map[any]any:
		result := make(map[string]any, len(x))
		for k, val := range x {
			result[fmt.Sprintf("%v", k)] = normalizeMap(val)
		}
		return result
	case []any:
		for i, val := range x {
			x[i] = normalizeMap(val)
		}
		return x
	default:
		return v
	}
}
