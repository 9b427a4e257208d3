/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package schema

// DetectVersion detects the schema version of an already-parsed document.
// Priority order:
//  1. $schema field in the document root
//  2. fallback version supplied by the caller (config or flag)
//  3. duck typing on 2025.10-only features
//  4. draft, for backward compatibility
func DetectVersion(doc map[string]any, fallback Version) Version {
	if url, ok := doc["$schema"].(string); ok {
		if version, err := FromURL(url); err == nil {
			return version
		}
	}

	if fallback != Unknown {
		return fallback
	}

	if version := duckType(doc); version != Unknown {
		return version
	}

	return Draft
}

// duckType detects the schema version from unambiguous 2025.10 features.
func duckType(doc map[string]any) Version {
	if hasFeature(doc, "$ref") || hasFeature(doc, "$extends") {
		return V2025_10
	}
	if hasStructuredColor(doc) {
		return V2025_10
	}
	return Unknown
}

// hasFeature reports whether a field name exists anywhere in the structure.
func hasFeature(value any, name string) bool {
	switch v := value.(type) {
	case map[string]any:
		if _, exists := v[name]; exists {
			return true
		}
		for _, child := range v {
			if hasFeature(child, name) {
				return true
			}
		}
	case []any:
		for _, elem := range v {
			if hasFeature(elem, name) {
				return true
			}
		}
	}
	return false
}

// hasStructuredColor reports whether the document contains a 2025.10-style
// structured color value (a color token whose $value carries colorSpace).
func hasStructuredColor(value any) bool {
	switch v := value.(type) {
	case map[string]any:
		if colorType, ok := v["$type"].(string); ok && colorType == "color" {
			if val, ok := v["$value"].(map[string]any); ok {
				if _, hasSpace := val["colorSpace"]; hasSpace {
					return true
				}
			}
		}
		for _, child := range v {
			if hasStructuredColor(child) {
				return true
			}
		}
	case []any:
		for _, elem := range v {
			if hasStructuredColor(elem) {
				return true
			}
		}
	}
	return false
}
