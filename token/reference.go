/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package token

import (
	"regexp"
	"sort"
	"strings"
)

// Reference is a derived relationship from a token value to another
// token's path.
type Reference struct {
	// Raw is the original reference content, without brace delimiters.
	Raw string

	// Path is the canonical dot-separated target path.
	Path string
}

// RefField is the reserved field name for structural pointer
// references (2025.10 only).
const RefField = "$ref"

// ExtendsField is the reserved group key for group inheritance
// (2025.10 only).
const ExtendsField = "$extends"

// wholeReferencePattern matches values that are exactly one brace
// reference, e.g. "{color.primary}". Values mixing literal text with a
// brace expression are intentionally not recognized as references.
var wholeReferencePattern = regexp.MustCompile(`^\{([^{}]+)\}$`)

// bracePattern matches any brace expression inside a string, used only
// to answer whether references exist somewhere in a value.
var bracePattern = regexp.MustCompile(`\{[^{}]+\}`)

// ExtractReference recognizes string values that are a single
// reference: either one whole brace expression like "{color.primary}"
// or a JSON pointer like "#/color/primary/$value". Partial or
// interpolated matches return ok == false.
func ExtractReference(raw string) (string, bool) {
	if matches := wholeReferencePattern.FindStringSubmatch(raw); len(matches) == 2 {
		return NormalizeReference(matches[1]), true
	}
	if strings.HasPrefix(raw, "#/") {
		return NormalizeReference(raw), true
	}
	return "", false
}

// HasReferences recursively reports whether any reference exists
// anywhere within a value: brace expressions in strings, $ref fields
// in mappings, or either nested inside lists and composite values.
func HasReferences(value any) bool {
	switch v := value.(type) {
	case string:
		return bracePattern.MatchString(v) || strings.HasPrefix(v, "#/")
	case map[string]any:
		if _, ok := v[RefField].(string); ok {
			return true
		}
		for _, child := range v {
			if HasReferences(child) {
				return true
			}
		}
	case []any:
		for _, elem := range v {
			if HasReferences(elem) {
				return true
			}
		}
	}
	return false
}

// NormalizeReference converts any supported reference form to a
// canonical dot-separated path. It strips a leading file fragment
// marker ("theme.json#/a/b" becomes "#/a/b"), converts JSON pointer
// paths ("#/a/b/$value" becomes "a.b", with RFC 6901 unescaping), and
// leaves already-dotted paths unchanged, so it is idempotent.
func NormalizeReference(ref string) string {
	if i := strings.Index(ref, "#"); i > 0 {
		ref = ref[i:]
	}
	if !strings.HasPrefix(ref, "#/") {
		return ref
	}
	path := strings.TrimPrefix(ref, "#/")
	path = strings.TrimSuffix(path, "/$value")
	parts := strings.Split(path, "/")
	// Order matters: ~1 before ~0
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		parts[i] = strings.ReplaceAll(part, "~0", "~")
	}
	return strings.Join(parts, ".")
}

// CrossFileTarget reports whether a raw reference targets another
// file, returning the file portion when it does. Recognized forms are
// absolute URLs, file-fragment references like "theme.json#/a/b", and
// whole-file paths containing a separator. Same-file references return
// ok == false.
func CrossFileTarget(raw string) (string, bool) {
	if IsURL(raw) {
		file, _, _ := strings.Cut(raw, "#")
		return file, true
	}
	if i := strings.Index(raw, "#"); i > 0 {
		return raw[:i], true
	}
	if !strings.HasPrefix(raw, "#") && strings.ContainsRune(raw, '/') {
		return raw, true
	}
	return "", false
}

// IsURL recognizes absolute URL reference targets.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "file://")
}

// ToJSONPointer converts a canonical dot path to a JSON pointer
// addressing the token's value. Example: "color.brand.primary" becomes
// "#/color/brand/primary/$value". Segments containing "~" or "/" are
// escaped per RFC 6901.
func ToJSONPointer(path string) string {
	parts := strings.Split(path, ".")
	// Order matters: ~ before /
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~", "~0")
		parts[i] = strings.ReplaceAll(part, "/", "~1")
	}
	return "#/" + strings.Join(parts, "/") + "/$value"
}

// CollectReferences extracts every reference occurrence in a value,
// recursing through composite mappings and lists. Only whole-string
// brace references and $ref pointer fields are extracted.
func CollectReferences(value any) []Reference {
	var refs []Reference
	collectReferences(value, &refs)
	return refs
}

func collectReferences(value any, out *[]Reference) {
	switch v := value.(type) {
	case string:
		if matches := wholeReferencePattern.FindStringSubmatch(v); len(matches) == 2 {
			*out = append(*out, Reference{
				Raw:  matches[1],
				Path: NormalizeReference(matches[1]),
			})
		} else if strings.HasPrefix(v, "#/") {
			*out = append(*out, Reference{Raw: v, Path: NormalizeReference(v)})
		}
	case map[string]any:
		if raw, ok := v[RefField].(string); ok {
			*out = append(*out, Reference{
				Raw:  raw,
				Path: NormalizeReference(raw),
			})
			return
		}
		// Deterministic discovery order across map iteration
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectReferences(v[k], out)
		}
	case []any:
		for _, elem := range v {
			collectReferences(elem, out)
		}
	}
}
