/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package project

import (
	"strings"

	"bennypowers.dev/kesher/resolver"
	"bennypowers.dev/kesher/token"
)

// Resolve resolves every file in dependency order, substituting
// cross-file reference targets from already-resolved files before
// delegating to per-file resolution. When file-level cycles exist, no
// resolution runs and the cycles are returned instead.
func (p *Project) Resolve(opts *resolver.Options) (map[string]*resolver.Result, [][]string) {
	p.BuildCrossFileReferences()

	order, cycles := p.ResolutionOrder()
	if cycles != nil {
		return nil, cycles
	}

	results := make(map[string]*resolver.Result, len(p.files))

	for _, path := range order {
		f, ok := p.files[path]
		if !ok {
			// External or unloaded target: dependents record
			// missing-reference errors during their own pass.
			continue
		}

		doc := f.Document
		for _, ref := range f.CrossRefs {
			target, loaded := results[ref.ToFile]
			if !loaded || ref.ToToken == "" {
				continue
			}
			value, resolved := target.Values[ref.ToToken]
			if !resolved {
				continue
			}
			doc = substituteDoc(doc, ref.Raw, value)
			ref.Resolved = true
		}

		results[path] = resolver.Resolve(doc, opts)
	}

	return results, nil
}

// substituteDoc returns a copy of doc with every occurrence of the raw
// cross-file reference replaced by the resolved value. A token-level
// $ref becomes a $value so the entry keeps its token shape; references
// inside values are replaced in place.
func substituteDoc(doc map[string]any, raw string, replacement any) map[string]any {
	out := make(map[string]any, len(doc))
	for key, value := range doc {
		entry, ok := value.(map[string]any)
		if !ok || strings.HasPrefix(key, "$") {
			out[key] = value
			continue
		}

		_, hasValue := entry["$value"]
		pointer, hasRef := entry[token.RefField].(string)
		switch {
		case hasRef && pointer == raw:
			rewritten := make(map[string]any, len(entry))
			for k, v := range entry {
				if k == token.RefField {
					continue
				}
				rewritten[k] = v
			}
			rewritten["$value"] = replacement
			out[key] = rewritten
		case hasValue || hasRef:
			rewritten := make(map[string]any, len(entry))
			for k, v := range entry {
				rewritten[k] = substituteValue(v, raw, replacement)
			}
			out[key] = rewritten
		default:
			out[key] = substituteDoc(entry, raw, replacement)
		}
	}
	return out
}

// substituteValue replaces reference occurrences inside a token value:
// whole-string brace form or a $ref pointer map.
func substituteValue(value any, raw string, replacement any) any {
	switch v := value.(type) {
	case string:
		if v == "{"+raw+"}" {
			return replacement
		}
		return v
	case map[string]any:
		if pointer, ok := v[token.RefField].(string); ok && pointer == raw {
			return replacement
		}
		out := make(map[string]any, len(v))
		for key, child := range v {
			out[key] = substituteValue(child, raw, replacement)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = substituteValue(elem, raw, replacement)
		}
		return out
	default:
		return value
	}
}
