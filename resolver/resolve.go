/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import (
	"fmt"
	"slices"
	"strings"

	"bennypowers.dev/kesher/token"
	"bennypowers.dev/kesher/tree"
)

// DefaultMaxDepth is the default ceiling on reference chain length.
const DefaultMaxDepth = 10

// Options configures a resolution pass.
type Options struct {
	// PreserveOnError keeps the original reference in place of an
	// unresolvable value instead of dropping it. Default true.
	PreserveOnError bool

	// MaxDepth is the ceiling on reference chain length before a
	// chain aborts with a depth error. Default 10.
	MaxDepth int

	// Partial reports overall success when the only errors
	// encountered were missing references. Default false.
	Partial bool
}

// DefaultOptions returns the default resolution options.
func DefaultOptions() *Options {
	return &Options{
		PreserveOnError: true,
		MaxDepth:        DefaultMaxDepth,
	}
}

// normalizeOptions copies caller options so resolution never mutates
// them, filling in defaults for zero values. A nil opts uses
// DefaultOptions.
func normalizeOptions(opts *Options) *Options {
	if opts == nil {
		return DefaultOptions()
	}
	options := &Options{
		PreserveOnError: opts.PreserveOnError,
		MaxDepth:        opts.MaxDepth,
		Partial:         opts.Partial,
	}
	if options.MaxDepth <= 0 {
		options.MaxDepth = DefaultMaxDepth
	}
	return options
}

// ErrorKind classifies a resolution error.
type ErrorKind string

const (
	// ErrorMissing indicates the reference target is absent from the
	// document.
	ErrorMissing ErrorKind = "missing"

	// ErrorCircular indicates the target is already in the active
	// resolution chain.
	ErrorCircular ErrorKind = "circular"

	// ErrorDepthExceeded indicates the chain reached the configured
	// ceiling before bottoming out in a concrete value.
	ErrorDepthExceeded ErrorKind = "depth-exceeded"

	// ErrorInvalid indicates a structurally malformed reference.
	ErrorInvalid ErrorKind = "invalid"
)

// Error is a single non-fatal resolution error.
type Error struct {
	// Kind classifies the error.
	Kind ErrorKind

	// Path is the token whose value held the offending reference.
	Path string

	// Reference is the implicated reference string.
	Reference string

	// Message is a human-readable description.
	Message string

	// Chain is the full resolution chain for circular and depth
	// errors.
	Chain []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	sb.WriteString(": ")
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	if len(e.Chain) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(e.Chain, " -> "))
		sb.WriteString(")")
	}
	return sb.String()
}

// Result is the outcome of a resolution pass.
type Result struct {
	// Document is a fresh copy of the input with references replaced
	// by concrete values in place. The input is never mutated.
	Document map[string]any

	// Errors lists every non-fatal resolution error encountered.
	Errors []Error

	// Warnings lists document entries skipped during tree building.
	Warnings []tree.Warning

	// Success is true when no errors occurred, or under Partial when
	// only missing-reference errors occurred.
	Success bool

	// Values maps each resolved token path to its final value.
	Values map[string]any

	// Chains maps each reference-bearing token path to the chain of
	// paths its resolution followed, for diagnostics.
	Chains map[string][]string
}

// Resolve walks a document, replacing each reference with the
// resolved value of its target. Resolution is best-effort: an
// unresolvable chain is recorded and truncated while independent
// branches continue. A nil opts uses DefaultOptions.
func Resolve(doc map[string]any, opts *Options) *Result {
	options := normalizeOptions(opts)

	expanded, extendsErrors := ExpandExtends(doc)
	root, warnings := tree.Build(expanded)

	r := &resolution{
		opts:   options,
		index:  root.Index(),
		values: make(map[string]any),
		failed: make(map[string]any),
		errors: extendsErrors,
	}

	// Resolve tokens in canonical path order first so chain depth
	// accounting is deterministic; the document walk below then reads
	// the memoized results.
	for _, t := range root.AllTokens() {
		r.resolveTokenAt(t)
	}

	resolved := r.resolveGroup(expanded, nil)

	result := &Result{
		Document: resolved,
		Errors:   dedupeErrors(r.errors),
		Warnings: warnings,
		Values:   r.values,
		Chains:   r.buildChains(),
	}
	result.Success = r.success()
	return result
}

// ResolveTree resolves a built tree against itself, returning the
// per-path value and chain maps without producing a document.
func ResolveTree(root *token.Group, opts *Options) *Result {
	options := normalizeOptions(opts)

	r := &resolution{
		opts:   options,
		index:  root.Index(),
		values: make(map[string]any),
		failed: make(map[string]any),
	}

	for _, t := range root.AllTokens() {
		r.resolveTokenAt(t)
	}

	result := &Result{
		Errors: dedupeErrors(r.errors),
		Values: r.values,
		Chains: r.buildChains(),
	}
	result.Success = r.success()
	return result
}

// Annotate writes resolved values onto a caller-owned tree. The
// resolver itself never mutates its input; callers that want the
// original in-place annotation opt in here.
func Annotate(root *token.Group, result *Result) {
	for _, t := range root.AllTokens() {
		if v, ok := result.Values[t.DotPath()]; ok {
			t.ResolvedValue = v
			t.Resolved = true
		}
	}
}

// resolution carries the per-call state of one resolve invocation.
// Nothing is shared across calls, so concurrent invocations on
// distinct documents need no locking.
type resolution struct {
	opts   *Options
	index  map[string]*token.Token
	values map[string]any
	failed map[string]any
	errors []Error
}

func (r *resolution) success() bool {
	if len(r.errors) == 0 {
		return true
	}
	if !r.opts.Partial {
		return false
	}
	for _, e := range r.errors {
		if e.Kind != ErrorMissing {
			return false
		}
	}
	return true
}

// resolveGroup copies a document level, resolving token $values and
// recursing into groups. Entries that are neither are copied as-is.
func (r *resolution) resolveGroup(data map[string]any, path []string) map[string]any {
	out := make(map[string]any, len(data))
	for key, value := range data {
		if strings.HasPrefix(key, "$") {
			out[key] = copyValue(value)
			continue
		}

		valueMap, ok := value.(map[string]any)
		if !ok {
			out[key] = copyValue(value)
			continue
		}

		childPath := append(slices.Clip(slices.Clone(path)), key)
		tokenPath := strings.Join(childPath, ".")

		if t, isToken := r.index[tokenPath]; isToken {
			out[key] = r.resolveTokenEntry(valueMap, t)
			continue
		}

		out[key] = r.resolveGroup(valueMap, childPath)
	}
	return out
}

// resolveTokenEntry copies a token entry with its $value resolved. A
// pointer-only token gains a $value and sheds its $ref on success; on
// failure with PreserveOnError the $ref stays in its original
// top-level position.
func (r *resolution) resolveTokenEntry(entry map[string]any, t *token.Token) map[string]any {
	out := make(map[string]any, len(entry))
	for key, value := range entry {
		if key == "$value" || key == token.RefField {
			continue
		}
		out[key] = copyValue(value)
	}
	resolved := r.resolveTokenAt(t)
	if ref, isPointer := entry[token.RefField]; isPointer {
		if _, failed := r.failed[t.DotPath()]; failed && r.opts.PreserveOnError {
			out[token.RefField] = copyValue(ref)
			return out
		}
	}
	out["$value"] = resolved
	return out
}

// resolveTokenAt resolves one token's value, memoizing the result by
// path so repeated references to the same target are O(1) thereafter.
func (r *resolution) resolveTokenAt(t *token.Token) any {
	path := t.DotPath()
	if v, ok := r.values[path]; ok {
		return v
	}
	if v, ok := r.failed[path]; ok {
		return v
	}
	v, ok := r.resolveValue(t.Value, []string{path})
	if ok {
		r.values[path] = v
	} else {
		r.failed[path] = v
	}
	return v
}

// resolveValue resolves a value within the chain of the current
// reference expansion. Composite values resolve key by key, arrays
// element by element. The second return is false when any part of the
// value could not be resolved.
func (r *resolution) resolveValue(value any, chain []string) (any, bool) {
	switch v := value.(type) {
	case string:
		target, isRef := token.ExtractReference(v)
		if !isRef {
			return v, true
		}
		return r.follow(v, strings.Trim(v, "{}"), target, chain)

	case map[string]any:
		if rawRef, isPointer := v[token.RefField]; isPointer {
			raw, ok := rawRef.(string)
			if !ok || token.NormalizeReference(raw) == "" {
				r.errors = append(r.errors, Error{
					Kind:      ErrorInvalid,
					Path:      chain[len(chain)-1],
					Reference: fmt.Sprintf("%v", rawRef),
					Message:   "malformed $ref pointer",
				})
				return r.preserve(copyValue(v)), false
			}
			return r.follow(copyValue(v), raw, token.NormalizeReference(raw), chain)
		}

		out := make(map[string]any, len(v))
		allResolved := true
		for key, child := range v {
			resolved, ok := r.resolveValue(child, chain)
			if !ok {
				allResolved = false
			}
			out[key] = resolved
		}
		return out, allResolved

	case []any:
		out := make([]any, len(v))
		allResolved := true
		for i, elem := range v {
			resolved, ok := r.resolveValue(elem, chain)
			if !ok {
				allResolved = false
			}
			out[i] = resolved
		}
		return out, allResolved

	default:
		return value, true
	}
}

// follow expands one reference hop. original is the value to preserve
// on error; raw is the reference string for reporting.
func (r *resolution) follow(original any, raw, target string, chain []string) (any, bool) {
	source := chain[len(chain)-1]

	// A file-marked reference can never resolve against this document's
	// own index; normalization would otherwise alias it onto a local
	// path and silently return the wrong value.
	if file, cross := token.CrossFileTarget(raw); cross {
		r.errors = append(r.errors, Error{
			Kind:      ErrorMissing,
			Path:      source,
			Reference: raw,
			Message:   fmt.Sprintf("reference targets file %q which is not loaded", file),
		})
		return r.preserve(original), false
	}

	if v, ok := r.values[target]; ok {
		return v, true
	}

	if slices.Contains(chain, target) {
		r.errors = append(r.errors, Error{
			Kind:      ErrorCircular,
			Path:      source,
			Reference: raw,
			Message:   fmt.Sprintf("circular reference to %q", target),
			Chain:     append(slices.Clone(chain), target),
		})
		return r.preserve(original), false
	}

	next := append(slices.Clone(chain), target)
	if len(next) >= r.opts.MaxDepth {
		r.errors = append(r.errors, Error{
			Kind:      ErrorDepthExceeded,
			Path:      source,
			Reference: raw,
			Message:   fmt.Sprintf("reference chain exceeds maximum depth %d", r.opts.MaxDepth),
			Chain:     next,
		})
		return r.preserve(original), false
	}

	t, ok := r.index[target]
	if !ok {
		r.errors = append(r.errors, Error{
			Kind:      ErrorMissing,
			Path:      source,
			Reference: raw,
			Message:   fmt.Sprintf("reference target %q not found", target),
		})
		return r.preserve(original), false
	}

	v, resolved := r.resolveValue(t.Value, next)
	if resolved {
		r.values[target] = v
		return v, true
	}
	// Nested expansion failed; preserve this level's own reference
	// rather than whatever the failing level preserved.
	return r.preserve(original), false
}

// preserve returns the original reference when PreserveOnError is
// set, nil otherwise.
func (r *resolution) preserve(original any) any {
	if r.opts.PreserveOnError {
		return original
	}
	return nil
}

// buildChains computes the diagnostic reference chain for every
// reference-bearing token: the sequence of paths its whole-value
// reference expansion visits.
func (r *resolution) buildChains() map[string][]string {
	chains := make(map[string][]string)
	for path, t := range r.index {
		if !t.HasReferences() {
			continue
		}
		chain := []string{path}
		visited := map[string]bool{path: true}
		current := t
		for {
			target, ok := wholeValueTarget(current)
			if !ok || visited[target] {
				break
			}
			chain = append(chain, target)
			visited[target] = true
			next, found := r.index[target]
			if !found {
				break
			}
			current = next
		}
		chains[path] = chain
	}
	return chains
}

// wholeValueTarget returns the target path when a token's entire
// value is a single reference into the same document. File-marked
// references have no local target.
func wholeValueTarget(t *token.Token) (string, bool) {
	switch v := t.Value.(type) {
	case string:
		if _, cross := token.CrossFileTarget(strings.Trim(v, "{}")); cross {
			return "", false
		}
		return token.ExtractReference(v)
	case map[string]any:
		if raw, ok := v[token.RefField].(string); ok {
			if _, cross := token.CrossFileTarget(raw); cross {
				return "", false
			}
			return token.NormalizeReference(raw), true
		}
	}
	return "", false
}

// dedupeErrors drops exact repeats: a token expanded both through a
// referrer and standalone reports its failure once.
func dedupeErrors(errs []Error) []Error {
	if len(errs) < 2 {
		return errs
	}
	type key struct {
		kind      ErrorKind
		path      string
		reference string
	}
	seen := make(map[key]bool, len(errs))
	out := make([]Error, 0, len(errs))
	for _, e := range errs {
		k := key{e.Kind, e.Path, e.Reference}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

// copyValue deep-copies a document value so resolution never aliases
// the caller's input.
func copyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, child := range v {
			out[key] = copyValue(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = copyValue(elem)
		}
		return out
	default:
		return value
	}
}
