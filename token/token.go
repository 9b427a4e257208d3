/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package token provides DTCG design token tree types.
package token

import "strings"

// Token is a leaf entity in a token tree. It carries a concrete or
// reference-bearing value plus optional type, description and extension
// metadata. See: https://design-tokens.github.io/community-group/format/
type Token struct {
	// Name is the token's terminal name within its parent group.
	Name string

	// Path is the canonical path segments from the document root.
	Path []string

	// Type is the token type (color, dimension, ...). It may be
	// inherited from an ancestor group during tree building.
	Type string

	// Value is the raw $value: a scalar, an ordered list, or a
	// composite mapping whose entries may themselves hold references.
	Value any

	// Description is optional documentation for the token.
	Description string

	// Extensions holds namespaced third-party metadata.
	Extensions map[string]any

	// FilePath is the file this token was loaded from, when known.
	FilePath string

	// References are the references extracted from Value, in
	// discovery order.
	References []Reference

	// Resolved indicates whether ResolvedValue is populated. Tokens
	// without references start resolved.
	Resolved bool

	// ResolvedValue is the value after reference resolution.
	ResolvedValue any
}

// DotPath returns the canonical dot-separated path of this token.
func (t *Token) DotPath() string {
	return strings.Join(t.Path, ".")
}

// HasReferences reports whether this token's value contains references.
func (t *Token) HasReferences() bool {
	return len(t.References) > 0
}

// ReferencePaths returns the canonical target paths of this token's
// references, in discovery order.
func (t *Token) ReferencePaths() []string {
	paths := make([]string, 0, len(t.References))
	for _, ref := range t.References {
		paths = append(paths, ref.Path)
	}
	return paths
}
