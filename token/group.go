/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package token

import (
	"sort"
	"strings"
)

// Group is an interior entity in a token tree. It holds named child
// tokens and groups and optionally propagates a default $type to
// children that don't declare their own.
type Group struct {
	// Name is the group's terminal name. Empty for the document root.
	Name string

	// Path is the canonical path segments from the document root.
	// Empty for the root group.
	Path []string

	// Type is the inherited $type applied to descendant tokens.
	Type string

	// Description is optional documentation for the group.
	Description string

	// Tokens contains the direct child tokens by name.
	Tokens map[string]*Token

	// Groups contains the direct child groups by name.
	Groups map[string]*Group

	parent *Group
}

// NewGroup creates an empty group with the given name and path.
func NewGroup(name string, path []string) *Group {
	return &Group{
		Name:   name,
		Path:   path,
		Tokens: make(map[string]*Token),
		Groups: make(map[string]*Group),
	}
}

// NewRoot creates an empty root group. The root has an empty path and
// no parent.
func NewRoot() *Group {
	return NewGroup("", nil)
}

// DotPath returns the canonical dot-separated path of this group.
// The root group returns "".
func (g *Group) DotPath() string {
	return strings.Join(g.Path, ".")
}

// Parent returns the parent group, or nil for the root. The owning
// direction is strictly parent to children; this is a lookup edge only.
func (g *Group) Parent() *Group {
	return g.parent
}

// AddToken attaches a child token to this group.
func (g *Group) AddToken(t *Token) {
	g.Tokens[t.Name] = t
}

// AddGroup attaches a child group to this group and records the
// parent back-reference.
func (g *Group) AddGroup(child *Group) {
	child.parent = g
	g.Groups[child.Name] = child
}

// AllTokens returns all tokens in this group and nested groups,
// sorted by canonical path for deterministic output.
func (g *Group) AllTokens() []*Token {
	var tokens []*Token
	g.collectTokens(&tokens)
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].DotPath() < tokens[j].DotPath()
	})
	return tokens
}

func (g *Group) collectTokens(out *[]*Token) {
	for _, t := range g.Tokens {
		*out = append(*out, t)
	}
	for _, nested := range g.Groups {
		nested.collectTokens(out)
	}
}

// Lookup finds a token by canonical dot-separated path relative to
// this group.
func (g *Group) Lookup(path string) (*Token, bool) {
	if path == "" {
		return nil, false
	}
	segments := strings.Split(path, ".")
	current := g
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current.Groups[segment]
		if !ok {
			return nil, false
		}
		current = next
	}
	t, ok := current.Tokens[segments[len(segments)-1]]
	return t, ok
}

// LookupGroup finds a nested group by canonical dot-separated path
// relative to this group.
func (g *Group) LookupGroup(path string) (*Group, bool) {
	if path == "" {
		return g, true
	}
	current := g
	for _, segment := range strings.Split(path, ".") {
		next, ok := current.Groups[segment]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Index returns a map from canonical dot path to token for every
// token in this group and nested groups.
func (g *Group) Index() map[string]*Token {
	index := make(map[string]*Token)
	for _, t := range g.AllTokens() {
		index[t.DotPath()] = t
	}
	return index
}
