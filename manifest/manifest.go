/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package manifest models multi-variant build manifests: base token
// sets plus modifiers whose value combinations each select a file set.
package manifest

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"bennypowers.dev/kesher/fs"
	"bennypowers.dev/kesher/parser"
)

var (
	// ErrNoSets indicates a manifest with neither sets nor modifiers.
	ErrNoSets = errors.New("manifest defines no sets")

	// ErrEmptyModifier indicates a modifier with no values.
	ErrEmptyModifier = errors.New("modifier has no values")
)

// Set is a named group of token files always included in a build.
type Set struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values" yaml:"values"`
}

// ModifierValue is one selectable option of a modifier, carrying the
// token files included when it is chosen.
type ModifierValue struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values" yaml:"values"`
}

// Modifier is a build axis, like theme or density. One of its values
// is chosen per permutation.
type Modifier struct {
	Name   string          `json:"name" yaml:"name"`
	Values []ModifierValue `json:"values" yaml:"values"`
}

// Manifest describes a multi-variant token build: base sets included
// in every permutation, and modifiers whose value combinations fan out
// into permutations.
type Manifest struct {
	Name      string     `json:"name" yaml:"name"`
	Sets      []Set      `json:"sets" yaml:"sets"`
	Modifiers []Modifier `json:"modifiers" yaml:"modifiers"`
}

// Permutation is one concrete variant: the chosen value per modifier
// and the ordered union of token files that make it up.
type Permutation struct {
	// Values maps modifier name to the chosen value name.
	Values map[string]string

	// Files is the ordered file list: base set files first, then each
	// modifier's files in manifest order. Duplicates keep their first
	// position.
	Files []string
}

// Name returns a stable identifier for the permutation, like
// "theme-dark.density-compact", or "default" when there are no
// modifiers.
func (p *Permutation) Name() string {
	if len(p.Values) == 0 {
		return "default"
	}
	keys := make([]string, 0, len(p.Values))
	for k := range p.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s-%s", k, p.Values[k]))
	}
	return strings.Join(parts, ".")
}

// Parse decodes manifest data (JSON, JSONC or YAML).
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := parser.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ParseFile reads and parses a manifest file.
func ParseFile(filesystem fs.FileSystem, path string) (*Manifest, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func (m *Manifest) validate() error {
	if len(m.Sets) == 0 && len(m.Modifiers) == 0 {
		return ErrNoSets
	}
	for _, mod := range m.Modifiers {
		if len(mod.Values) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyModifier, mod.Name)
		}
	}
	return nil
}

// BaseFiles returns the files shared by every permutation, in set
// order with duplicates removed.
func (m *Manifest) BaseFiles() []string {
	files := []string{}
	seen := map[string]bool{}
	for _, set := range m.Sets {
		for _, f := range set.Values {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files
}

// Permutations enumerates the cartesian product of modifier values.
// Each permutation carries the ordered union of base set files and the
// chosen modifier files. A manifest without modifiers yields a single
// permutation of just the base files. Enumeration order is
// deterministic: the last modifier varies fastest.
func (m *Manifest) Permutations() []Permutation {
	choices := [][]int{{}}
	for _, mod := range m.Modifiers {
		next := make([][]int, 0, len(choices)*len(mod.Values))
		for _, c := range choices {
			for i := range mod.Values {
				combo := append(c[:len(c):len(c)], i)
				next = append(next, combo)
			}
		}
		choices = next
	}

	base := m.BaseFiles()
	perms := make([]Permutation, 0, len(choices))
	for _, combo := range choices {
		values := make(map[string]string, len(combo))
		files := append([]string{}, base...)
		seen := map[string]bool{}
		for _, f := range files {
			seen[f] = true
		}
		for mi, vi := range combo {
			mod := m.Modifiers[mi]
			val := mod.Values[vi]
			values[mod.Name] = val.Name
			for _, f := range val.Values {
				if !seen[f] {
					seen[f] = true
					files = append(files, f)
				}
			}
		}
		perms = append(perms, Permutation{Values: values, Files: files})
	}
	return perms
}
