/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package project extends reference resolution to multi-file token
// projects: cross-file reference classification, file-level dependency
// graphs, and per-file resolution in dependency order.
package project

import (
	"path/filepath"
	"sort"
	"strings"

	"bennypowers.dev/kesher/graph"
	"bennypowers.dev/kesher/token"
	"bennypowers.dev/kesher/tree"
)

// File is one token document within a project.
type File struct {
	// Path is the project-relative cleaned file path.
	Path string

	// Document is the raw parsed document.
	Document map[string]any

	// Tree is the built token tree.
	Tree *token.Group

	// Warnings are tree-building warnings for this file.
	Warnings []tree.Warning

	// CrossRefs are this file's references into other files.
	CrossRefs []*CrossFileRef
}

// CrossFileRef records one reference whose target lives in a
// different source file.
type CrossFileRef struct {
	// FromToken is the referring token's canonical path.
	FromToken string

	// ToFile is the target file path, resolved against the project
	// base path, or the URL verbatim for remote targets.
	ToFile string

	// ToToken is the canonical target path within the target file.
	// Empty for whole-file references.
	ToToken string

	// Raw is the original reference string.
	Raw string

	// Resolved indicates whether resolution substituted a value for
	// this reference.
	Resolved bool
}

// Project owns a set of token files and their cross-file
// relationships.
type Project struct {
	// BasePath is the directory relative reference targets resolve
	// against.
	BasePath string

	files map[string]*File
	order []string
}

// New creates an empty project rooted at basePath.
func New(basePath string) *Project {
	return &Project{
		BasePath: basePath,
		files:    make(map[string]*File),
	}
}

// AddFile registers a document under a project path, building its
// tree. Re-adding a path replaces the prior file.
func (p *Project) AddFile(path string, doc map[string]any) *File {
	clean := p.cleanPath(path)
	root, warnings := tree.Build(doc)
	f := &File{
		Path:     clean,
		Document: doc,
		Tree:     root,
		Warnings: warnings,
	}
	if _, exists := p.files[clean]; !exists {
		p.order = append(p.order, clean)
	}
	p.files[clean] = f
	return f
}

// File returns the file registered under path.
func (p *Project) File(path string) (*File, bool) {
	f, ok := p.files[p.cleanPath(path)]
	return f, ok
}

// Files returns the project files in registration order.
func (p *Project) Files() []*File {
	out := make([]*File, 0, len(p.order))
	for _, path := range p.order {
		out = append(out, p.files[path])
	}
	return out
}

// Paths returns the registered file paths in registration order.
func (p *Project) Paths() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

func (p *Project) cleanPath(path string) string {
	if token.IsURL(path) {
		return path
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.BasePath, path)
	}
	return filepath.Clean(path)
}

// BuildCrossFileReferences classifies every token reference in every
// file as same-file (ignored here) or cross-file, recording a
// CrossFileRef for each of the latter.
func (p *Project) BuildCrossFileReferences() {
	for _, path := range p.order {
		f := p.files[path]
		f.CrossRefs = nil
		for _, t := range f.Tree.AllTokens() {
			for _, ref := range t.References {
				toFile, toToken, ok := p.classify(ref.Raw)
				if !ok {
					continue
				}
				f.CrossRefs = append(f.CrossRefs, &CrossFileRef{
					FromToken: t.DotPath(),
					ToFile:    toFile,
					ToToken:   toToken,
					Raw:       ref.Raw,
				})
			}
		}
		sort.SliceStable(f.CrossRefs, func(i, j int) bool {
			return f.CrossRefs[i].FromToken < f.CrossRefs[j].FromToken
		})
	}
}

// classify splits a raw reference into target file and token when the
// reference is cross-file. Same-file references return ok == false.
func (p *Project) classify(raw string) (toFile, toToken string, ok bool) {
	file, cross := token.CrossFileTarget(raw)
	if !cross {
		return "", "", false
	}
	fragment := strings.TrimPrefix(raw, file)
	if token.IsURL(raw) {
		return file, token.NormalizeReference(fragment), true
	}
	return p.cleanPath(file), token.NormalizeReference(fragment), true
}

// BuildDependencyGraph lifts cross-file references into a file-level
// dependency graph. Every registered file appears as a node; edges
// point at the files a file's tokens reference.
func (p *Project) BuildDependencyGraph() *graph.Graph[string] {
	g := graph.New[string]()
	for _, path := range p.order {
		g.AddNode(path)
	}
	for _, path := range p.order {
		for _, ref := range p.files[path].CrossRefs {
			if ref.ToFile == path {
				continue
			}
			g.AddEdge(path, ref.ToFile)
		}
	}
	return g
}

// DetectCircularDependencies reports file-level reference cycles.
func (p *Project) DetectCircularDependencies() [][]string {
	return p.BuildDependencyGraph().DetectCycles().Cycles
}

// ResolutionOrder returns the file processing order in which every
// file follows the files it depends on. The second return lists
// file-level cycles; when present the order is nil.
func (p *Project) ResolutionOrder() ([]string, [][]string) {
	cycles := p.BuildDependencyGraph().DetectCycles()
	if cycles.HasCycles {
		return nil, cycles.Cycles
	}
	return cycles.TopologicalOrder, nil
}
