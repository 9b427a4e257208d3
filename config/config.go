/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package config provides configuration loading for kesher.
package config

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"bennypowers.dev/kesher/schema"
)

// Config represents the kesher project configuration.
type Config struct {
	// BasePath is the directory cross-file references resolve
	// against. Defaults to the config file's directory.
	BasePath string `yaml:"basePath" json:"basePath"`

	// Files specifies token files to load, in layer order: later
	// files override earlier ones when merged.
	Files []FileSpec `yaml:"files" json:"files"`

	// Manifest is the path to a multi-variant build manifest.
	Manifest string `yaml:"manifest" json:"manifest"`

	// Output is the default path resolved bundles are written to.
	Output string `yaml:"output" json:"output"`

	// Schema forces a specific schema version (optional).
	// Valid values: "draft", "v2025_10"
	Schema string `yaml:"schema" json:"schema"`

	// MaxDepth overrides the default reference chain ceiling.
	MaxDepth int `yaml:"maxDepth" json:"maxDepth"`
}

// FileSpec represents a token file specification. It can be specified
// as a simple string path or as an object with overrides.
type FileSpec struct {
	// Path is the file path (supports globs).
	Path string `yaml:"path" json:"path"`

	// Optional marks a layer whose absence is not an error.
	Optional bool `yaml:"optional" json:"optional"`
}

// UnmarshalYAML handles both string and object forms for FileSpec.
func (f *FileSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Path = node.Value
		return nil
	}

	type rawFileSpec FileSpec
	return node.Decode((*rawFileSpec)(f))
}

// UnmarshalJSON handles both string and object forms for FileSpec.
func (f *FileSpec) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Path = s
		return nil
	}

	type rawFileSpec FileSpec
	return json.Unmarshal(data, (*rawFileSpec)(f))
}

// Default returns a config with default values.
func Default() *Config {
	return &Config{
		BasePath: ".",
	}
}

// SchemaVersion returns the parsed schema version from the Schema
// field, or schema.Unknown when empty or invalid.
func (c *Config) SchemaVersion() schema.Version {
	if c.Schema == "" {
		return schema.Unknown
	}
	v, err := schema.FromString(c.Schema)
	if err != nil {
		return schema.Unknown
	}
	return v
}

// FilePaths returns the list of file paths from all FileSpecs.
func (c *Config) FilePaths() []string {
	paths := make([]string, 0, len(c.Files))
	for _, spec := range c.Files {
		paths = append(paths, spec.Path)
	}
	return paths
}
