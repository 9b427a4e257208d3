/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package manifest_test

import (
	"errors"
	"testing"

	"bennypowers.dev/kesher/internal/mapfs"
	"bennypowers.dev/kesher/manifest"
)

const manifestJSON = `{
	"name": "design-system",
	"sets": [
		{"name": "core", "values": ["core/colors.json", "core/sizes.json"]},
		{"name": "semantic", "values": ["semantic.json", "core/colors.json"]}
	],
	"modifiers": [
		{
			"name": "theme",
			"values": [
				{"name": "light", "values": ["themes/light.json"]},
				{"name": "dark", "values": ["themes/dark.json"]}
			]
		},
		{
			"name": "density",
			"values": [
				{"name": "regular", "values": []},
				{"name": "compact", "values": ["density/compact.json"]}
			]
		}
	]
}`

func TestParse(t *testing.T) {
	m, err := manifest.Parse([]byte(manifestJSON))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if m.Name != "design-system" {
		t.Errorf("Name = %q", m.Name)
	}
	if len(m.Sets) != 2 || len(m.Modifiers) != 2 {
		t.Errorf("sets = %d, modifiers = %d", len(m.Sets), len(m.Modifiers))
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
name: minimal
sets:
  - name: core
    values:
      - tokens.yaml
`)
	m, err := manifest.Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(m.Sets) != 1 || m.Sets[0].Values[0] != "tokens.yaml" {
		t.Errorf("Sets = %+v", m.Sets)
	}
}

func TestParseValidation(t *testing.T) {
	t.Run("no sets", func(t *testing.T) {
		_, err := manifest.Parse([]byte(`{"name": "empty"}`))
		if !errors.Is(err, manifest.ErrNoSets) {
			t.Errorf("error = %v, want ErrNoSets", err)
		}
	})

	t.Run("empty modifier", func(t *testing.T) {
		_, err := manifest.Parse([]byte(`{
			"sets": [{"name": "core", "values": ["a.json"]}],
			"modifiers": [{"name": "theme", "values": []}]
		}`))
		if !errors.Is(err, manifest.ErrEmptyModifier) {
			t.Errorf("error = %v, want ErrEmptyModifier", err)
		}
	})

	t.Run("invalid syntax", func(t *testing.T) {
		if _, err := manifest.Parse([]byte(`{nope`)); err == nil {
			t.Error("expected a parse error")
		}
	})
}

func TestParseFile(t *testing.T) {
	fsys := mapfs.New()
	fsys.AddFile("tokens.manifest.json", manifestJSON, 0644)

	m, err := manifest.ParseFile(fsys, "tokens.manifest.json")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if m.Name != "design-system" {
		t.Errorf("Name = %q", m.Name)
	}

	if _, err := manifest.ParseFile(fsys, "nope.json"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestBaseFiles(t *testing.T) {
	m, err := manifest.Parse([]byte(manifestJSON))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"core/colors.json", "core/sizes.json", "semantic.json"}
	got := m.BaseFiles()
	if len(got) != len(want) {
		t.Fatalf("BaseFiles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("BaseFiles()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPermutations(t *testing.T) {
	m, err := manifest.Parse([]byte(manifestJSON))
	if err != nil {
		t.Fatal(err)
	}

	perms := m.Permutations()
	if len(perms) != 4 {
		t.Fatalf("got %d permutations, want 4", len(perms))
	}

	// Last modifier varies fastest.
	wantNames := []string{
		"density-regular.theme-light",
		"density-compact.theme-light",
		"density-regular.theme-dark",
		"density-compact.theme-dark",
	}
	for i, perm := range perms {
		if got := perm.Name(); got != wantNames[i] {
			t.Errorf("perms[%d].Name() = %q, want %q", i, got, wantNames[i])
		}
	}

	darkCompact := perms[3]
	wantFiles := []string{
		"core/colors.json",
		"core/sizes.json",
		"semantic.json",
		"themes/dark.json",
		"density/compact.json",
	}
	if len(darkCompact.Files) != len(wantFiles) {
		t.Fatalf("Files = %v, want %v", darkCompact.Files, wantFiles)
	}
	for i := range wantFiles {
		if darkCompact.Files[i] != wantFiles[i] {
			t.Errorf("Files[%d] = %q, want %q", i, darkCompact.Files[i], wantFiles[i])
		}
	}
}

func TestPermutationsNoModifiers(t *testing.T) {
	m, err := manifest.Parse([]byte(`{
		"sets": [{"name": "core", "values": ["a.json", "b.json"]}]
	}`))
	if err != nil {
		t.Fatal(err)
	}

	perms := m.Permutations()
	if len(perms) != 1 {
		t.Fatalf("got %d permutations, want 1", len(perms))
	}
	if got := perms[0].Name(); got != "default" {
		t.Errorf("Name() = %q, want default", got)
	}
	if len(perms[0].Files) != 2 {
		t.Errorf("Files = %v", perms[0].Files)
	}
}
