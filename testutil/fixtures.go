/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package testutil provides testing utilities for kesher.
package testutil

import (
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/kesher/internal/mapfs"
)

// updateGolden enables updating golden files with actual output when
// the -update flag is set.
var updateGolden = flag.Bool("update", false, "update golden files with actual output")

// NewFixtureFS loads every file under testdata/<fixtureDir> into an
// in-memory filesystem rooted at rootPath.
func NewFixtureFS(t *testing.T, fixtureDir string, rootPath string) *mapfs.MapFileSystem {
	t.Helper()

	mfs := mapfs.New()
	fixturePath := filepath.Join("testdata", fixtureDir)

	err := filepath.WalkDir(fixturePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(fixturePath, path)
		if err != nil {
			return err
		}
		mfs.AddFile(filepath.Join(rootPath, relPath), string(content), 0644)
		return nil
	})
	if err != nil {
		t.Fatalf("loading fixtures from %s: %v", fixturePath, err)
	}

	return mfs
}

// LoadFixtureFile reads a single file under testdata/.
func LoadFixtureFile(t *testing.T, fixturePath string) []byte {
	t.Helper()

	content, err := os.ReadFile(filepath.Join("testdata", fixturePath))
	if err != nil {
		t.Fatalf("reading fixture %s: %v", fixturePath, err)
	}
	return content
}

// UpdateGoldenFile writes actual output to the golden file when the
// -update flag is set.
func UpdateGoldenFile(t *testing.T, goldenPath string, actual []byte) {
	t.Helper()
	if !*updateGolden {
		return
	}

	target := filepath.Join("testdata", goldenPath)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		t.Fatalf("creating directory for golden file %s: %v", goldenPath, err)
	}
	if err := os.WriteFile(target, actual, 0644); err != nil {
		t.Fatalf("writing golden file %s: %v", goldenPath, err)
	}
	t.Logf("updated golden file: %s", target)
}
