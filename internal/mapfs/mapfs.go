/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package mapfs provides an in-memory fs.FileSystem for tests, backed
// by testing/fstest. Paths are stored slash-separated without a
// leading slash, so absolute and relative lookups hit the same entry.
package mapfs

import (
	"io/fs"
	"path"
	"strings"
	"sync"
	"testing/fstest"
	"time"
)

// MapFileSystem is an in-memory filesystem for token loading and
// bundle writing in tests.
type MapFileSystem struct {
	mu      sync.RWMutex
	files   fstest.MapFS
	modTime time.Time
}

// New creates an empty in-memory filesystem.
func New() *MapFileSystem {
	return &MapFileSystem{
		files:   make(fstest.MapFS),
		modTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// AddFile seeds the filesystem with a file.
func (mfs *MapFileSystem) AddFile(p string, content string, mode fs.FileMode) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.files[cleanPath(p)] = &fstest.MapFile{
		Data:    []byte(content),
		Mode:    mode,
		ModTime: mfs.modTime,
	}
}

// WriteFile stores data under name, replacing any existing file.
func (mfs *MapFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.files[cleanPath(name)] = &fstest.MapFile{
		Data:    append([]byte(nil), data...),
		Mode:    perm,
		ModTime: mfs.modTime,
	}
	return nil
}

// ReadFile returns the contents of the named file.
func (mfs *MapFileSystem) ReadFile(name string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return fs.ReadFile(mfs.files, cleanPath(name))
}

// Remove deletes the named file.
func (mfs *MapFileSystem) Remove(name string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = cleanPath(name)
	if _, exists := mfs.files[name]; !exists {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(mfs.files, name)
	return nil
}

// MkdirAll records a directory. fstest.MapFS synthesizes directories
// from file paths, so a .keep file stands in for an empty one.
func (mfs *MapFileSystem) MkdirAll(p string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.files[cleanPath(p)+"/.keep"] = &fstest.MapFile{
		Mode:    perm.Perm(),
		ModTime: mfs.modTime,
	}
	return nil
}

// TempDir returns a fixed temp directory path.
func (mfs *MapFileSystem) TempDir() string {
	return "/tmp"
}

// Stat returns file information for the named file.
func (mfs *MapFileSystem) Stat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return fs.Stat(mfs.files, cleanPath(name))
}

// Exists reports whether a file or directory exists at the path.
func (mfs *MapFileSystem) Exists(p string) bool {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	p = cleanPath(p)
	if _, exists := mfs.files[p]; exists {
		return true
	}
	prefix := p + "/"
	for filePath := range mfs.files {
		if strings.HasPrefix(filePath, prefix) {
			return true
		}
	}
	return false
}

// ReadDir reads the named directory.
func (mfs *MapFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return fs.ReadDir(mfs.files, cleanPath(name))
}

// Open opens the named file for reading, satisfying fs.FS so callers
// can fs.WalkDir over the filesystem.
func (mfs *MapFileSystem) Open(name string) (fs.File, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return mfs.files.Open(cleanPath(name))
}

func cleanPath(p string) string {
	cleaned := path.Clean(p)
	if !path.IsAbs(cleaned) {
		cleaned = "/" + cleaned
	}
	return strings.TrimPrefix(cleaned, "/")
}
