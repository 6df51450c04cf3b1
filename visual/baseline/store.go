// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package baseline stores reference screenshots on disk.
//
// A store directory has three subdirectories: expected-screenshots holds the
// approved baselines, processed-screenshots receives captures that failed to
// match (or had no baseline), and screenshot-diffs receives the highlighted
// difference images.
package baseline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	ExpectedDir  = "expected-screenshots"
	ProcessedDir = "processed-screenshots"
	DiffDir      = "screenshot-diffs"
)

var (
	ErrNotFound    = errors.New("baseline not found")
	ErrInvalidName = errors.New("invalid baseline name")
)

// Store is a directory of named PNG baselines.
type Store struct {
	Dir    string
	Prefix string
	// Update makes the harness overwrite baselines instead of comparing.
	Update bool
}

// New returns a store rooted at dir. Update mode is enabled when
// UPDATE_GOLDENS is "true".
func New(dir, prefix string) *Store {
	return &Store{
		Dir:    dir,
		Prefix: prefix,
		Update: os.Getenv("UPDATE_GOLDENS") == "true",
	}
}

// FileName returns the file name used for a baseline.
func (s *Store) FileName(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if s.Prefix == "" {
		return name + ".png", nil
	}
	return s.Prefix + "_" + name + ".png", nil
}

// ExpectedPath returns the path of the approved baseline for name.
func (s *Store) ExpectedPath(name string) string {
	fn, err := s.FileName(name)
	if err != nil {
		return ""
	}
	return filepath.Join(s.Dir, ExpectedDir, fn)
}

// Load reads the baseline for name. It returns an error wrapping ErrNotFound
// if there is none.
func (s *Store) Load(name string) ([]byte, error) {
	fn, err := s.FileName(name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filepath.Join(s.Dir, ExpectedDir, fn))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read baseline %s: %w", name, err)
	}
	return b, nil
}

// Save writes the baseline for name.
func (s *Store) Save(name string, png []byte) error {
	_, err := s.write(ExpectedDir, name, png)
	return err
}

// SaveProcessed writes a captured screenshot for review and returns its path.
func (s *Store) SaveProcessed(name string, png []byte) (string, error) {
	return s.write(ProcessedDir, name, png)
}

// SaveDiff writes a difference image and returns its path.
func (s *Store) SaveDiff(name string, png []byte) (string, error) {
	return s.write(DiffDir, name, png)
}

// Names lists the stored baselines, without prefix or extension.
func (s *Store) Names() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.Dir, ExpectedDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	prefix := ""
	if s.Prefix != "" {
		prefix = s.Prefix + "_"
	}
	var names []string
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasSuffix(n, ".png") || !strings.HasPrefix(n, prefix) {
			continue
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(n, prefix), ".png"))
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) write(sub, name string, png []byte) (string, error) {
	fn, err := s.FileName(name)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(s.Dir, sub)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, fn)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(png); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	// CreateTemp uses 0600.
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("rename %s: %w", path, err)
	}
	return path, nil
}
