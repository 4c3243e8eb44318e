// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package discovery

import (
	"context"
	"io"
	"io/fs"
	"iter"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Selector decides which files under a root are candidates.
type Selector struct {
	Extensions []string // allowed extensions including the dot, empty means all
	IgnoreDirs []string // directory base names pruned at any depth
	Include    []string // doublestar globs on the relative path, empty means all
	Exclude    []string // doublestar globs on the relative path
}

// 🔍 Validate checks extensions and glob syntax.
func (s Selector) Validate() error {
	for _, ext := range s.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return errors.Errorf("extension %q must start with a dot", ext)
		}
	}
	for _, dir := range s.IgnoreDirs {
		if dir == "" || strings.ContainsAny(dir, `/\`) {
			return errors.Errorf("ignore_dirs entry %q must be a single directory name", dir)
		}
	}
	for _, pattern := range slices.Concat(s.Include, s.Exclude) {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid glob pattern %q", pattern)
		}
	}
	return nil
}

// IgnoresDir reports whether a directory with this base name is pruned.
func (s Selector) IgnoresDir(name string) bool {
	return slices.Contains(s.IgnoreDirs, name)
}

// Matches reports whether the slash-separated relative path is a candidate.
func (s Selector) Matches(rel string) bool {
	rel = path.Clean(filepath.ToSlash(rel))
	dirs := strings.Split(path.Dir(rel), "/")
	for _, d := range dirs {
		if d != "." && s.IgnoresDir(d) {
			return false
		}
	}
	return s.matchFile(rel)
}

func (s Selector) matchFile(rel string) bool {
	if len(s.Extensions) > 0 && !slices.Contains(s.Extensions, path.Ext(rel)) {
		return false
	}
	if len(s.Include) > 0 && !anyMatch(s.Include, rel) {
		return false
	}
	return !anyMatch(s.Exclude, rel)
}

func anyMatch(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// RootError is returned when the root directory is missing or unreadable.
type RootError struct {
	Root string
	Err  error
}

func (e *RootError) Error() string {
	return "root " + e.Root + ": " + e.Err.Error()
}

func (e *RootError) Unwrap() error {
	return e.Err
}

// WalkError is a non-fatal error hit while walking below the root.
type WalkError struct {
	Path string // relative to the root
	Err  error
}

func (e *WalkError) Error() string {
	return "walking " + e.Path + ": " + e.Err.Error()
}

func (e *WalkError) Unwrap() error {
	return e.Err
}

// CheckRoot verifies that root exists, is a directory and can be listed.
func CheckRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return &RootError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return &RootError{Root: root, Err: errors.New("not a directory")}
	}
	f, err := os.Open(root)
	if err != nil {
		return &RootError{Root: root, Err: err}
	}
	defer f.Close()
	if _, err := f.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return &RootError{Root: root, Err: err}
	}
	return nil
}

// 🚶 Walk lazily yields candidate paths under root, relative and
// slash-separated. Pruned directories are never entered. Errors below the
// root are yielded as *WalkError and the walk continues; a root failure is
// yielded as *RootError and ends the walk. The sequence can be ranged over
// again to re-walk the tree.
func Walk(ctx context.Context, root string, sel Selector) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		logger := zerolog.Ctx(ctx)

		_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if cerr := ctx.Err(); cerr != nil {
				yield("", errors.Errorf("walking %s: %w", root, cerr))
				return fs.SkipAll
			}

			if p == root {
				if err != nil {
					yield("", &RootError{Root: root, Err: err})
					return fs.SkipAll
				}
				return nil
			}

			rel, rerr := filepath.Rel(root, p)
			if rerr != nil {
				rel = p
			}
			rel = filepath.ToSlash(rel)

			if err != nil {
				if !yield(rel, &WalkError{Path: rel, Err: err}) {
					return fs.SkipAll
				}
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if sel.IgnoresDir(d.Name()) {
					logger.Trace().Str("dir", rel).Msg("pruning ignored directory")
					return fs.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() {
				logger.Trace().Str("path", rel).Msg("skipping non-regular file")
				return nil
			}

			if !sel.matchFile(rel) {
				return nil
			}

			if !yield(rel, nil) {
				return fs.SkipAll
			}
			return nil
		})
	}
}
