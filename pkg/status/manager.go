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

package status

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 💾 Manager reads and rewrites text files below a base directory.
type Manager struct {
	baseDir string // Base directory for all operations
	codec   *Codec // Encoding used for reads and writes

	// rename moves the temp file into place. Tests swap it to simulate a
	// failure at the last step of a write.
	rename func(oldpath, newpath string) error
}

// 🏭 New creates a new file manager rooted at baseDir
func New(baseDir string, codec *Codec) *Manager {
	if codec == nil {
		codec = &Codec{name: DefaultEncoding}
	}
	return &Manager{
		baseDir: filepath.Clean(baseDir),
		codec:   codec,
		rename:  os.Rename,
	}
}

// BaseDir returns the directory all relative paths are resolved against.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// Codec returns the manager's codec.
func (m *Manager) Codec() *Codec {
	return m.codec
}

// 🔒 getAbsPath returns the absolute path for a slash-separated relative path
func (m *Manager) getAbsPath(rel string) string {
	return filepath.Join(m.baseDir, filepath.FromSlash(rel))
}

// 📖 ReadText reads and decodes the whole file. The file mode is returned so
// a rewrite can preserve it.
func (m *Manager) ReadText(ctx context.Context, rel string) (string, fs.FileMode, error) {
	absPath := m.getAbsPath(rel)

	info, err := os.Stat(absPath)
	if err != nil {
		return "", 0, &ReadError{Path: rel, Err: err}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", 0, &ReadError{Path: rel, Err: err}
	}

	content, err := m.codec.Decode(rel, data)
	if err != nil {
		return "", 0, err
	}

	zerolog.Ctx(ctx).Trace().Str("path", rel).Int("bytes", len(data)).Msg("read file")
	return content, info.Mode().Perm(), nil
}

// ✍️ WriteTextAtomic encodes content and replaces the file in one rename.
//
// The new bytes go to a temp file in the same directory, which is synced,
// given the original mode, then renamed over the target. On any failure the
// temp file is removed and the original is left as it was.
func (m *Manager) WriteTextAtomic(ctx context.Context, rel string, content string, mode fs.FileMode) error {
	data, err := m.codec.Encode(rel, content)
	if err != nil {
		return err
	}

	absPath := m.getAbsPath(rel)
	tmp, err := os.CreateTemp(filepath.Dir(absPath), "."+filepath.Base(absPath)+".codemod-*")
	if err != nil {
		return &WriteError{Path: rel, Err: errors.Errorf("creating temp file: %w", err)}
	}
	tmpPath := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &WriteError{Path: rel, Err: cause}
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(errors.Errorf("writing temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(errors.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Chmod(mode); err != nil {
		return cleanup(errors.Errorf("setting file mode: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return cleanup(errors.Errorf("closing temp file: %w", err))
	}

	if err := m.rename(tmpPath, absPath); err != nil {
		_ = os.Remove(tmpPath)
		return &WriteError{Path: rel, Err: errors.Errorf("renaming temp file: %w", err)}
	}

	zerolog.Ctx(ctx).Trace().Str("path", rel).Int("bytes", len(data)).Msg("wrote file")
	return nil
}
