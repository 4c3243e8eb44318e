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

package rename

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/codemod/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Orchestrator applies a rename mapping below a root directory
type Orchestrator struct {
	root   string
	policy Policy
	dryRun bool
}

// 🏭 New creates an orchestrator. An empty policy means PolicyRefuse.
func New(root string, policy Policy, dryRun bool) *Orchestrator {
	if policy == "" {
		policy = PolicyRefuse
	}
	return &Orchestrator{
		root:   filepath.Clean(root),
		policy: policy,
		dryRun: dryRun,
	}
}

// 🔄 Apply runs every move in order and returns one record per move. A failed
// move never stops the moves after it. Apply stops early only when ctx is done.
func (o *Orchestrator) Apply(ctx context.Context, m Mapping) []status.RenameRecord {
	logger := zerolog.Ctx(ctx)
	records := make([]status.RenameRecord, 0, len(m))

	for _, mv := range m {
		if err := ctx.Err(); err != nil {
			records = append(records, status.RenameRecord{
				From: mv.From, To: mv.To, Outcome: status.RenameFailed,
				Err: &moveError{Move: mv, Err: err},
			})
			break
		}

		rec := o.apply(mv)
		logger.Debug().
			Str("from", rec.From).
			Str("to", rec.To).
			Str("outcome", string(rec.Outcome)).
			Err(rec.Err).
			Msg("rename")
		records = append(records, rec)
	}

	return records
}

func (o *Orchestrator) abs(rel string) string {
	return filepath.Join(o.root, filepath.FromSlash(path.Clean(filepath.ToSlash(rel))))
}

func (o *Orchestrator) apply(mv Move) status.RenameRecord {
	rec := status.RenameRecord{From: mv.From, To: mv.To}
	fail := func(err error) status.RenameRecord {
		rec.Outcome = status.RenameFailed
		rec.Err = &moveError{Move: mv, Err: err}
		return rec
	}

	from, to := o.abs(mv.From), o.abs(mv.To)

	srcInfo, err := os.Lstat(from)
	if errors.Is(err, fs.ErrNotExist) {
		rec.Outcome = status.RenameNotFound
		return rec
	}
	if err != nil {
		return fail(err)
	}

	dstInfo, err := os.Lstat(to)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if o.dryRun {
			rec.Outcome = status.RenamePlanned
			return rec
		}
		if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
			return fail(errors.Errorf("creating parent directories: %w", err))
		}
		if err := os.Rename(from, to); err != nil {
			return fail(err)
		}
		rec.Outcome = status.RenameMoved
		return rec
	case err != nil:
		return fail(err)
	}

	// Replacing or merging into an ancestor would consume the source itself.
	if inside(from, to) || inside(to, from) {
		rec.Outcome = status.RenameConflict
		rec.Err = &ConflictError{From: mv.From, To: mv.To, Reason: "source and destination are nested"}
		return rec
	}

	switch o.policy {
	case PolicyOverwrite:
		if o.dryRun {
			rec.Outcome = status.RenamePlanned
			return rec
		}
		if err := os.RemoveAll(to); err != nil {
			return fail(errors.Errorf("removing destination: %w", err))
		}
		if err := os.Rename(from, to); err != nil {
			return fail(err)
		}
		rec.Outcome = status.RenameOverwritten
		return rec

	case PolicyMerge:
		if !srcInfo.IsDir() || !dstInfo.IsDir() {
			rec.Outcome = status.RenameConflict
			rec.Err = &ConflictError{From: mv.From, To: mv.To, Reason: "destination exists and only directories can be merged"}
			return rec
		}
		var conflicts []string
		if err := o.merge(from, to, "", &conflicts); err != nil {
			return fail(err)
		}
		if len(conflicts) > 0 {
			rec.Outcome = status.RenameConflict
			rec.Err = &ConflictError{From: mv.From, To: mv.To, Reason: "entries exist in both directories", Conflicts: conflicts}
			return rec
		}
		if o.dryRun {
			rec.Outcome = status.RenamePlanned
		} else {
			rec.Outcome = status.RenameMerged
		}
		return rec

	default:
		rec.Outcome = status.RenameConflict
		rec.Err = &ConflictError{From: mv.From, To: mv.To, Reason: "destination exists"}
		return rec
	}
}

// inside reports whether p lies strictly below dir.
func inside(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, "../")
}

// merge moves the children of src into dst. Children that exist on both
// sides are merged when both are directories and reported as conflicts
// otherwise. src is removed once it is empty.
func (o *Orchestrator) merge(src, dst, rel string, conflicts *[]string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Errorf("reading %s: %w", src, err)
	}

	for _, e := range entries {
		s := filepath.Join(src, e.Name())
		d := filepath.Join(dst, e.Name())
		childRel := path.Join(rel, e.Name())

		dInfo, err := os.Lstat(d)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if o.dryRun {
				continue
			}
			if err := os.Rename(s, d); err != nil {
				return errors.Errorf("moving %s: %w", childRel, err)
			}
		case err != nil:
			return err
		case e.IsDir() && dInfo.IsDir():
			if err := o.merge(s, d, childRel, conflicts); err != nil {
				return err
			}
		default:
			*conflicts = append(*conflicts, childRel)
		}
	}

	if o.dryRun {
		return nil
	}
	if left, err := os.ReadDir(src); err == nil && len(left) == 0 {
		if err := os.Remove(src); err != nil {
			return errors.Errorf("removing merged directory: %w", err)
		}
	}
	return nil
}
