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
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/walteh/codemod/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🛡️ Policy decides what happens when a rename destination already exists
type Policy string

const (
	PolicyRefuse    Policy = "refuse"    // leave both paths alone and report a conflict
	PolicyOverwrite Policy = "overwrite" // remove the destination, then move
	PolicyMerge     Policy = "merge"     // move directory children into the existing directory
)

// ParsePolicy parses a policy name. The empty string means PolicyRefuse.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyRefuse, nil
	case PolicyRefuse, PolicyOverwrite, PolicyMerge:
		return p, nil
	default:
		return "", errors.Errorf("unknown rename policy %q (want refuse, overwrite or merge)", s)
	}
}

// 🚚 Move renames one path, relative to the root
type Move struct {
	From string
	To   string
}

func (m Move) String() string {
	return m.From + " → " + m.To
}

// Mapping is an ordered list of moves. Later moves see the result of earlier ones.
type Mapping []Move

// ✅ Validate checks that every path is relative and stays inside the root,
// and that no move is a no-op or nests its source and destination.
func (m Mapping) Validate() error {
	for i, mv := range m {
		from, err := CleanRel(mv.From)
		if err != nil {
			return errors.Errorf("rename %d: from: %w", i, err)
		}
		to, err := CleanRel(mv.To)
		if err != nil {
			return errors.Errorf("rename %d: to: %w", i, err)
		}
		if from == to {
			return errors.Errorf("rename %d: %s: source and destination are the same", i, mv)
		}
		if strings.HasPrefix(to, from+"/") {
			return errors.Errorf("rename %d: %s: destination is inside the source", i, mv)
		}
		if strings.HasPrefix(from, to+"/") {
			return errors.Errorf("rename %d: %s: source is inside the destination", i, mv)
		}
	}
	return nil
}

// CleanRel cleans a slash-separated path that must name something strictly
// below a root. Absolute paths, the root itself and paths that climb out of
// it are rejected.
func CleanRel(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New("path is required")
	}
	slashed := filepath.ToSlash(p)
	if path.IsAbs(slashed) || filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return "", errors.Errorf("%q must be relative to the root", p)
	}
	clean := path.Clean(slashed)
	if clean == "." {
		return "", errors.Errorf("%q names the root itself", p)
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.Errorf("%q escapes the root", p)
	}
	return clean, nil
}

// ⚠️ ConflictError is reported when a move cannot proceed because the
// destination exists and the policy does not allow replacing it.
type ConflictError struct {
	From      string
	To        string
	Reason    string
	Conflicts []string // children left in place by a merge, relative to To
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("cannot move %s to %s: %s", e.From, e.To, e.Reason)
	if len(e.Conflicts) > 0 {
		msg += ": " + strings.Join(e.Conflicts, ", ")
	}
	return msg
}

func (e *ConflictError) FailureKind() status.FailureKind { return status.KindRenameConflict }

// moveError wraps a filesystem failure during a move.
type moveError struct {
	Move Move
	Err  error
}

func (e *moveError) Error() string {
	return fmt.Sprintf("moving %s: %v", e.Move, e.Err)
}

func (e *moveError) Unwrap() error { return e.Err }

func (e *moveError) FailureKind() status.FailureKind { return status.KindRename }
