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
	"slices"
	"strings"
	"sync"
)

// 📄 FileChangeRecord is the outcome of processing one candidate file
type FileChangeRecord struct {
	Path    string      // Path relative to the phase root
	Count   int         // Substitutions made
	Changed bool        // Whether the content differs (and was, or would be, written)
	Hits    []int       // Substitutions per rule, in rule order
	Kind    FailureKind // Failure kind, KindNone on success
	Err     error       // Failure cause
}

// Failed reports whether the file could not be processed.
func (r FileChangeRecord) Failed() bool {
	return r.Err != nil
}

// 🚚 RenameOutcome is what happened to one rename mapping
type RenameOutcome string

const (
	RenameMoved       RenameOutcome = "moved"
	RenameMerged      RenameOutcome = "merged"
	RenameOverwritten RenameOutcome = "overwritten"
	RenameNotFound    RenameOutcome = "not-found"
	RenameConflict    RenameOutcome = "conflict"
	RenameFailed      RenameOutcome = "failed"
	RenamePlanned     RenameOutcome = "planned"
)

// Applied reports whether the outcome moved something (or would, in a dry run).
func (o RenameOutcome) Applied() bool {
	switch o {
	case RenameMoved, RenameMerged, RenameOverwritten, RenamePlanned:
		return true
	default:
		return false
	}
}

// RenameRecord is the outcome of one rename mapping
type RenameRecord struct {
	From    string
	To      string
	Outcome RenameOutcome
	Err     error
}

// ❌ Failure names a path that could not be processed and why
type Failure struct {
	Path string
	Kind FailureKind
	Err  error
}

// 📊 RunSummary aggregates the outcome of one phase
type RunSummary struct {
	Phase         string
	Root          string
	DryRun        bool
	FilesScanned  int
	FilesChanged  int
	Substitutions int
	Records       []FileChangeRecord // sorted by path
	Renames       []RenameRecord     // in mapping order
	Failures      []Failure          // sorted by path
}

// Failed reports whether any file or rename failed.
func (s *RunSummary) Failed() bool {
	return len(s.Failures) > 0
}

// Renamed counts the mappings that moved something.
func (s *RunSummary) Renamed() int {
	n := 0
	for _, r := range s.Renames {
		if r.Outcome.Applied() {
			n++
		}
	}
	return n
}

// Changed returns the records of files whose content changed.
func (s *RunSummary) Changed() []FileChangeRecord {
	var out []FileChangeRecord
	for _, r := range s.Records {
		if r.Changed && !r.Failed() {
			out = append(out, r)
		}
	}
	return out
}

// 📈 Recorder builds a RunSummary. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	summary RunSummary
}

// 🏭 NewRecorder creates a recorder for one phase
func NewRecorder(phase, root string, dryRun bool) *Recorder {
	return &Recorder{
		summary: RunSummary{
			Phase:  phase,
			Root:   root,
			DryRun: dryRun,
		},
	}
}

// RecordFile adds the outcome of one scanned file.
func (r *Recorder) RecordFile(rec FileChangeRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.Err != nil && rec.Kind == KindNone {
		rec.Kind = KindOf(rec.Err)
	}

	r.summary.FilesScanned++
	r.summary.Records = append(r.summary.Records, rec)

	if rec.Failed() {
		r.summary.Failures = append(r.summary.Failures, Failure{Path: rec.Path, Kind: rec.Kind, Err: rec.Err})
		return
	}
	if rec.Changed {
		r.summary.FilesChanged++
		r.summary.Substitutions += rec.Count
	}
}

// RecordRename adds the outcome of one rename mapping.
func (r *Recorder) RecordRename(rec RenameRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.summary.Renames = append(r.summary.Renames, rec)
	if rec.Err != nil {
		r.summary.Failures = append(r.summary.Failures, Failure{Path: rec.From, Kind: KindOf(rec.Err), Err: rec.Err})
	}
}

// RecordFailure adds a failure that is not tied to a scanned file, such as
// an unreadable directory.
func (r *Recorder) RecordFailure(path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.summary.Failures = append(r.summary.Failures, Failure{Path: path, Kind: KindOf(err), Err: err})
}

// Finalize sorts records and failures by path and returns the summary.
// The recorder must not be used afterwards.
func (r *Recorder) Finalize() *RunSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	slices.SortStableFunc(r.summary.Records, func(a, b FileChangeRecord) int {
		return strings.Compare(a.Path, b.Path)
	})
	slices.SortStableFunc(r.summary.Failures, func(a, b Failure) int {
		return strings.Compare(a.Path, b.Path)
	})

	out := r.summary
	return &out
}
