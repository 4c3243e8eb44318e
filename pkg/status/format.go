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
	"fmt"
)

// FileFormatter defines how per-file and per-rename outcomes are phrased
type FileFormatter interface {
	// FormatFileChange formats the outcome of one scanned file
	FormatFileChange(rec FileChangeRecord, dryRun bool) string

	// FormatRename formats the outcome of one rename mapping
	FormatRename(rec RenameRecord) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileChange formats a file outcome with emojis
func (f *DefaultFileFormatter) FormatFileChange(rec FileChangeRecord, dryRun bool) string {
	switch {
	case rec.Failed():
		return fmt.Sprintf("❌ Failed %s (%s)", rec.Path, rec.Kind)
	case rec.Changed && dryRun:
		return fmt.Sprintf("🔍 Would modify %s (%s)", rec.Path, plural(rec.Count, "substitution"))
	case rec.Changed:
		return fmt.Sprintf("📝 Modified %s (%s)", rec.Path, plural(rec.Count, "substitution"))
	default:
		return fmt.Sprintf("👍 Unchanged %s", rec.Path)
	}
}

// FormatRename formats a rename outcome with emojis
func (f *DefaultFileFormatter) FormatRename(rec RenameRecord) string {
	switch rec.Outcome {
	case RenameMoved:
		return fmt.Sprintf("🚚 Moved %s → %s", rec.From, rec.To)
	case RenameMerged:
		return fmt.Sprintf("🔀 Merged %s → %s", rec.From, rec.To)
	case RenameOverwritten:
		return fmt.Sprintf("♻️  Overwrote %s → %s", rec.From, rec.To)
	case RenamePlanned:
		return fmt.Sprintf("🔍 Would move %s → %s", rec.From, rec.To)
	case RenameNotFound:
		return fmt.Sprintf("⏭️  Skipped %s (not found)", rec.From)
	case RenameConflict:
		return fmt.Sprintf("⚠️  Conflict %s → %s", rec.From, rec.To)
	default:
		return fmt.Sprintf("❌ Failed %s → %s", rec.From, rec.To)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
