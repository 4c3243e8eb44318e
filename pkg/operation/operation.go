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

package operation

import (
	"fmt"

	"github.com/walteh/codemod/pkg/discovery"
	"github.com/walteh/codemod/pkg/log"
	"github.com/walteh/codemod/pkg/rename"
	"github.com/walteh/codemod/pkg/text"
)

// 🧩 Phase is one named migration step: where to run, which files, which
// rules and which renames.
type Phase struct {
	Name         string
	Root         string // Directory the phase rewrites
	Rules        *text.RuleSet
	Selector     discovery.Selector
	Encoding     string // Text encoding label, utf-8 when empty
	Renames      rename.Mapping
	RenamePolicy rename.Policy
}

// 🔧 Options contains configuration for the runner
type Options struct {
	// DryRun computes everything but writes nothing and prints diffs
	DryRun bool
	// Jobs is the number of files rewritten at once; values below 2 mean sequential
	Jobs int
	// NoVerify skips re-applying the rules to check for a fixed point
	NoVerify bool
	// Logger receives per-file and per-rename output
	Logger *log.Logger
}

// ⛔ ConfigError is a fatal problem found before any file is touched: an
// invalid rule set, a bad selector, a bad rename mapping or a missing root.
type ConfigError struct {
	Phase string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Phase == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("phase %q: %v", e.Phase, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
