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

package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/codemod/pkg/operation"
)

// Exit codes returned by the codemod binary.
const (
	ExitOK     = 0
	ExitFailed = 1 // the run finished but some paths failed, or it was interrupted
	ExitConfig = 2 // nothing was touched because the configuration is unusable
)

// FailedError is returned by run when one or more files or renames failed.
// The report has already listed them.
type FailedError struct {
	Failed int
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%d paths failed", e.Failed)
}

// 🚦 ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var cerr *operation.ConfigError
	if errors.As(err, &cerr) {
		return ExitConfig
	}
	return ExitFailed
}

// printError reports err unless the report already covered it.
func printError(opts *RootOpts, err error) {
	var ferr *FailedError
	if err == nil || errors.As(err, &ferr) {
		return
	}
	pterm.Error.WithPrefix(pterm.Prefix{Text: "❌", Style: pterm.Error.Prefix.Style}).WithWriter(opts.Stderr).Println(err.Error())
}
