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

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/codemod/pkg/operation"
	"github.com/walteh/codemod/pkg/report"
)

type runFlags struct {
	root     string
	phases   []string
	dryRun   bool
	jobs     int
	noVerify bool
}

// NewRunCmd creates the run command
func NewRunCmd(opts *RootOpts) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Rename paths and rewrite files, phase by phase",
		Long: `Run executes the configured phases in order. It will:
1. Validate every phase and check every root before touching anything
2. Apply each phase's renames
3. Rewrite every selected file with the phase's rules
4. Print a summary and every path that failed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, logger := opts.setup(cmd.Context())

			phases, err := opts.loadPhases(ctx, flags.root, flags.phases)
			if err != nil {
				return err
			}
			logger.Header(fmt.Sprintf("%s • %d phases", opts.ConfigFile, len(phases)))

			runner := operation.NewRunner(operation.Options{
				DryRun:   flags.dryRun,
				Jobs:     flags.jobs,
				NoVerify: flags.noVerify,
				Logger:   logger,
			})

			summaries, runErr := runner.RunAll(ctx, phases)
			var cerr *operation.ConfigError
			if errors.As(runErr, &cerr) {
				return runErr
			}

			logger.LogNewline()
			totals := report.Render(opts.Stdout, summaries)
			if runErr != nil {
				return errors.Errorf("running phases: %w", runErr)
			}
			if totals.Failed > 0 {
				return &FailedError{Failed: totals.Failed}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.root, "root", "", "directory phases are resolved against (default: the config root)")
	cmd.Flags().StringArrayVar(&flags.phases, "phase", nil, "run only the named phase (repeatable)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "report and diff changes without writing")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 1, "files rewritten in parallel")
	cmd.Flags().BoolVar(&flags.noVerify, "no-verify", false, "skip the second-pass fixed-point check")

	return cmd
}
