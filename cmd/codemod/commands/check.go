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
	"github.com/spf13/cobra"

	"github.com/walteh/codemod/pkg/operation"
)

// NewCheckCmd creates the check command
func NewCheckCmd(opts *RootOpts) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration without touching the tree",
		Long: `Check parses the config, compiles and validates every phase's rules,
checks rename mappings and roots, and prints any conflicts found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, logger := opts.setup(cmd.Context())

			phases, err := opts.loadPhases(ctx, root, nil)
			if err != nil {
				return err
			}

			// Prepare logs rule set warnings for each phase.
			if err := operation.NewRunner(operation.Options{Logger: logger}).Prepare(ctx, phases); err != nil {
				return err
			}

			for _, p := range phases {
				logger.Infof("%s • %d rules, %d renames, %d warnings", p.Name, p.Rules.Len(), len(p.Renames), len(p.Rules.Warnings()))
			}
			logger.Successf("%d phases ok", len(phases))
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "directory phases are resolved against (default: the config root)")

	return cmd
}
