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
	"context"
	"io"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/codemod/pkg/config"
	"github.com/walteh/codemod/pkg/operation"
)

// 🌳 NewRootCmd creates the codemod command tree.
func NewRootCmd(opts *RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codemod",
		Short: "Apply ordered, idempotent text rewrites to a source tree",
		Long: `codemod rewrites a source tree in phases. Each phase renames paths,
then walks the tree and applies an ordered list of literal or pattern
substitutions to every selected file. Running it twice is a no-op.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addRootFlags(cmd, opts)

	// Subcommands inherit this, so a bad flag anywhere is a configuration error.
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &operation.ConfigError{Err: errors.Errorf("%s: %w", c.CommandPath(), err)}
	})

	cmd.AddCommand(
		NewRunCmd(opts),
		NewCheckCmd(opts),
		NewVersionCmd(opts),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, opts *RootOpts) {
	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", config.DefaultFile, "config file path")
	cmd.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", false, "enable debug logging")
}

// 🚀 Execute runs the command line in args and returns the exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOpts{Stdout: stdout, Stderr: stderr}
	cmd := NewRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	printError(opts, err)
	return ExitCode(err)
}
