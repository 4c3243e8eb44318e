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

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/codemod/pkg/config"
	"github.com/walteh/codemod/pkg/log"
	"github.com/walteh/codemod/pkg/operation"
)

// RootOpts holds the state shared by every subcommand.
type RootOpts struct {
	ConfigFile string
	Debug      bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// Logger builds the console logger for a command. Structured logs go to
// Stderr, per-file lines to Stdout.
func (o *RootOpts) Logger() *log.Logger {
	level := zerolog.InfoLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = o.Stderr
	})).With().Timestamp().Logger().Level(level)
	return log.NewWithZerolog(o.Stdout, zlog)
}

// setup attaches the logger to ctx the way every package expects to find it.
func (o *RootOpts) setup(ctx context.Context) (context.Context, *log.Logger) {
	logger := o.Logger()
	ctx = logger.Zerolog().WithContext(ctx)
	return log.NewContext(ctx, logger), logger
}

// loadPhases loads the config and builds the selected phases against root.
// Every failure is a *operation.ConfigError.
func (o *RootOpts) loadPhases(ctx context.Context, rootOverride string, only []string) ([]*operation.Phase, error) {
	cfg, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return nil, &operation.ConfigError{Err: errors.Errorf("loading %s: %w", o.ConfigFile, err)}
	}

	root, err := cfg.ResolveRoot(rootOverride)
	if err != nil {
		return nil, &operation.ConfigError{Err: err}
	}

	phases, err := cfg.Build(root, only)
	if err != nil {
		var cerr *operation.ConfigError
		if errors.As(err, &cerr) {
			return nil, err
		}
		return nil, &operation.ConfigError{Err: err}
	}
	return phases, nil
}
