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
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/walteh/codemod/pkg/discovery"
	"github.com/walteh/codemod/pkg/log"
	"github.com/walteh/codemod/pkg/rename"
	"github.com/walteh/codemod/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🏃 Runner executes phases
type Runner struct {
	opts   Options
	logger *log.Logger
}

// 🏗️ NewRunner creates a new runner
func NewRunner(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithZerolog(io.Discard, zerolog.Nop())
	}
	return &Runner{
		opts:   opts,
		logger: logger,
	}
}

// prepared is a phase that passed every up-front check.
type prepared struct {
	*Phase
	codec *status.Codec
}

// ✅ Prepare checks every phase without touching the file system beyond
// reading roots. Rule set warnings are logged; anything fatal is a *ConfigError.
func (r *Runner) Prepare(ctx context.Context, phases []*Phase) error {
	_, err := r.prepare(ctx, phases)
	return err
}

func (r *Runner) prepare(ctx context.Context, phases []*Phase) ([]prepared, error) {
	out := make([]prepared, 0, len(phases))
	for _, p := range phases {
		if p == nil {
			return nil, &ConfigError{Err: errors.New("phase is nil")}
		}
		fail := func(err error) ([]prepared, error) {
			return nil, &ConfigError{Phase: p.Name, Err: err}
		}

		if p.Name == "" {
			return fail(errors.New("phase name is required"))
		}
		if p.Rules == nil {
			return fail(errors.New("rule set is required"))
		}
		if err := p.Rules.Validate(); err != nil {
			return fail(err)
		}
		if err := p.Selector.Validate(); err != nil {
			return fail(errors.Errorf("selector: %w", err))
		}
		if err := p.Renames.Validate(); err != nil {
			return fail(err)
		}
		if _, err := rename.ParsePolicy(string(p.RenamePolicy)); err != nil {
			return fail(err)
		}
		codec, err := status.LookupCodec(p.Encoding)
		if err != nil {
			return fail(err)
		}
		if err := discovery.CheckRoot(p.Root); err != nil {
			return fail(err)
		}

		for _, w := range p.Rules.Warnings() {
			r.logger.Warningf("phase %s: %s", p.Name, w)
		}
		out = append(out, prepared{Phase: p, codec: codec})
	}
	return out, nil
}

// 🏃 Run validates and executes a single phase
func (r *Runner) Run(ctx context.Context, phase *Phase) (*status.RunSummary, error) {
	ready, err := r.prepare(ctx, []*Phase{phase})
	if err != nil {
		return nil, err
	}
	return r.run(ctx, ready[0])
}

// 🔄 RunAll validates every phase, then executes them in order. The returned
// summaries cover every phase that ran, even when an error stops the run.
func (r *Runner) RunAll(ctx context.Context, phases []*Phase) ([]*status.RunSummary, error) {
	ready, err := r.prepare(ctx, phases)
	if err != nil {
		return nil, err
	}

	summaries := make([]*status.RunSummary, 0, len(ready))
	for _, p := range ready {
		sum, err := r.run(ctx, p)
		if sum != nil {
			summaries = append(summaries, sum)
		}
		if err != nil {
			return summaries, err
		}
	}
	return summaries, nil
}

func (r *Runner) run(ctx context.Context, p prepared) (*status.RunSummary, error) {
	zlog := zerolog.Ctx(ctx).With().Str("phase", p.Name).Logger()
	ctx = zlog.WithContext(ctx)

	rec := status.NewRecorder(p.Name, p.Root, r.opts.DryRun)
	r.logger.StartPhase(ctx, log.PhaseOperation{
		Name:   p.Name,
		Root:   p.Root,
		Rules:  p.Rules.Len(),
		Moves:  len(p.Renames),
		DryRun: r.opts.DryRun,
	})
	defer r.logger.EndPhase(ctx)

	// Renames finish before any file is discovered so imports that point at
	// the new paths are rewritten by the same pass.
	if len(p.Renames) > 0 {
		orch := rename.New(p.Root, p.RenamePolicy, r.opts.DryRun)
		for _, rr := range orch.Apply(ctx, p.Renames) {
			rec.RecordRename(rr)
			r.logger.LogRename(ctx, rr)
		}
	}
	if err := ctx.Err(); err != nil {
		return rec.Finalize(), errors.Errorf("phase %s interrupted: %w", p.Name, err)
	}

	mgr := status.New(p.Root, p.codec)

	var g errgroup.Group
	if r.opts.Jobs > 1 {
		g.SetLimit(r.opts.Jobs)
	}

	for rel, err := range discovery.Walk(ctx, p.Root, p.Selector) {
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			var rootErr *discovery.RootError
			if errors.As(err, &rootErr) {
				_ = g.Wait()
				return nil, &ConfigError{Phase: p.Name, Err: err}
			}
			path := rel
			if path == "" {
				path = "."
			}
			rec.RecordFailure(path, err)
			r.logger.Warningf("skipping %s: %v", path, err)
			continue
		}

		if r.opts.Jobs > 1 {
			g.Go(func() error {
				r.process(ctx, mgr, p, rel, rec)
				return nil
			})
			continue
		}
		r.process(ctx, mgr, p, rel, rec)
	}
	_ = g.Wait()

	sum := rec.Finalize()
	if err := ctx.Err(); err != nil {
		return sum, errors.Errorf("phase %s interrupted: %w", p.Name, err)
	}

	zlog.Debug().
		Int("scanned", sum.FilesScanned).
		Int("changed", sum.FilesChanged).
		Int("substitutions", sum.Substitutions).
		Int("failures", len(sum.Failures)).
		Msg("phase complete")

	return sum, nil
}

func (r *Runner) process(ctx context.Context, mgr *status.Manager, p prepared, rel string, rec *status.Recorder) {
	out := r.rewrite(ctx, mgr, p, rel)
	rec.RecordFile(out)
	r.logger.LogFile(ctx, out)
}

// 📄 rewrite processes a single file and never returns an error; failures
// are carried in the record.
func (r *Runner) rewrite(ctx context.Context, mgr *status.Manager, p prepared, rel string) status.FileChangeRecord {
	out := status.FileChangeRecord{Path: rel}
	fail := func(err error) status.FileChangeRecord {
		out.Changed = false
		out.Err = err
		out.Kind = status.KindOf(err)
		return out
	}

	content, mode, err := mgr.ReadText(ctx, rel)
	if err != nil {
		return fail(err)
	}

	res := p.Rules.Apply(content)
	out.Count = res.Count
	out.Hits = res.Hits
	if res.Output == content {
		return out
	}
	out.Changed = true

	if !r.opts.NoVerify {
		if again := p.Rules.Apply(res.Output); again.Count > 0 {
			return fail(&status.IdempotenceError{Path: rel, Count: again.Count})
		}
	}

	if r.opts.DryRun {
		r.logger.LogDiff(rel, lineDiff(content, res.Output))
		return out
	}

	if err := mgr.WriteTextAtomic(ctx, rel, res.Output, mode); err != nil {
		return fail(err)
	}
	return out
}
