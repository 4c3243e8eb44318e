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
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/codemod/pkg/discovery"
	"github.com/walteh/codemod/pkg/log"
	"github.com/walteh/codemod/pkg/rename"
	"github.com/walteh/codemod/pkg/status"
	"github.com/walteh/codemod/pkg/text"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func readTree(t *testing.T, root, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(b)
}

var tsSelector = discovery.Selector{
	Extensions: []string{".ts", ".tsx"},
	IgnoreDirs: []string{"node_modules", ".git", "dist"},
}

func TestRunner_Run(t *testing.T) {
	tests := []struct {
		name              string
		files             map[string]string
		rules             []text.Rule
		renames           rename.Mapping
		opts              Options
		wantScanned       int
		wantChanged       int
		wantSubstitutions int
		wantFailures      []status.FailureKind
		wantFiles         map[string]string
	}{
		{
			name:  "use_pets_import",
			files: map[string]string{"src/hooks.ts": "import { usePets } from './usePets'\n"},
			rules: []text.Rule{
				{Literal: "usePets", Replace: "usePatients"},
			},
			wantScanned:       1,
			wantChanged:       1,
			wantSubstitutions: 2,
			wantFiles: map[string]string{
				"src/hooks.ts": "import { usePatients } from './usePatients'\n",
			},
		},
		{
			name:  "brand_rename",
			files: map[string]string{"src/brand.ts": "AuZap AuZap AuZap auzap"},
			rules: []text.Rule{
				{Literal: "AuZap", Replace: "Oxy"},
				{Literal: "auzap", Replace: "oxy"},
			},
			wantScanned:       1,
			wantChanged:       1,
			wantSubstitutions: 4,
			wantFiles: map[string]string{
				"src/brand.ts": "Oxy Oxy Oxy oxy",
			},
		},
		{
			name: "word_boundaries",
			files: map[string]string{
				"src/copy.ts": "pet petshop carpet pet.",
			},
			rules: []text.Rule{
				{Literal: "pet", Replace: "patient", WholeWord: true},
			},
			wantScanned:       1,
			wantChanged:       1,
			wantSubstitutions: 2,
			wantFiles: map[string]string{
				"src/copy.ts": "patient petshop carpet patient.",
			},
		},
		{
			name: "ignored_dirs_and_extensions_untouched",
			files: map[string]string{
				"src/a.ts":                  "pets",
				"node_modules/lib/index.ts": "pets",
				"src/deep/dist/out.ts":      "pets",
				"src/notes.md":              "pets",
			},
			rules:             []text.Rule{{Literal: "pets", Replace: "patients"}},
			wantScanned:       1,
			wantChanged:       1,
			wantSubstitutions: 1,
			wantFiles: map[string]string{
				"src/a.ts":                  "patients",
				"node_modules/lib/index.ts": "pets",
				"src/deep/dist/out.ts":      "pets",
				"src/notes.md":              "pets",
			},
		},
		{
			name: "rename_before_substitute",
			files: map[string]string{
				"src/app.module.ts":                  "import { PetsModule } from './services/pets/pets.module'\n",
				"src/services/pets/pets.module.ts":   "export class PetsModule {}\n",
				"src/services/pets/dto/create.dto.ts": "export class CreatePetDto {}\n",
			},
			rules: []text.Rule{
				{Literal: "./services/pets/pets.module", Replace: "./services/patients/pets.module"},
				{Literal: "PetsModule", Replace: "PatientsModule"},
			},
			renames:           rename.Mapping{{From: "src/services/pets", To: "src/services/patients"}},
			wantScanned:       3,
			wantChanged:       2,
			wantSubstitutions: 3,
			wantFiles: map[string]string{
				"src/app.module.ts":                      "import { PatientsModule } from './services/patients/pets.module'\n",
				"src/services/patients/pets.module.ts":   "export class PatientsModule {}\n",
				"src/services/patients/dto/create.dto.ts": "export class CreatePetDto {}\n",
			},
		},
		{
			name: "failures_do_not_stop_the_run",
			files: map[string]string{
				"src/a.ts": "pets",
				"src/b.ts": "pets \xff",
				"src/c.ts": "pets",
			},
			rules:             []text.Rule{{Literal: "pets", Replace: "patients"}},
			wantScanned:       3,
			wantChanged:       2,
			wantSubstitutions: 2,
			wantFailures:      []status.FailureKind{status.KindDecode},
			wantFiles: map[string]string{
				"src/a.ts": "patients",
				"src/b.ts": "pets \xff",
				"src/c.ts": "patients",
			},
		},
		{
			name:              "runtime_fixed_point_violation",
			files:             map[string]string{"src/a.ts": "abb"},
			rules:             []text.Rule{{Pattern: `a(b)`, Replace: "${1}a"}},
			wantScanned:       1,
			wantChanged:       0,
			wantSubstitutions: 0,
			wantFailures:      []status.FailureKind{status.KindIdempotence},
			wantFiles:         map[string]string{"src/a.ts": "abb"},
		},
		{
			name:              "no_verify_writes_single_pass",
			files:             map[string]string{"src/a.ts": "abb"},
			rules:             []text.Rule{{Pattern: `a(b)`, Replace: "${1}a"}},
			opts:              Options{NoVerify: true},
			wantScanned:       1,
			wantChanged:       1,
			wantSubstitutions: 1,
			wantFiles:         map[string]string{"src/a.ts": "bab"},
		},
		{
			name: "dry_run_writes_nothing",
			files: map[string]string{
				"src/a.ts":          "pets",
				"src/pets/index.ts": "export * from './pets'",
			},
			rules:             []text.Rule{{Literal: "pets", Replace: "patients"}},
			renames:           rename.Mapping{{From: "src/pets", To: "src/patients"}},
			opts:              Options{DryRun: true},
			wantScanned:       2,
			wantChanged:       2,
			wantSubstitutions: 2,
			wantFiles: map[string]string{
				"src/a.ts":          "pets",
				"src/pets/index.ts": "export * from './pets'",
			},
		},
		{
			name: "parallel_jobs",
			files: func() map[string]string {
				files := map[string]string{}
				for i := 0; i < 40; i++ {
					files[fmt.Sprintf("src/f%02d.ts", i)] = "pets and pets"
				}
				return files
			}(),
			rules:             []text.Rule{{Literal: "pets", Replace: "patients"}},
			opts:              Options{Jobs: 8},
			wantScanned:       40,
			wantChanged:       40,
			wantSubstitutions: 80,
			wantFiles: map[string]string{
				"src/f00.ts": "patients and patients",
				"src/f39.ts": "patients and patients",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, tt.files)

			rules, err := text.Compile(tt.rules)
			require.NoError(t, err)

			runner := NewRunner(tt.opts)
			sum, err := runner.Run(testContext(t), &Phase{
				Name:     tt.name,
				Root:     root,
				Rules:    rules,
				Selector: tsSelector,
				Renames:  tt.renames,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantScanned, sum.FilesScanned, "files scanned")
			assert.Equal(t, tt.wantChanged, sum.FilesChanged, "files changed")
			assert.Equal(t, tt.wantSubstitutions, sum.Substitutions, "substitutions")

			kinds := make([]status.FailureKind, 0, len(sum.Failures))
			for _, f := range sum.Failures {
				kinds = append(kinds, f.Kind)
			}
			if len(tt.wantFailures) == 0 {
				assert.Empty(t, kinds)
			} else {
				assert.Equal(t, tt.wantFailures, kinds)
			}

			for rel, want := range tt.wantFiles {
				assert.Equal(t, want, readTree(t, root, rel), "content of %s", rel)
			}
		})
	}
}

func TestRunner_RunIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/a.ts":            "🐾 usePets AuZap petshop pet",
		"src/services/pet.ts": "export const pet = 1",
	})

	rules := text.MustCompile(
		text.Rule{Literal: "🐾", Replace: "🩺"},
		text.Rule{Literal: "usePets", Replace: "usePatients"},
		text.Rule{Literal: "AuZap", Replace: "Oxy"},
		text.Rule{Literal: "pet", Replace: "patient", WholeWord: true},
	)
	phase := &Phase{
		Name:     "all",
		Root:     root,
		Rules:    rules,
		Selector: tsSelector,
		Renames:  rename.Mapping{{From: "src/services/pet.ts", To: "src/services/patient.ts"}},
	}

	first, err := NewRunner(Options{}).Run(testContext(t), phase)
	require.NoError(t, err)
	assert.Equal(t, 2, first.FilesChanged)
	assert.Equal(t, 1, first.Renamed())
	after := readTree(t, root, "src/a.ts")
	assert.Equal(t, "🩺 usePatients Oxy petshop patient", after)

	second, err := NewRunner(Options{}).Run(testContext(t), phase)
	require.NoError(t, err)
	assert.Equal(t, 0, second.FilesChanged)
	assert.Equal(t, 0, second.Substitutions)
	assert.False(t, second.Failed())
	require.Len(t, second.Renames, 1)
	assert.Equal(t, status.RenameNotFound, second.Renames[0].Outcome)
	assert.Equal(t, after, readTree(t, root, "src/a.ts"))
}

func TestRunner_NoOpLeavesFilesUntouched(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/a.ts": "nothing to see here\r\n"})

	path := filepath.Join(root, "src", "a.ts")
	before, err := os.Stat(path)
	require.NoError(t, err)

	sum, err := NewRunner(Options{}).Run(testContext(t), &Phase{
		Name:     "noop",
		Root:     root,
		Rules:    text.MustCompile(text.Rule{Literal: "pets", Replace: "patients"}),
		Selector: tsSelector,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.FilesScanned)
	assert.Equal(t, 0, sum.FilesChanged)
	require.Len(t, sum.Records, 1)
	assert.False(t, sum.Records[0].Changed)

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
	assert.Equal(t, "nothing to see here\r\n", readTree(t, root, "src/a.ts"))
}

func TestRunner_DryRunPrintsDiff(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/a.ts": "keep\npets\nkeep\n"})

	buf := &bytes.Buffer{}
	logger := log.NewWithZerolog(buf, zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.InfoLevel))

	_, err := NewRunner(Options{DryRun: true, Logger: logger}).Run(testContext(t), &Phase{
		Name:     "dry",
		Root:     root,
		Rules:    text.MustCompile(text.Rule{Literal: "pets", Replace: "patients"}),
		Selector: tsSelector,
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "--- src/a.ts\n-pets\n+patients\n")
	assert.Equal(t, "keep\npets\nkeep\n", readTree(t, root, "src/a.ts"))
}

func TestRunner_RunAllChecksEverythingFirst(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/a.ts": "pets"})

	valid := &Phase{
		Name:     "first",
		Root:     root,
		Rules:    text.MustCompile(text.Rule{Literal: "pets", Replace: "patients"}),
		Selector: tsSelector,
	}

	tests := []struct {
		name        string
		second      *Phase
		errContains string
	}{
		{
			name: "missing_root",
			second: &Phase{
				Name:  "second",
				Root:  filepath.Join(root, "missing"),
				Rules: text.MustCompile(text.Rule{Literal: "a", Replace: "b"}),
			},
			errContains: "root",
		},
		{
			name: "invalid_rule_set",
			second: &Phase{
				Name: "second",
				Root: root,
				Rules: text.MustCompile(
					text.Rule{Literal: "tutor", Replace: "guardian"},
					text.Rule{Literal: "guardian", Replace: "tutor"},
				),
			},
			errContains: "rematch",
		},
		{
			name: "escaping_rename",
			second: &Phase{
				Name:    "second",
				Root:    root,
				Rules:   text.MustCompile(text.Rule{Literal: "a", Replace: "b"}),
				Renames: rename.Mapping{{From: "a", To: "../a"}},
			},
			errContains: "escapes the root",
		},
		{
			name: "unknown_encoding",
			second: &Phase{
				Name:     "second",
				Root:     root,
				Rules:    text.MustCompile(text.Rule{Literal: "a", Replace: "b"}),
				Encoding: "klingon",
			},
			errContains: "unknown encoding",
		},
		{
			name: "bad_selector",
			second: &Phase{
				Name:     "second",
				Root:     root,
				Rules:    text.MustCompile(text.Rule{Literal: "a", Replace: "b"}),
				Selector: discovery.Selector{Extensions: []string{"ts"}},
			},
			errContains: "selector",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sums, err := NewRunner(Options{}).RunAll(testContext(t), []*Phase{valid, tt.second})
			require.Error(t, err)
			assert.Nil(t, sums)
			assert.Contains(t, err.Error(), tt.errContains)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, "second", cfgErr.Phase)

			assert.Equal(t, "pets", readTree(t, root, "src/a.ts"), "first phase must not run")
		})
	}
}

func TestRunner_RunAllInOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/a.ts": "AuZap pets"})

	phases := []*Phase{
		{Name: "brand", Root: root, Rules: text.MustCompile(text.Rule{Literal: "AuZap", Replace: "Oxy"}), Selector: tsSelector},
		{Name: "terms", Root: root, Rules: text.MustCompile(text.Rule{Literal: "pets", Replace: "patients"}), Selector: tsSelector},
	}

	sums, err := NewRunner(Options{}).RunAll(testContext(t), phases)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, "brand", sums[0].Phase)
	assert.Equal(t, "terms", sums[1].Phase)
	assert.Equal(t, "Oxy patients", readTree(t, root, "src/a.ts"))
}

func TestRunner_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/a.ts": "pets"})

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	_, err := NewRunner(Options{}).Run(ctx, &Phase{
		Name:     "cancelled",
		Root:     root,
		Rules:    text.MustCompile(text.Rule{Literal: "pets", Replace: "patients"}),
		Selector: tsSelector,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "pets", readTree(t, root, "src/a.ts"))
}

func TestLineDiff(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
		want   string
	}{
		{name: "single_line", before: "a\npets\nb\n", after: "a\npatients\nb\n", want: "-pets\n+patients\n"},
		{name: "no_trailing_newline", before: "pets", after: "patients", want: "-pets\n+patients\n"},
		{name: "identical", before: "same\n", after: "same\n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lineDiff(tt.before, tt.after))
		})
	}
}
