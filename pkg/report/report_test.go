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

package report

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/codemod/pkg/status"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

func summaries() []*status.RunSummary {
	brand := status.NewRecorder("brand", ".", false)
	brand.RecordFile(status.FileChangeRecord{Path: "a.ts", Count: 3, Changed: true})
	brand.RecordFile(status.FileChangeRecord{Path: "b.ts"})
	brand.RecordRename(status.RenameRecord{From: "old", To: "new", Outcome: status.RenameMoved})

	routes := status.NewRecorder("routes", "backend", false)
	routes.RecordFile(status.FileChangeRecord{Path: "x.ts", Count: 1, Changed: true})
	routes.RecordFile(status.FileChangeRecord{Path: "bad.ts", Err: &status.DecodeError{Path: "bad.ts", Encoding: "utf-8", Offset: 4, Err: errors.New("invalid utf-8")}})

	return []*status.RunSummary{brand.Finalize(), routes.Finalize()}
}

func TestSum(t *testing.T) {
	got := Sum(append(summaries(), nil))
	assert.Equal(t, Totals{Scanned: 4, Changed: 2, Substitutions: 4, Renamed: 1, Failed: 1}, got)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	totals := Render(&buf, summaries())
	out := buf.String()

	assert.Equal(t, 1, totals.Failed)
	assert.Contains(t, out, "brand")
	assert.Contains(t, out, "routes")
	assert.Contains(t, strings.ToLower(out), "substitutions")
	assert.Contains(t, out, "routes: bad.ts [decode]")
	assert.Contains(t, out, "1 path could not be processed")
}

func TestRender_Verdict(t *testing.T) {
	tests := []struct {
		name   string
		dryRun bool
		want   string
	}{
		{name: "applied", want: "2 files changed"},
		{name: "dry_run", dryRun: true, want: "dry run: 2 files would change"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := status.NewRecorder("brand", ".", tt.dryRun)
			rec.RecordFile(status.FileChangeRecord{Path: "a.ts", Count: 1, Changed: true})
			rec.RecordFile(status.FileChangeRecord{Path: "b.ts", Count: 1, Changed: true})

			var buf bytes.Buffer
			totals := Render(&buf, []*status.RunSummary{rec.Finalize()})
			require.Zero(t, totals.Failed)
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}
