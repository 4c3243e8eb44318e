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

// Package report renders the end-of-run summary of a codemod run: a totals
// table per phase, every failed path with its failure kind, and a verdict.
package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pterm/pterm"

	"github.com/walteh/codemod/pkg/status"
)

var (
	failurePrinter = pterm.Error.WithPrefix(pterm.Prefix{Text: "✗", Style: pterm.Error.Prefix.Style})
	successPrinter = pterm.Success.WithPrefix(pterm.Prefix{Text: "✓", Style: pterm.Success.Prefix.Style})
	dryRunPrinter  = pterm.Info.WithPrefix(pterm.Prefix{Text: "🔍", Style: pterm.Info.Prefix.Style})
)

// Totals are the counters summed over every phase of a run.
type Totals struct {
	Scanned       int
	Changed       int
	Substitutions int
	Renamed       int
	Failed        int
}

// Sum adds up the counters of the given summaries. Nil entries are skipped.
func Sum(summaries []*status.RunSummary) Totals {
	var t Totals
	for _, s := range summaries {
		if s == nil {
			continue
		}
		t.Scanned += s.FilesScanned
		t.Changed += s.FilesChanged
		t.Substitutions += s.Substitutions
		t.Renamed += s.Renamed()
		t.Failed += len(s.Failures)
	}
	return t
}

// 📊 Render writes the summary table, the failure list and the verdict to w.
func Render(w io.Writer, summaries []*status.RunSummary) Totals {
	totals := Sum(summaries)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Phase", "Scanned", "Changed", "Substitutions", "Renamed", "Failed"})

	dryRun := false
	for _, s := range summaries {
		if s == nil {
			continue
		}
		dryRun = dryRun || s.DryRun
		t.AppendRow(table.Row{s.Phase, s.FilesScanned, s.FilesChanged, s.Substitutions, s.Renamed(), len(s.Failures)})
	}
	t.AppendFooter(table.Row{"Total", totals.Scanned, totals.Changed, totals.Substitutions, totals.Renamed, totals.Failed})
	t.Render()

	failures := failurePrinter.WithWriter(w)
	for _, s := range summaries {
		if s == nil {
			continue
		}
		for _, f := range s.Failures {
			failures.Println(fmt.Sprintf("%s: %s [%s] %v", s.Phase, f.Path, f.Kind, f.Err))
		}
	}

	switch {
	case totals.Failed > 0:
		failures.Println(fmt.Sprintf("%d %s could not be processed", totals.Failed, plural(totals.Failed, "path", "paths")))
	case dryRun:
		dryRunPrinter.WithWriter(w).Println(fmt.Sprintf("dry run: %d %s would change", totals.Changed, plural(totals.Changed, "file", "files")))
	default:
		successPrinter.WithWriter(w).Println(fmt.Sprintf("%d %s changed", totals.Changed, plural(totals.Changed, "file", "files")))
	}

	return totals
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
