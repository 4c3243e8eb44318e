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

package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/codemod/pkg/status"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	countWidth  = 12 // Width for the substitution count
	statusWidth = 15 // Width for status text
)

// 📦 PhaseOperation describes the phase being run for logging
type PhaseOperation struct {
	Name   string // Phase name
	Root   string // Directory the phase rewrites
	Rules  int    // Number of rules
	Moves  int    // Number of rename mappings
	DryRun bool   // Whether nothing is written
}

// 🎯 Logger handles user-facing console output with a zerolog mirror
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	formatter status.FileFormatter
	verbose   bool // also print unchanged files
	mu        sync.Mutex
	current   *PhaseOperation
	files     int // files logged in the current phase
	changed   int
	failed    int
}

// 🏭 New creates a new logger. The zerolog mirror writes to stderr.
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(level)
	return NewWithZerolog(console, zlog)
}

// NewWithZerolog creates a logger that mirrors to the given zerolog logger.
func NewWithZerolog(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:      zlog,
		console:   console,
		formatter: status.NewDefaultFileFormatter(),
		verbose:   zlog.GetLevel() <= zerolog.DebugLevel,
	}
}

// Zerolog returns the structured logger this logger mirrors to.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zlog
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatFileChange formats a file outcome for display
func (l *Logger) formatFileChange(rec status.FileChangeRecord, dryRun bool) string {
	var symbol rune
	var symbolColor color.Attribute
	var count, state string
	switch {
	case rec.Failed():
		symbol, symbolColor = '✗', color.FgRed
		state = string(rec.Kind)
	case rec.Changed && dryRun:
		symbol, symbolColor = '~', color.FgYellow
		count = fmt.Sprintf("%d subs", rec.Count)
		state = "would change"
	case rec.Changed:
		symbol, symbolColor = '⟳', color.FgBlue
		count = fmt.Sprintf("%d subs", rec.Count)
		state = "changed"
	default:
		symbol, symbolColor = '•', color.FgCyan
		state = "no change"
	}

	return fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", fileIndent),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, rec.Path),
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", countWidth, count)),
		fmt.Sprintf("%-*s", statusWidth, state))
}

// 📝 formatRename formats a rename outcome for display
func (l *Logger) formatRename(rec status.RenameRecord) string {
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case rec.Outcome.Applied():
		symbol, symbolColor = '→', color.FgMagenta
	case rec.Outcome == status.RenameNotFound:
		symbol, symbolColor = '-', color.FgYellow
	default:
		symbol, symbolColor = '✗', color.FgRed
	}

	return fmt.Sprintf("%s%s %s %s",
		strings.Repeat(" ", fileIndent),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, rec.From+" → "+rec.To),
		fmt.Sprintf("%-*s", statusWidth, string(rec.Outcome)))
}

// 📝 LogFile logs the outcome of one scanned file. Unchanged files are only
// printed in verbose mode.
func (l *Logger) LogFile(ctx context.Context, rec status.FileChangeRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.files++
	switch {
	case rec.Failed():
		l.failed++
	case rec.Changed:
		l.changed++
	}
	dryRun := l.current != nil && l.current.DryRun

	if rec.Changed || rec.Failed() || l.verbose {
		fmt.Fprintln(l.console, l.formatFileChange(rec, dryRun))
	}

	ev := l.zlog.Debug()
	if rec.Failed() {
		ev = l.zlog.Warn().Err(rec.Err)
	}
	ev.Str("file", rec.Path).
		Int("substitutions", rec.Count).
		Bool("changed", rec.Changed).
		Ints("hits", rec.Hits).
		Str("kind", string(rec.Kind)).
		Msg(l.formatter.FormatFileChange(rec, dryRun))
}

// 📝 LogRename logs the outcome of one rename mapping
func (l *Logger) LogRename(ctx context.Context, rec status.RenameRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatRename(rec))

	ev := l.zlog.Debug()
	if rec.Err != nil {
		ev = l.zlog.Warn().Err(rec.Err)
	}
	ev.Str("from", rec.From).
		Str("to", rec.To).
		Str("outcome", string(rec.Outcome)).
		Msg(l.formatter.FormatRename(rec))
}

// 📝 LogDiff prints a dry-run diff for one file
func (l *Logger) LogDiff(path, diff string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "%s %s\n", color.New(color.Bold).Sprint("---"), path)
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+"):
			fmt.Fprintln(l.console, color.GreenString("%s", line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprintln(l.console, color.RedString("%s", line))
		default:
			fmt.Fprintln(l.console, color.New(color.Faint).Sprint(line))
		}
	}
}

// 📝 StartPhase starts a new phase
func (l *Logger) StartPhase(ctx context.Context, op PhaseOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &op
	l.files, l.changed, l.failed = 0, 0, 0

	mode := ""
	if op.DryRun {
		mode = " " + color.New(color.FgYellow).Sprint("(dry run)")
	}
	fmt.Fprintf(l.console, "[rewriting %s]%s\n",
		color.New(color.FgCyan).Sprint(op.Root), mode)

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Name),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(fmt.Sprintf("%d rules, %d renames", op.Rules, op.Moves)))

	l.zlog.Debug().
		Str("phase", op.Name).
		Str("root", op.Root).
		Int("rules", op.Rules).
		Int("renames", op.Moves).
		Bool("dry_run", op.DryRun).
		Msg("starting phase")
}

// 📝 EndPhase ends the current phase and mirrors its file counts
func (l *Logger) EndPhase(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	l.zlog.Debug().
		Str("phase", l.current.Name).
		Int("files", l.files).
		Int("changed", l.changed).
		Int("failed", l.failed).
		Msg("phase finished")

	l.current = nil
	l.files, l.changed, l.failed = 0, 0, 0
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("codemod")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Debug().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Debug().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Debug().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
