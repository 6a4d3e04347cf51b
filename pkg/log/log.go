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
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/status"
)

// 🎯 FileOperation is one report row
type FileOperation struct {
	Path         string         // Root-relative file path
	Outcome      status.Outcome // What the session did
	Detail       string         // Exclusion reason, counts or error text
	Replacements int            // Number of replacements made
}

// 📦 SessionOperation describes the session being reported
type SessionOperation struct {
	Root   string // Rewrite root
	Config string // Config file the passes came from
	Passes []string
	DryRun bool
}

// 📊 Summary holds the counts rendered at the end of a session
type Summary struct {
	Total     int
	Changed   int
	Unchanged int
	Skipped   int
	NoContext int
	Failed    int
	DryRun    bool
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentOp  *SessionOperation
	operations []FileOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
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

// 📝 LogFileOperation prints one report row
func (l *Logger) LogFileOperation(ctx context.Context, op FileOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)

	fmt.Fprintln(l.console, status.FormatFileLine(op.Path, op.Outcome, op.Detail))

	ev := l.zlog.Info()
	if op.Outcome == status.OutcomeFailed {
		ev = l.zlog.Error()
	}
	ev.Str("file", op.Path).
		Stringer("outcome", op.Outcome).
		Str("detail", op.Detail).
		Int("replacements", op.Replacements).
		Msg("file processed")
}

// 📝 StartSession prints the session header
func (l *Logger) StartSession(ctx context.Context, op SessionOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.operations = nil

	verb := "rewriting"
	if op.DryRun {
		verb = "checking"
	}
	fmt.Fprintf(l.console, "[%s %s]\n", verb, color.New(color.FgCyan).Sprint(op.Root))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Config),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(strings.Join(op.Passes, ", ")))

	l.zlog.Info().
		Str("root", op.Root).
		Str("config", op.Config).
		Strs("passes", op.Passes).
		Bool("dry_run", op.DryRun).
		Msg("starting rewrite session")
}

// 📝 EndSession closes the current session
func (l *Logger) EndSession(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	l.zlog.Info().
		Str("root", l.currentOp.Root).
		Int("files", len(l.operations)).
		Msg("rewrite session complete")

	l.currentOp = nil
	l.operations = nil
}

// 📝 Diff prints a unified patch with added and removed lines colored
func (l *Logger) Diff(patch string) {
	if patch == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, line := range strings.SplitAfter(patch, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprint(l.console, color.New(color.Bold).Sprint(line))
		case strings.HasPrefix(line, "@@"):
			fmt.Fprint(l.console, color.CyanString("%s", line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprint(l.console, color.GreenString("%s", line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprint(l.console, color.RedString("%s", line))
		default:
			fmt.Fprint(l.console, line)
		}
	}
}

// 📊 RenderSummary renders the session counts as a table
func RenderSummary(s Summary) (string, error) {
	changed := "changed"
	if s.DryRun {
		changed = "would change"
	}
	data := pterm.TableData{
		{"outcome", "files"},
		{changed, strconv.Itoa(s.Changed)},
		{"unchanged", strconv.Itoa(s.Unchanged)},
		{"skipped", strconv.Itoa(s.Skipped)},
		{"no-context", strconv.Itoa(s.NoContext)},
		{"failed", strconv.Itoa(s.Failed)},
		{"total", strconv.Itoa(s.Total)},
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

// 📝 Summary prints the summary table and a one-line verdict
func (l *Logger) Summary(s Summary) error {
	table, err := RenderSummary(s)
	if err != nil {
		return err
	}

	l.mu.Lock()
	fmt.Fprintln(l.console)
	fmt.Fprintln(l.console, table)
	l.mu.Unlock()

	verdict := fmt.Sprintf("%d/%d files changed", s.Changed, s.Total)
	if s.DryRun {
		verdict = fmt.Sprintf("%d/%d files would change", s.Changed, s.Total)
	}
	if s.Failed > 0 {
		l.Errorf("%s, %d failed", verdict, s.Failed)
		return nil
	}
	l.Success(verdict)
	return nil
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
	name := color.New(color.Bold, color.FgCyan).Sprint("rewriterc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
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
	l.zlog.Info().Msg(msg)
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
