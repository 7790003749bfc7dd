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
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/pagemod/pkg/status"
)

// 📦 RunOperation describes one pass over a source tree for logging
type RunOperation struct {
	Root   string // Directory being rewritten
	Config string // Config file, empty for built-in defaults
	DryRun bool   // Whether files are left untouched
}

// 🎯 Logger handles console output with a structured mirror
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *RunOperation
	entries   []status.Entry
}

// 🏭 New creates a new logger. Every console line is mirrored to a zerolog
// console writer on stderr at debug level.
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger().Level(level)
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

// 📝 Report prints one file's outcome, followed by its diff when present
func (l *Logger) Report(ctx context.Context, entry status.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)

	fmt.Fprintln(l.console, status.FormatEntryLine(entry))
	if entry.Diff != "" {
		l.writeDiff(entry.Diff)
	}

	ev := l.zlog.Debug().
		Str("file", entry.Path).
		Str("outcome", entry.Outcome.String()).
		Bool("written", entry.Written).
		Str("detail", entry.Detail)
	if entry.Error != nil {
		ev = ev.Err(entry.Error)
	}
	ev.Msg("file processed")
}

// writeDiff colors unified diff lines; callers hold the lock
func (l *Logger) writeDiff(diff string) {
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			line = color.New(color.Bold).Sprint(line)
		case strings.HasPrefix(line, "@@"):
			line = color.CyanString(line)
		case strings.HasPrefix(line, "+"):
			line = color.GreenString(line)
		case strings.HasPrefix(line, "-"):
			line = color.RedString(line)
		}
		fmt.Fprint(l.console, line)
	}
	if !strings.HasSuffix(diff, "\n") {
		fmt.Fprintln(l.console)
	}
}

// 📝 StartRun starts a new run over a tree
func (l *Logger) StartRun(ctx context.Context, op RunOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.entries = nil

	verb := "rewriting"
	if op.DryRun {
		verb = "checking"
	}
	fmt.Fprintf(l.console, "[%s %s]\n", verb, color.New(color.FgCyan).Sprint(op.Root))

	source := op.Config
	if source == "" {
		source = "built-in rules"
	}
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint("pagemod"),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(source))

	l.zlog.Debug().
		Str("root", op.Root).
		Str("config", op.Config).
		Bool("dry_run", op.DryRun).
		Msg("starting run")
}

// 📝 EndRun ends the current run
func (l *Logger) EndRun(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	l.zlog.Debug().
		Str("root", l.currentOp.Root).
		Int("files", len(l.entries)).
		Msg("run complete")

	l.currentOp = nil
	l.entries = nil
}

// 📊 Summary prints a table with the count of every outcome
func (l *Logger) Summary(s status.Summary) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data := pterm.TableData{{"Outcome", "Files"}}
	for _, o := range status.Outcomes {
		data = append(data, []string{o.String(), strconv.Itoa(s.Count(o))})
	}
	data = append(data,
		[]string{"written", strconv.Itoa(s.Written)},
		[]string{"total", strconv.Itoa(s.Total)},
	)

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintf(l.console, "\n%s\n", table)

	ev := l.zlog.Debug().Int("total", s.Total).Int("written", s.Written)
	for _, o := range status.Outcomes {
		ev = ev.Int(o.String(), s.Count(o))
	}
	ev.Msg("summary")
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
	name := color.New(color.Bold, color.FgCyan).Sprint("pagemod")
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
	l.zlog.Debug().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Debug().Msg(msg)
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
