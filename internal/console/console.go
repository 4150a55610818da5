// Package console prints status lines in the CLI's house style:
// "✓" for success, "⚠ Warning:" for recoverable problems, "✗ Error:" for
// failures and "[debug]" lines when debugging is enabled.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Logger writes prefixed, optionally colored lines. It is safe for
// concurrent use.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	debug  bool
	color  bool
}

// New returns a Logger writing normal lines to out and problems to errOut.
// Color is used only when writing to a terminal.
func New(out, errOut io.Writer, debug bool) *Logger {
	return &Logger{
		out:    out,
		errOut: errOut,
		debug:  debug,
		color:  isTerminal(out) && isTerminal(errOut),
	}
}

func isTerminal(w io.Writer) bool {
	if w == os.Stdout || w == os.Stderr {
		return !color.NoColor
	}
	return false
}

// SetDebug toggles debug output.
func (l *Logger) SetDebug(on bool) {
	l.mu.Lock()
	l.debug = on
	l.mu.Unlock()
}

func (l *Logger) paint(c color.Attribute, s string) string {
	if !l.color {
		return s
	}
	return color.New(c).Sprint(s)
}

func (l *Logger) write(w io.Writer, prefix string, c color.Attribute, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	if prefix != "" {
		fmt.Fprintf(w, "%s %s\n", l.paint(c, prefix), msg)
		return
	}
	fmt.Fprintln(w, msg)
}

// Successf prints a "✓" line.
func (l *Logger) Successf(format string, args ...any) {
	l.write(l.out, "✓", color.FgGreen, format, args...)
}

// Infof prints a plain line.
func (l *Logger) Infof(format string, args ...any) {
	l.write(l.out, "", color.Reset, format, args...)
}

// Warnf prints a warning to the error stream.
func (l *Logger) Warnf(format string, args ...any) {
	l.write(l.errOut, "⚠ Warning:", color.FgYellow, format, args...)
}

// Errorf prints an error to the error stream.
func (l *Logger) Errorf(format string, args ...any) {
	l.write(l.errOut, "✗ Error:", color.FgRed, format, args...)
}

// Debugf prints only when debug output is enabled.
func (l *Logger) Debugf(format string, args ...any) {
	l.mu.Lock()
	on := l.debug
	l.mu.Unlock()
	if on {
		l.write(l.errOut, "[debug]", color.FgCyan, format, args...)
	}
}
