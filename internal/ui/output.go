package ui

import (
	"fmt"
	"strings"

	"github.com/semtext/semtext/internal/annotation"
)

// Unicode symbols for status indicators
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"
)

// Success returns a success message with checkmark symbol
func Success(msg string) string {
	return SymbolSuccess + " " + msg
}

// Successf returns a formatted success message with checkmark symbol
func Successf(format string, args ...any) string {
	return Success(fmt.Sprintf(format, args...))
}

// Error returns an error message with X symbol
func Error(msg string) string {
	return SymbolError + " " + msg
}

// Warning returns a warning message with warning symbol
func Warning(msg string) string {
	return SymbolWarning + " " + msg
}

// Infof returns a formatted info message with info symbol
func Infof(format string, args ...any) string {
	return SymbolInfo + " " + fmt.Sprintf(format, args...)
}

// Header returns a styled section header
func Header(msg string) string {
	return Bold.Render(msg)
}

// FilePath returns an accent-styled file path
func FilePath(path string) string {
	return Accent.Render(path)
}

// Hint returns muted hint text
func Hint(msg string) string {
	return Muted.Render(msg)
}

// Count returns a count with the right noun, e.g. "3 assertions".
func Count(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

// Diagnostic renders one parse diagnostic as a warning line.
func Diagnostic(d annotation.Diagnostic) string {
	var b strings.Builder
	b.WriteString(Warning(d.Message))
	if d.Property != "" {
		b.WriteString(" ")
		b.WriteString(Muted.Render("(" + d.Property + ")"))
	}
	b.WriteString(" ")
	b.WriteString(Muted.Render(d.Key))
	return b.String()
}
