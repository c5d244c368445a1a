package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

func init() {
	// Users can disable with NO_COLOR
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// printer writes colored CLI output to the command's streams
type printer struct {
	out io.Writer
	err io.Writer
}

// Success prints a green line with a checkmark
func (p printer) Success(format string, a ...any) {
	green.Fprintf(p.out, "✓ %s\n", fmt.Sprintf(format, a...))
}

func (p printer) Info(format string, a ...any) {
	fmt.Fprintf(p.out, format+"\n", a...)
}

func (p printer) Warning(format string, a ...any) {
	yellow.Fprintf(p.out, "⚠  %s\n", fmt.Sprintf(format, a...))
}

// Step prints a cyan progress line
func (p printer) Step(format string, a ...any) {
	cyan.Fprintf(p.out, "→ %s\n", fmt.Sprintf(format, a...))
}

// Error prints title and cause to the error stream and returns an error carrying the title
func (p printer) Error(title string, cause error, suggestion string) error {
	red.Fprintf(p.err, "%s\n\n", title)
	fmt.Fprintf(p.err, "%v\n", cause)
	if suggestion != "" {
		fmt.Fprintf(p.err, "\n%s\n", suggestion)
	}
	return fmt.Errorf("%s: %w", title, cause)
}
