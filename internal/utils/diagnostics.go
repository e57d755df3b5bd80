package utils

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/toyz/handspring/internal/errors"
)

// DiagnosticLevel represents the level of diagnostic output
type DiagnosticLevel int

const (
	DiagnosticSilent DiagnosticLevel = iota
	DiagnosticError
	DiagnosticWarn
	DiagnosticInfo
	DiagnosticVerbose
	DiagnosticDebug
)

// ParseDiagnosticLevel maps a level name to a DiagnosticLevel, defaulting to info
func ParseDiagnosticLevel(name string) DiagnosticLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "silent", "off":
		return DiagnosticSilent
	case "error":
		return DiagnosticError
	case "warn", "warning":
		return DiagnosticWarn
	case "verbose":
		return DiagnosticVerbose
	case "debug":
		return DiagnosticDebug
	default:
		return DiagnosticInfo
	}
}

// DiagnosticSystem provides structured, user-friendly output.
// It is safe for concurrent use; dispatch logs from request goroutines.
type DiagnosticSystem struct {
	mu        sync.Mutex
	level     DiagnosticLevel
	useColors bool
	showTime  bool
	output    io.Writer
	errorOut  io.Writer
	indent    int
}

// NewDiagnosticSystem creates a new diagnostic system
func NewDiagnosticSystem(level DiagnosticLevel) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:     level,
		useColors: shouldUseColors(),
		showTime:  level >= DiagnosticVerbose,
		output:    os.Stdout,
		errorOut:  os.Stderr,
	}
}

// NewDiagnosticSystemWithWriters creates a colorless diagnostic system writing to the given writers
func NewDiagnosticSystemWithWriters(level DiagnosticLevel, out, errOut io.Writer) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:    level,
		output:   out,
		errorOut: errOut,
	}
}

// NewQuietDiagnostics creates a diagnostic system that only shows errors
func NewQuietDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticError)
}

// NewVerboseDiagnostics creates a diagnostic system with full output
func NewVerboseDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticVerbose)
}

// NewSilentDiagnostics discards everything; used by tests and embedders
func NewSilentDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystemWithWriters(DiagnosticSilent, io.Discard, io.Discard)
}

// Level returns the configured level
func (d *DiagnosticSystem) Level() DiagnosticLevel {
	return d.level
}

// Error outputs error messages (always shown unless silent)
func (d *DiagnosticSystem) Error(format string, args ...interface{}) {
	if d.level >= DiagnosticError {
		d.writeMessage(d.errorOut, "ERROR", color.FgRed, format, args...)
	}
}

// Warn outputs warning messages
func (d *DiagnosticSystem) Warn(format string, args ...interface{}) {
	if d.level >= DiagnosticWarn {
		d.writeMessage(d.output, "WARN", color.FgYellow, format, args...)
	}
}

// Info outputs informational messages
func (d *DiagnosticSystem) Info(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "INFO", color.FgBlue, format, args...)
	}
}

// Success outputs success messages with emphasis
func (d *DiagnosticSystem) Success(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.writeMessage(d.output, "SUCCESS", color.FgGreen, format, args...)
	}
}

// Verbose outputs detailed messages (verbose mode only)
func (d *DiagnosticSystem) Verbose(format string, args ...interface{}) {
	if d.level >= DiagnosticVerbose {
		d.writeMessage(d.output, "VERBOSE", color.FgHiBlack, format, args...)
	}
}

// Debug outputs debug messages (highest verbosity)
func (d *DiagnosticSystem) Debug(format string, args ...interface{}) {
	if d.level >= DiagnosticDebug {
		d.writeMessage(d.output, "DEBUG", color.FgMagenta, format, args...)
	}
}

// Problem reports a recoverable error together with its hints
func (d *DiagnosticSystem) Problem(err error) {
	if err == nil || d.level < DiagnosticError {
		return
	}
	code := errors.CodeOf(err)
	d.Error("%s: %v", code, err)
	if he, ok := err.(errors.HandError); ok && d.level >= DiagnosticVerbose {
		for _, hint := range he.Suggestions() {
			d.Verbose("  hint: %s", hint)
		}
	}
}

// Section creates a prominent section header
func (d *DiagnosticSystem) Section(title string) {
	if d.level >= DiagnosticInfo {
		d.printf(d.output, "%s\n", d.paint(color.FgCyan, title))
	}
}

// Subsection creates a subsection header
func (d *DiagnosticSystem) Subsection(title string) {
	if d.level >= DiagnosticInfo {
		d.printf(d.output, "\n%s:\n", d.paint(color.FgBlue, title))
	}
}

// List outputs a bulleted list item
func (d *DiagnosticSystem) List(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.printf(d.output, "%s- %s\n", d.getIndent(), fmt.Sprintf(format, args...))
	}
}

// PhaseItem outputs a finished stage with a checkmark
func (d *DiagnosticSystem) PhaseItem(format string, args ...interface{}) {
	if d.level >= DiagnosticInfo {
		d.printf(d.output, "%s%s %s\n", d.getIndent(), d.paint(color.FgGreen, "✓"), fmt.Sprintf(format, args...))
	}
}

// Indent increases the indentation level
func (d *DiagnosticSystem) Indent() {
	d.mu.Lock()
	d.indent++
	d.mu.Unlock()
}

// Unindent decreases the indentation level
func (d *DiagnosticSystem) Unindent() {
	d.mu.Lock()
	if d.indent > 0 {
		d.indent--
	}
	d.mu.Unlock()
}

// Summary outputs a final summary with statistics, keys sorted
func (d *DiagnosticSystem) Summary(title string, stats map[string]interface{}) {
	if d.level < DiagnosticInfo {
		return
	}
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", d.paint(color.FgGreen, title))
	for _, k := range keys {
		fmt.Fprintf(&b, "   %s: %v\n", k, stats[k])
	}
	d.printf(d.output, "%s", b.String())
}

// writeMessage is the internal message writing function
func (d *DiagnosticSystem) writeMessage(writer io.Writer, level string, attr color.Attribute, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	var output strings.Builder
	output.WriteString(d.getIndent())

	if d.showTime {
		output.WriteString(time.Now().Format("15:04:05 "))
	}

	output.WriteString(d.paint(attr, "["+level+"]"))
	output.WriteString(" ")
	output.WriteString(message)
	output.WriteString("\n")

	d.printf(writer, "%s", output.String())
}

func (d *DiagnosticSystem) paint(attr color.Attribute, s string) string {
	if !d.useColors {
		return s
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(s)
}

func (d *DiagnosticSystem) printf(w io.Writer, format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}

// getIndent returns the current indentation string
func (d *DiagnosticSystem) getIndent() string {
	return strings.Repeat("  ", d.indent)
}

// shouldUseColors determines if colors should be used
func shouldUseColors() bool {
	// Check if NO_COLOR is set (standard)
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Check if FORCE_COLOR is set
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	return !color.NoColor
}
