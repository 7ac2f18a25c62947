// Package output handles formatting command output in different formats.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Writer handles output in the specified format.
type Writer struct {
	format Format
	w      io.Writer
}

// NewWriter creates a new output writer.
func NewWriter(w io.Writer, format Format) *Writer {
	return &Writer{format: format, w: w}
}

// Format returns the writer's configured format.
func (w *Writer) Format() Format {
	return w.format
}

// Write outputs the given value in the configured format.
func (w *Writer) Write(v interface{}) error {
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w.w)
		enc.SetIndent(2)
		return enc.Encode(v)
	default:
		// Text format - assume v implements fmt.Stringer or use default
		if s, ok := v.(fmt.Stringer); ok {
			_, err := fmt.Fprintln(w.w, s.String())
			return err
		}
		_, err := fmt.Fprintf(w.w, "%+v\n", v)
		return err
	}
}

// Successf prints a styled success line in text mode. Structured
// formats ignore status lines so their output stays machine-parseable.
func (w *Writer) Successf(format string, args ...interface{}) {
	if w.format != FormatText {
		return
	}
	fmt.Fprintln(w.w, successStyle.Render(fmt.Sprintf(format, args...)))
}

// Warnf prints a styled warning line in text mode.
func (w *Writer) Warnf(format string, args ...interface{}) {
	if w.format != FormatText {
		return
	}
	fmt.Fprintln(w.w, warnStyle.Render(fmt.Sprintf(format, args...)))
}

// Errorf prints a styled error line in text mode.
func (w *Writer) Errorf(format string, args ...interface{}) {
	if w.format != FormatText {
		return
	}
	fmt.Fprintln(w.w, errorStyle.Render(fmt.Sprintf(format, args...)))
}

// ParseFormat parses a format string into a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}
