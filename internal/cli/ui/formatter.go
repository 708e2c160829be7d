package ui

import (
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	// FormatPretty represents human-readable output format
	FormatPretty OutputFormat = "pretty"
	// FormatJSON represents JSON output format
	FormatJSON OutputFormat = "json"
	// FormatPlain is the unstyled block format for message deliveries
	FormatPlain OutputFormat = "plain"
)

// ParseFormat converts a string to OutputFormat
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "pretty", "":
		return FormatPretty, nil
	case "json":
		return FormatJSON, nil
	case "plain":
		return FormatPlain, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Formatter is the interface for output formatting
type Formatter interface {
	// Output formats and displays any data
	Output(data interface{}) error

	// OutputError formats and displays an error
	OutputError(err error) error

	// IsJSON returns true if this formatter outputs JSON
	IsJSON() bool
}

// NewFormatter returns the formatter for format writing to the UI streams
func NewFormatter(format OutputFormat) (Formatter, error) {
	switch format {
	case FormatPretty, FormatPlain:
		return NewPrettyFormatter(stdout, stderr), nil
	case FormatJSON:
		return NewJSONFormatter(stdout, stderr), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// prettyFormatter implements Formatter for human-readable output
type prettyFormatter struct {
	out    io.Writer
	errOut io.Writer
}

// NewPrettyFormatter creates a new pretty formatter
func NewPrettyFormatter(out, errOut io.Writer) Formatter {
	return &prettyFormatter{out: out, errOut: errOut}
}

func (f *prettyFormatter) Output(data interface{}) error {
	// Strings are expected to be formatted already
	if str, ok := data.(string); ok {
		_, err := fmt.Fprint(f.out, str)
		return err
	}

	_, err := fmt.Fprintln(f.out, data)
	return err
}

func (f *prettyFormatter) OutputError(err error) error {
	_, werr := fmt.Fprintf(f.errOut, "%s %s\n", ErrorIcon, ErrorStyle.Render(err.Error()))
	return werr
}

func (f *prettyFormatter) IsJSON() bool {
	return false
}

// jsonFormatter implements Formatter for JSON output
type jsonFormatter struct {
	encoder *json.Encoder
	errOut  io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(out, errOut io.Writer) Formatter {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return &jsonFormatter{encoder: encoder, errOut: errOut}
}

func (f *jsonFormatter) Output(data interface{}) error {
	return f.encoder.Encode(data)
}

func (f *jsonFormatter) OutputError(err error) error {
	// Errors stay plain text on stderr so stdout remains valid JSON
	_, werr := fmt.Fprintf(f.errOut, "Error: %v\n", err)
	return werr
}

func (f *jsonFormatter) IsJSON() bool {
	return true
}
