// Package output provides formatters for displaying gcevm results
// in various formats (table, YAML, JSON).
package output

import (
	"fmt"

	"github.com/jbweber/gcevm/internal/instance"
	"github.com/jbweber/gcevm/internal/lifecycle"
	"github.com/jbweber/gcevm/internal/provider"
)

// Format represents an output format type.
type Format string

const (
	// FormatTable is a human-readable table format.
	FormatTable Format = "table"
	// FormatYAML is a YAML format.
	FormatYAML Format = "yaml"
	// FormatJSON is a JSON format for machine consumption.
	FormatJSON Format = "json"
)

// Formatter formats gcevm results for output.
type Formatter interface {
	// FormatInstances formats the result of a list.
	FormatInstances(records []provider.InstanceRecord) (string, error)

	// FormatCreate formats the result of a finished create.
	FormatCreate(res *lifecycle.CreateResult) (string, error)

	// FormatDelete formats the result of a finished delete.
	FormatDelete(res *lifecycle.DeleteResult) (string, error)

	// FormatPlan formats the request a create would submit.
	FormatPlan(view instance.View) (string, error)
}

// Options contains options for formatting output.
type Options struct {
	// Format specifies the output format.
	Format Format
	// NoHeaders omits headers in table format.
	NoHeaders bool
}

// NewFormatter creates a new Formatter based on the specified format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable:
		return &TableFormatter{NoHeaders: opts.NoHeaders}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", opts.Format)
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	switch Format(format) {
	case FormatTable, FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: table, yaml, json)", format)
	}
}
