package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jbweber/gcevm/internal/instance"
	"github.com/jbweber/gcevm/internal/lifecycle"
	"github.com/jbweber/gcevm/internal/provider"
)

// JSONFormatter formats results as JSON.
type JSONFormatter struct{}

// FormatInstances formats instance records as a JSON array.
func (f *JSONFormatter) FormatInstances(records []provider.InstanceRecord) (string, error) {
	if len(records) == 0 {
		return "[]\n", nil
	}
	return marshalJSON(records, "instances")
}

// FormatCreate formats a create result as a JSON object.
func (f *JSONFormatter) FormatCreate(res *lifecycle.CreateResult) (string, error) {
	return marshalJSON(res, "create result")
}

// FormatDelete formats a delete result as a JSON object.
func (f *JSONFormatter) FormatDelete(res *lifecycle.DeleteResult) (string, error) {
	return marshalJSON(res, "delete result")
}

// FormatPlan formats the planned request as a JSON object.
func (f *JSONFormatter) FormatPlan(view instance.View) (string, error) {
	return marshalJSON(view, "instance spec")
}

func marshalJSON(v interface{}, what string) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		return "", fmt.Errorf("failed to marshal %s to JSON: %w", what, err)
	}

	return buf.String(), nil
}
