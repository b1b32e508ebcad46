package output

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jbweber/gcevm/internal/instance"
	"github.com/jbweber/gcevm/internal/lifecycle"
	"github.com/jbweber/gcevm/internal/provider"
)

// YAMLFormatter formats results as YAML.
type YAMLFormatter struct{}

// FormatInstances formats instance records as a YAML stream
// (one document per instance, separated by ---).
func (f *YAMLFormatter) FormatInstances(records []provider.InstanceRecord) (string, error) {
	var buf bytes.Buffer

	for i, r := range records {
		data, err := yaml.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("failed to marshal instance %s to YAML: %w", r.Name, err)
		}

		if i > 0 {
			buf.WriteString("---\n")
		}
		buf.Write(data)
	}

	return buf.String(), nil
}

// FormatCreate formats a create result as YAML.
func (f *YAMLFormatter) FormatCreate(res *lifecycle.CreateResult) (string, error) {
	return marshalYAML(res, "create result")
}

// FormatDelete formats a delete result as YAML.
func (f *YAMLFormatter) FormatDelete(res *lifecycle.DeleteResult) (string, error) {
	return marshalYAML(res, "delete result")
}

// FormatPlan formats the planned request as YAML.
func (f *YAMLFormatter) FormatPlan(view instance.View) (string, error) {
	return marshalYAML(view, "instance spec")
}

func marshalYAML(v interface{}, what string) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s to YAML: %w", what, err)
	}
	return string(data), nil
}
