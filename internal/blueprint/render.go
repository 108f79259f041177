package blueprint

import (
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/imamik/akslab/internal/arm"
)

// Render formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const parametersSchema = "https://schema.management.azure.com/schemas/2019-04-01/deploymentParameters.json#"

// ParametersFile is a deployment parameters document.
type ParametersFile struct {
	Schema         string         `json:"$schema"`
	ContentVersion string         `json:"contentVersion"`
	Parameters     map[string]any `json:"parameters"`
}

// NewParametersFile wraps parameter values for use with az deployment.
func NewParametersFile(params map[string]any) *ParametersFile {
	return &ParametersFile{
		Schema:         parametersSchema,
		ContentVersion: arm.ContentVersion,
		Parameters:     params,
	}
}

// Render encodes a template or parameters document.
func Render(v any, format string) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode template: %w", err)
	}
	switch format {
	case FormatJSON, "":
		return append(b, '\n'), nil
	case FormatYAML:
		out, err := yaml.JSONToYAML(b)
		if err != nil {
			return nil, fmt.Errorf("failed to convert template to yaml: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want %s or %s)", format, FormatJSON, FormatYAML)
	}
}
