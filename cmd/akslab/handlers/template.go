package handlers

import (
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/imamik/akslab/internal/arm"
	"github.com/imamik/akslab/internal/blueprint"
)

// Template output formats and scopes.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"

	ScopeResourceGroup = "resource-group"
	ScopeSubscription  = "subscription"
)

// Template prints a generated ARM template.
func Template(format, scope string) error {
	var (
		t   *arm.Template
		err error
	)
	switch scope {
	case ScopeResourceGroup:
		t, err = blueprint.MainTemplate()
		if err != nil {
			return fmt.Errorf("failed to build main template: %w", err)
		}
	case ScopeSubscription:
		t = blueprint.SubscriptionTemplate()
	default:
		return fmt.Errorf("unknown scope %q (want %s or %s)", scope, ScopeResourceGroup, ScopeSubscription)
	}

	data, err := renderTemplate(t, format)
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

func renderTemplate(t *arm.Template, format string) ([]byte, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template: %w", err)
	}
	switch format {
	case FormatJSON:
		return append(data, '\n'), nil
	case FormatYAML:
		out, err := yaml.JSONToYAML(data)
		if err != nil {
			return nil, fmt.Errorf("failed to convert template to YAML: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want %s or %s)", format, FormatJSON, FormatYAML)
	}
}
