package arm

import (
	"encoding/json"
	"fmt"
)

// Template schemas.
const (
	SchemaResourceGroup = "https://schema.management.azure.com/schemas/2019-04-01/deploymentTemplate.json#"
	SchemaSubscription  = "https://schema.management.azure.com/schemas/2018-05-01/subscriptionDeploymentTemplate.json#"
	ContentVersion      = "1.0.0.0"
)

// Template is an ARM deployment template.
type Template struct {
	Schema         string                        `json:"$schema"`
	ContentVersion string                        `json:"contentVersion"`
	Parameters     map[string]*TemplateParameter `json:"parameters,omitempty"`
	Variables      map[string]any                `json:"variables,omitempty"`
	Resources      []*Resource                   `json:"resources"`
	Outputs        map[string]*Output            `json:"outputs,omitempty"`
}

// NewTemplate returns an empty template for the given schema.
func NewTemplate(schema string) *Template {
	return &Template{
		Schema:         schema,
		ContentVersion: ContentVersion,
		Parameters:     map[string]*TemplateParameter{},
		Resources:      []*Resource{},
		Outputs:        map[string]*Output{},
	}
}

// Parameter types.
const (
	TypeString       = "string"
	TypeSecureString = "securestring"
	TypeInt          = "int"
	TypeBool         = "bool"
	TypeObject       = "object"
	TypeArray        = "array"
)

// TemplateParameter declares a template parameter.
type TemplateParameter struct {
	Type          string    `json:"type"`
	DefaultValue  any       `json:"defaultValue,omitempty"`
	AllowedValues []any     `json:"allowedValues,omitempty"`
	MinValue      *int      `json:"minValue,omitempty"`
	MaxValue      *int      `json:"maxValue,omitempty"`
	MinLength     *int      `json:"minLength,omitempty"`
	MaxLength     *int      `json:"maxLength,omitempty"`
	Metadata      *Metadata `json:"metadata,omitempty"`
}

// Metadata documents a parameter.
type Metadata struct {
	Description string `json:"description,omitempty"`
}

// Output declares a template output.
type Output struct {
	Condition string `json:"condition,omitempty"`
	Type      string `json:"type"`
	Value     any    `json:"value"`
}

// Copy makes a resource loop.
type Copy struct {
	Name  string `json:"name"`
	Count any    `json:"count"`
}

// Resource is one template resource. Model, when set, is a typed SDK model
// whose JSON fields are merged under the explicit fields of Resource.
type Resource struct {
	Model any

	Type           string
	Name           string
	APIVersion     string
	Location       string
	Kind           string
	Scope          string
	Condition      string
	SubscriptionID string
	ResourceGroup  string
	SKU            any
	Identity       any
	Tags           any
	Properties     any
	DependsOn      []string
	Copy           *Copy
}

// MarshalJSON merges Model with the template fields.
func (r *Resource) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if r.Model != nil {
		b, err := json.Marshal(r.Model)
		if err != nil {
			return nil, fmt.Errorf("marshal %s model: %w", r.Type, err)
		}
		if err := json.Unmarshal(b, &out); err != nil {
			return nil, fmt.Errorf("merge %s model: %w", r.Type, err)
		}
	}

	set := func(key string, v any) {
		switch t := v.(type) {
		case nil:
			return
		case string:
			if t == "" {
				return
			}
		case []string:
			if len(t) == 0 {
				return
			}
		case *Copy:
			if t == nil {
				return
			}
		}
		out[key] = v
	}

	set("type", r.Type)
	set("apiVersion", r.APIVersion)
	set("name", r.Name)
	set("location", r.Location)
	set("kind", r.Kind)
	set("scope", r.Scope)
	set("condition", r.Condition)
	set("subscriptionId", r.SubscriptionID)
	set("resourceGroup", r.ResourceGroup)
	set("sku", r.SKU)
	set("identity", r.Identity)
	set("tags", r.Tags)
	set("properties", r.Properties)
	set("dependsOn", r.DependsOn)
	set("copy", r.Copy)

	// ARM rejects read-only fields copied from SDK models.
	delete(out, "id")
	delete(out, "systemData")

	return json.Marshal(out)
}

// AddParameter declares a parameter and returns the template for chaining.
func (t *Template) AddParameter(name string, p *TemplateParameter) *Template {
	t.Parameters[name] = p
	return t
}

// AddOutput declares an output.
func (t *Template) AddOutput(name, typ string, value any) *Template {
	t.Outputs[name] = &Output{Type: typ, Value: value}
	return t
}
